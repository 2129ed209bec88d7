package fs

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/strata/pkg/core"
)

// EngineState exposes internal state for observability.
type EngineState struct {
	Root          string                  `json:"root"`
	Ready         bool                    `json:"ready"`
	ReadOnly      bool                    `json:"read_only"`
	CacheSize     int                     `json:"cache_size"`
	CacheCapacity int                     `json:"cache_capacity"`
	Terms         int                     `json:"terms"`
	Documents     int                     `json:"documents"`
	Records       map[core.Collection]int `json:"records"`
	SkippedFiles  int                     `json:"skipped_files"`
	WatcherActive bool                    `json:"watcher_active"`
	LastScan      *time.Time              `json:"last_scan,omitempty"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := make(map[core.Collection]int, len(e.manifests))
	for c, m := range e.manifests {
		records[c] = m.len()
	}

	return EngineState{
		Root:          e.Root,
		Ready:         e.ready,
		ReadOnly:      e.config.ReadOnly,
		CacheSize:     e.cache.len(),
		CacheCapacity: e.cache.capacity,
		Terms:         e.index.Len(),
		Documents:     e.index.Documents(),
		Records:       records,
		SkippedFiles:  e.skipped,
		WatcherActive: e.watcherActive,
		LastScan:      e.lastScan,
	}
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "engine"
}

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
