package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

// Init opens the store at uri and runs its startup scan.
// The 'uri' argument is adapter-specific (a directory for 'fs').
//
// It returns the initialized core.Store.
func Init(ctx context.Context, uri string, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// 1. Check for injected store
	if o.store != nil {
		return o.store, nil
	}

	// 2. Build based on adapter
	var store core.Store
	switch o.adapter {
	case "fs":
		store = initFS(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	// 3. Run the startup scan
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// initFS maps the options onto an fs.Config.
func initFS(path string, o *options) *fs.Engine {
	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	cacheSize, _ := o.config["cache_size"].(int)
	recency, _ := o.config["recency_window"].(time.Duration)
	clock, _ := o.config["clock"].(func() time.Time)
	scanStart, _ := o.config["scan_start"].(func(int))
	scanStep, _ := o.config["scan_step"].(func(string))
	isReadOnly, _ := o.config["read_only"].(bool)

	// Default to true (safe) if dev_safety is not set.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Bypass Safety if:
	// 1. ReadOnly is active (inherently safe)
	// 2. User explicitly disabled DevSafety
	bypassSafety := isReadOnly || !devSafety

	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolvedPath := ResolveStorePath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolvedPath)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolvedPath)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolvedPath)
		}
	}
	if o.logger != nil && useTemp && resolvedPath != path {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}

	return fs.NewEngine(fs.Config{
		Root:          resolvedPath,
		MustExist:     mustExist,
		ReadOnly:      isReadOnly,
		CacheSize:     cacheSize,
		RecencyWindow: recency,
		Logger:        o.logger,
		Observer:      o.observer,
		Now:           clock,
		OnScanStart:   scanStart,
		OnScanned:     scanStep,
	})
}
