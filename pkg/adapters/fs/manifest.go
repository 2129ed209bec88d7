package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/strata/pkg/core"
)

// ManifestFile is the name of the per-collection listing index.
const ManifestFile = "index.json"

var errCorruptManifest = errors.New("corrupt manifest")

// manifestRecord is the listing view of one entry.
type manifestRecord struct {
	ID         string          `json:"id"`
	Collection core.Collection `json:"collection"`
	CreatedAt  time.Time       `json:"createdAt"`
	Tags       []string        `json:"tags"`
	Summary    string          `json:"summary"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty"`
}

func recordOf(e core.Entry) manifestRecord {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return manifestRecord{
		ID:         e.ID,
		Collection: e.Collection,
		CreatedAt:  e.CreatedAt,
		Tags:       tags,
		Summary:    e.DisplaySummary(),
		ExpiresAt:  e.ExpiresAt,
	}
}

func (r manifestRecord) expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// manifestFile is the on-disk shape of index.json.
type manifestFile struct {
	Entries []manifestRecord `json:"entries"`
}

// manifest manages loading, updating and saving one collection's index.json.
// Records keep insertion order; upserting an existing id replaces it in place.
type manifest struct {
	path    string
	records []manifestRecord
	pos     map[string]int
	dirty   bool
}

func newManifest(dir string) *manifest {
	return &manifest{
		path: filepath.Join(dir, ManifestFile),
		pos:  make(map[string]int),
	}
}

// load reads the manifest from disk. A missing file yields an empty manifest.
// A corrupt file also yields an empty manifest, marked dirty so that it is
// rewritten, and an error wrapping errCorruptManifest is returned for the
// caller to log.
func (m *manifest) load() error {
	m.records = nil
	m.pos = make(map[string]int)
	m.dirty = false

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var f manifestFile
	if err := json.Unmarshal(data, &f); err != nil {
		m.dirty = true
		return fmt.Errorf("%w %s: %v", errCorruptManifest, m.path, err)
	}
	dropped := false
	for _, r := range f.Entries {
		if r.ID == "" {
			dropped = true
			continue
		}
		m.upsert(r)
	}
	m.dirty = dropped
	return nil
}

// save persists the manifest if it changed since the last load or save.
func (m *manifest) save() error {
	if !m.dirty {
		return nil
	}

	f := manifestFile{Entries: m.records}
	if f.Entries == nil {
		f.Entries = []manifestRecord{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	if err := writeFileAtomic(m.path, data, 0644); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

func (m *manifest) upsert(r manifestRecord) {
	if i, ok := m.pos[r.ID]; ok {
		m.records[i] = r
	} else {
		m.pos[r.ID] = len(m.records)
		m.records = append(m.records, r)
	}
	m.dirty = true
}

func (m *manifest) get(id string) (manifestRecord, bool) {
	i, ok := m.pos[id]
	if !ok {
		return manifestRecord{}, false
	}
	return m.records[i], true
}

// remove deletes the record for id and reports whether it existed.
func (m *manifest) remove(id string) bool {
	i, ok := m.pos[id]
	if !ok {
		return false
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	delete(m.pos, id)
	for j := i; j < len(m.records); j++ {
		m.pos[m.records[j].ID] = j
	}
	m.dirty = true
	return true
}

// prune removes every record whose id is not in keep.
func (m *manifest) prune(keep map[string]bool) int {
	kept := m.records[:0]
	removed := 0
	for _, r := range m.records {
		if keep[r.ID] {
			kept = append(kept, r)
			continue
		}
		removed++
	}
	if removed == 0 {
		return 0
	}
	m.records = kept
	m.pos = make(map[string]int, len(kept))
	for i, r := range kept {
		m.pos[r.ID] = i
	}
	m.dirty = true
	return removed
}

// reset empties the manifest.
func (m *manifest) reset() {
	m.records = nil
	m.pos = make(map[string]int)
	m.dirty = true
}

// all returns a copy of the records in insertion order.
func (m *manifest) all() []manifestRecord {
	out := make([]manifestRecord, len(m.records))
	copy(out, m.records)
	return out
}

// live counts the records not expired at now.
func (m *manifest) live(now time.Time) int {
	n := 0
	for _, r := range m.records {
		if !r.expired(now) {
			n++
		}
	}
	return n
}

func (m *manifest) len() int { return len(m.records) }
