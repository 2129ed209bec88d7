package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/fulltext"
)

const (
	// EntryExt is the extension of entry files.
	EntryExt = ".md"
	// CollectionsDir holds one directory per collection.
	CollectionsDir = "collections"
	// LedgerDir holds the append-only ledger file.
	LedgerDir = "ledger"
	// LedgerFile is the name of the ledger file inside LedgerDir.
	LedgerFile = "entries.jsonl"

	// DefaultRecencyWindow is the age at which the recency bonus reaches zero.
	DefaultRecencyWindow = 30 * 24 * time.Hour
)

// Observer receives measurements from the engine. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveOperation(op string, d time.Duration, err error)
	ObserveCache(hit bool)
	ObserveSkipped(collection core.Collection)
	ObserveIndex(terms, documents int)
}

// Config holds the configuration for the filesystem engine.
type Config struct {
	Root          string
	MustExist     bool
	ReadOnly      bool
	CacheSize     int
	RecencyWindow time.Duration
	Logger        *slog.Logger
	Observer      Observer
	// Now is the clock used for expiry and recency. Defaults to time.Now.
	Now func() time.Time
	// OnScanStart and OnScanned report startup scan progress. OnScanned may be
	// called from several goroutines.
	OnScanStart func(total int)
	OnScanned   func(path string)
}

// Engine implements core.Store on top of a directory of entry files.
//
// Lifecycle: NewEngine, then Initialize (which scans every collection and
// builds the word index), then any other operation. Operations before
// Initialize return core.ErrNotInitialized.
type Engine struct {
	Root   string
	config Config

	mu            sync.Mutex
	ready         bool
	index         *fulltext.Index
	cache         *hotCache
	manifests     map[core.Collection]*manifest
	ledger        *Ledger
	skipped       int
	lastScan      *time.Time
	watcherActive bool
	// written records the event type of Store calls made while a watcher
	// runs, so the watcher reports them as the engine saw them.
	written map[string]core.EventType
}

// NewEngine creates a new filesystem-backed engine.
func NewEngine(config Config) *Engine {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.RecencyWindow <= 0 {
		config.RecencyWindow = DefaultRecencyWindow
	}

	e := &Engine{
		Root:      config.Root,
		config:    config,
		index:     fulltext.NewIndex(),
		cache:     newHotCache(config.CacheSize),
		manifests: make(map[core.Collection]*manifest, len(core.Collections)),
		written:   make(map[string]core.EventType),
		ledger:    NewLedger(filepath.Join(config.Root, LedgerDir, LedgerFile), config.ReadOnly),
	}
	for _, c := range core.Collections {
		e.manifests[c] = newManifest(e.collectionDir(c))
	}
	return e
}

func (e *Engine) collectionDir(c core.Collection) string {
	return filepath.Join(e.Root, CollectionsDir, string(c))
}

func (e *Engine) entryPath(c core.Collection, id string) string {
	return filepath.Join(e.collectionDir(c), id+EntryExt)
}

func (e *Engine) now() time.Time { return e.config.Now().UTC() }

func (e *Engine) observe(op string, start time.Time, err error) {
	if e.config.Observer != nil {
		e.config.Observer.ObserveOperation(op, time.Since(start), err)
	}
}

// indexableText is the text fed to the word index for an entry.
func indexableText(en core.Entry) string {
	return strings.Join([]string{
		en.Content,
		en.Summary,
		strings.Join(en.Tags, " "),
		en.Origin,
		en.AssociatedEntity,
	}, "\n")
}

// validID reports whether id can name an entry file.
func validID(id string) bool {
	return ValidateEntry(core.Entry{ID: id, Collection: core.Operational, Confidence: core.Low}) == nil
}

// scannedFile is the outcome of reading one entry file during startup.
type scannedFile struct {
	path  string
	id    string
	entry core.Entry
	err   error
}

// Initialize creates the directory layout (unless read-only), scans every
// collection, reconciles each manifest with the files found and builds the
// word index. It blocks until the scan completes and is idempotent.
func (e *Engine) Initialize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { e.observe("initialize", start, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready {
		return nil
	}

	if e.config.MustExist || e.config.ReadOnly {
		info, err := os.Stat(e.Root)
		if os.IsNotExist(err) {
			if e.config.MustExist {
				return fmt.Errorf("store path does not exist: %s", e.Root)
			}
		} else if err != nil {
			return fmt.Errorf("failed to stat store path: %w", err)
		} else if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", e.Root)
		}
	}
	if !e.config.ReadOnly {
		for _, c := range core.Collections {
			if err := os.MkdirAll(e.collectionDir(c), 0755); err != nil {
				return fmt.Errorf("failed to create collection directory: %w", err)
			}
		}
		if err := os.MkdirAll(filepath.Join(e.Root, LedgerDir), 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	scanned, err := e.scan(ctx)
	if err != nil {
		return err
	}

	e.index.Reset()
	e.cache.reset()
	e.skipped = 0
	seen := make(map[string]core.Collection)

	for i, c := range core.Collections {
		m := e.manifests[c]
		if err := m.load(); err != nil {
			if !errors.Is(err, errCorruptManifest) {
				return err
			}
			e.config.Logger.Warn("rebuilding corrupt manifest", "collection", c, "error", err)
		}

		keep := make(map[string]bool, len(scanned[i]))
		for _, f := range scanned[i] {
			if f.err == nil {
				switch {
				case f.entry.ID != f.id:
					f.err = fmt.Errorf("%w: header id %q does not match file name", core.ErrMalformedEntry, f.entry.ID)
				case f.entry.Collection != c:
					f.err = fmt.Errorf("%w: header collection %q does not match directory", core.ErrMalformedEntry, f.entry.Collection)
				}
			}
			if f.err == nil {
				if other, dup := seen[f.id]; dup {
					f.err = fmt.Errorf("%w: id already stored in %s", core.ErrMalformedEntry, other)
				}
			}
			if f.err != nil {
				e.skip(c, f.path, f.err)
				continue
			}

			seen[f.id] = c
			keep[f.id] = true
			e.index.Add(f.id, indexableText(f.entry))

			rec := recordOf(f.entry)
			if prev, ok := m.get(f.id); !ok || !reflect.DeepEqual(prev, rec) {
				m.upsert(rec)
			}
		}

		if n := m.prune(keep); n > 0 {
			e.config.Logger.Debug("pruned manifest records without a file", "collection", c, "count", n)
		}
		if !e.config.ReadOnly {
			if err := m.save(); err != nil {
				return fmt.Errorf("failed to save manifest for %s: %w", c, err)
			}
		}
	}

	if e.config.Observer != nil {
		e.config.Observer.ObserveIndex(e.index.Len(), e.index.Documents())
	}

	now := time.Now()
	e.lastScan = &now
	e.ready = true
	e.config.Logger.Debug("store initialized",
		"root", e.Root,
		"documents", e.index.Documents(),
		"terms", e.index.Len(),
		"skipped", e.skipped,
	)
	return nil
}

// scan lists and decodes every collection in parallel. The result is indexed
// like core.Collections and each slice is sorted by id.
func (e *Engine) scan(ctx context.Context) ([][]scannedFile, error) {
	names := make([][]string, len(core.Collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range core.Collections {
		g.Go(func() error {
			list, err := e.listEntryFiles(c)
			if err != nil {
				return err
			}
			names[i] = list
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.config.OnScanStart != nil {
		total := 0
		for _, n := range names {
			total += len(n)
		}
		e.config.OnScanStart(total)
	}

	out := make([][]scannedFile, len(core.Collections))
	g, gctx = errgroup.WithContext(ctx)
	for i, c := range core.Collections {
		g.Go(func() error {
			files := make([]scannedFile, 0, len(names[i]))
			for _, name := range names[i] {
				if err := gctx.Err(); err != nil {
					return err
				}
				path := filepath.Join(e.collectionDir(c), name)
				f := scannedFile{path: path, id: strings.TrimSuffix(name, EntryExt)}
				data, err := os.ReadFile(path)
				if err != nil {
					f.err = err
				} else {
					f.entry, f.err = DecodeEntry(data)
				}
				files = append(files, f)
				if e.config.OnScanned != nil {
					e.config.OnScanned(path)
				}
			}
			out[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// listEntryFiles returns the sorted entry file names of a collection. Stale
// temporary files are removed unless the engine is read-only.
func (e *Engine) listEntryFiles(c core.Collection) ([]string, error) {
	dir := e.collectionDir(c)
	dirEntries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", c, err)
	}

	var names []string
	for _, d := range dirEntries {
		name := d.Name()
		if isTempFile(name) {
			if !e.config.ReadOnly {
				_ = os.Remove(filepath.Join(dir, name))
			}
			continue
		}
		if d.IsDir() || filepath.Ext(name) != EntryExt {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (e *Engine) skip(c core.Collection, path string, err error) {
	e.skipped++
	e.config.Logger.Warn("skipping unreadable entry file", "path", path, "error", err)
	if e.config.Observer != nil {
		e.config.Observer.ObserveSkipped(c)
	}
}

func (e *Engine) checkReady() error {
	if !e.ready {
		return core.ErrNotInitialized
	}
	return nil
}

func (e *Engine) checkWritable() error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if e.config.ReadOnly {
		return core.ErrReadOnly
	}
	return nil
}

// locate finds the collection whose directory holds a file for id.
func (e *Engine) locate(id string) (core.Collection, bool) {
	if cached, ok := e.cache.get(id); ok {
		return cached.Collection, true
	}
	for _, c := range core.Collections {
		if _, err := os.Stat(e.entryPath(c, id)); err == nil {
			return c, true
		}
	}
	return "", false
}

// load returns the entry for id, expired or not, cache first. Unreadable
// files are logged and reported as missing.
func (e *Engine) load(id string) (core.Entry, bool) {
	if cached, ok := e.cache.get(id); ok {
		if e.config.Observer != nil {
			e.config.Observer.ObserveCache(true)
		}
		return cached, true
	}
	if e.config.Observer != nil {
		e.config.Observer.ObserveCache(false)
	}

	for _, c := range core.Collections {
		path := e.entryPath(c, id)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err == nil {
			var en core.Entry
			if en, err = DecodeEntry(data); err == nil && (en.ID != id || en.Collection != c) {
				err = fmt.Errorf("%w: header does not match file location", core.ErrMalformedEntry)
			}
			if err == nil {
				e.cache.put(en)
				return en, true
			}
		}
		e.skip(c, path, err)
	}
	return core.Entry{}, false
}

// Retrieve returns the entry with the given id. Missing and expired entries
// are reported as (zero, false, nil).
func (e *Engine) Retrieve(ctx context.Context, id string) (en core.Entry, found bool, err error) {
	start := time.Now()
	defer func() { e.observe("retrieve", start, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkReady(); err != nil {
		return core.Entry{}, false, err
	}
	if !validID(id) {
		return core.Entry{}, false, nil
	}

	en, ok := e.load(id)
	if !ok || en.Expired(e.now()) {
		return core.Entry{}, false, nil
	}
	return en, true, nil
}

func normalize(en core.Entry, now time.Time) core.Entry {
	if en.Tags == nil {
		en.Tags = []string{}
	}
	if en.CreatedAt.IsZero() {
		en.CreatedAt = now
	}
	if en.UpdatedAt.IsZero() {
		en.UpdatedAt = now
	}
	en.CreatedAt = en.CreatedAt.UTC()
	en.UpdatedAt = en.UpdatedAt.UTC()
	if en.ExpiresAt != nil {
		exp := en.ExpiresAt.UTC()
		en.ExpiresAt = &exp
	}
	return en
}

// Store persists an entry, creating it or replacing the entry with the same id.
//
// Updating an entry keeps its original creation time. Storing an existing id
// under another collection moves it. Existing append-only entries cannot be
// replaced or moved.
func (e *Engine) Store(ctx context.Context, en core.Entry) (err error) {
	start := time.Now()
	defer func() { e.observe("store", start, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}

	en = normalize(en, e.now())
	if err := ValidateEntry(en); err != nil {
		return err
	}

	prev, found := e.load(en.ID)
	stale := core.Collection("")
	if !found {
		if c, ok := e.locate(en.ID); ok {
			if c.AppendOnly() {
				// Unreadable append-only file: never overwrite it.
				return fmt.Errorf("%w: %s", core.ErrAppendOnly, en.ID)
			}
			if c != en.Collection {
				stale = c
			}
		}
	}
	if found {
		if prev.Collection.AppendOnly() {
			return fmt.Errorf("%w: %s", core.ErrAppendOnly, en.ID)
		}
		en.CreatedAt = prev.CreatedAt
	}

	dir := e.collectionDir(en.Collection)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}
	if err := writeFileAtomic(e.entryPath(en.Collection, en.ID), EncodeEntry(en), 0644); err != nil {
		return err
	}

	if found {
		e.index.Remove(prev.ID, indexableText(prev))
		if prev.Collection != en.Collection {
			if err := os.Remove(e.entryPath(prev.Collection, prev.ID)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove moved entry: %w", err)
			}
			old := e.manifests[prev.Collection]
			old.remove(prev.ID)
			if err := old.save(); err != nil {
				return err
			}
		}
	}
	if stale != "" {
		// An unreadable copy of the id in another collection is replaced by
		// the entry just written.
		if err := os.Remove(e.entryPath(stale, en.ID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale entry: %w", err)
		}
		old := e.manifests[stale]
		if old.remove(en.ID) {
			if err := old.save(); err != nil {
				return err
			}
		}
	}
	e.index.Drop(en.ID)

	m := e.manifests[en.Collection]
	m.upsert(recordOf(en))
	if err := m.save(); err != nil {
		return err
	}

	e.index.Add(en.ID, indexableText(en))
	e.cache.put(en)
	if e.watcherActive {
		if found {
			e.written[en.ID] = core.EventModify
		} else {
			e.written[en.ID] = core.EventCreate
		}
	}

	e.config.Logger.Debug("entry stored", "id", en.ID, "collection", en.Collection, "update", found)
	return nil
}

// Remove deletes an entry. It reports false when no entry exists or the entry
// belongs to an append-only collection.
func (e *Engine) Remove(ctx context.Context, id string) (removed bool, err error) {
	start := time.Now()
	defer func() { e.observe("remove", start, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return false, err
	}
	if !validID(id) {
		return false, nil
	}

	c, ok := e.locate(id)
	if !ok {
		return false, nil
	}
	if c.AppendOnly() {
		e.config.Logger.Debug("refusing to remove append-only entry", "id", id, "collection", c)
		return false, nil
	}

	if prev, ok := e.load(id); ok {
		e.index.Remove(id, indexableText(prev))
	}
	e.index.Drop(id)
	e.cache.evict(id)

	if err := os.Remove(e.entryPath(c, id)); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to remove file: %w", err)
	}

	m := e.manifests[c]
	m.remove(id)
	if err := m.save(); err != nil {
		return false, err
	}
	return true, nil
}

func resolveCollections(cs []core.Collection, fallback []core.Collection) ([]core.Collection, error) {
	if len(cs) == 0 {
		return fallback, nil
	}
	for _, c := range cs {
		if !c.Valid() {
			return nil, fmt.Errorf("unknown collection %q", c)
		}
	}
	return cs, nil
}

// Count returns the number of live entries in the given collections, or in
// every collection when none is given.
func (e *Engine) Count(ctx context.Context, collections ...core.Collection) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkReady(); err != nil {
		return 0, err
	}
	cs, err := resolveCollections(collections, core.Collections)
	if err != nil {
		return 0, err
	}

	now := e.now()
	total := 0
	for _, c := range cs {
		total += e.manifests[c].live(now)
	}
	return total, nil
}

// Clear deletes every entry of the given collections, or of every mutable
// collection when none is given. Naming an append-only collection fails with
// core.ErrAppendOnly before anything is deleted.
func (e *Engine) Clear(ctx context.Context, collections ...core.Collection) (err error) {
	start := time.Now()
	defer func() { e.observe("clear", start, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	cs, err := resolveCollections(collections, core.MutableCollections())
	if err != nil {
		return err
	}
	for _, c := range cs {
		if c.AppendOnly() {
			return fmt.Errorf("%w: cannot clear %s", core.ErrAppendOnly, c)
		}
	}

	for _, c := range cs {
		names, err := e.listEntryFiles(c)
		if err != nil {
			return err
		}
		ids := make(map[string]bool, len(names))
		for _, name := range names {
			ids[strings.TrimSuffix(name, EntryExt)] = true
		}
		for _, r := range e.manifests[c].all() {
			ids[r.ID] = true
		}

		for id := range ids {
			if prev, ok := e.cache.get(id); ok {
				e.index.Remove(id, indexableText(prev))
			}
			e.index.Drop(id)
			e.cache.evict(id)
			if err := os.Remove(e.entryPath(c, id)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove file: %w", err)
			}
		}

		m := e.manifests[c]
		m.reset()
		if err := m.save(); err != nil {
			return err
		}
		e.config.Logger.Debug("collection cleared", "collection", c, "removed", len(ids))
	}
	return nil
}

// List returns the live entries of a collection, newest first, paged with
// opts. A zero limit returns every entry after the offset.
func (e *Engine) List(ctx context.Context, c core.Collection, opts core.ListOptions) (out []core.Entry, err error) {
	start := time.Now()
	defer func() { e.observe("list", start, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkReady(); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", c)
	}

	records := e.manifests[c].all()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	now := e.now()
	out = make([]core.Entry, 0, len(records))
	for _, r := range records {
		en, ok := e.load(r.ID)
		if !ok || en.Collection != c || en.Expired(now) {
			continue
		}
		out = append(out, en)
	}
	return page(out, opts.Offset, opts.Limit), nil
}

// page applies offset then limit. A non-positive limit means no limit.
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Stats summarises the live entries of a collection.
func (e *Engine) Stats(ctx context.Context, c core.Collection) (core.CollectionStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkReady(); err != nil {
		return core.CollectionStats{}, err
	}
	if !c.Valid() {
		return core.CollectionStats{}, fmt.Errorf("unknown collection %q", c)
	}

	stats := core.CollectionStats{Collection: c, Entities: map[string]int{}}
	tags := map[string]int{}
	now := e.now()

	for _, r := range e.manifests[c].all() {
		en, ok := e.load(r.ID)
		if !ok || en.Expired(now) {
			continue
		}
		stats.Count++
		for _, t := range en.Tags {
			tags[t]++
		}
		if en.AssociatedEntity != "" {
			stats.Entities[en.AssociatedEntity]++
		}
		created := en.CreatedAt
		if stats.Oldest == nil || created.Before(*stats.Oldest) {
			stats.Oldest = &created
		}
		if stats.Newest == nil || created.After(*stats.Newest) {
			stats.Newest = &created
		}
	}

	for t, n := range tags {
		stats.TopTags = append(stats.TopTags, core.TagCount{Tag: t, Count: n})
	}
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count != stats.TopTags[j].Count {
			return stats.TopTags[i].Count > stats.TopTags[j].Count
		}
		return stats.TopTags[i].Tag < stats.TopTags[j].Tag
	})
	if len(stats.TopTags) > topTagsLimit {
		stats.TopTags = stats.TopTags[:topTagsLimit]
	}
	return stats, nil
}

const topTagsLimit = 10

// Ledger returns the append-only ledger stored next to the collections.
// Its operations return core.ErrNotInitialized until Initialize completes.
func (e *Engine) Ledger() core.Ledger { return engineLedger{e: e} }

// engineLedger gates the engine's ledger on the engine's readiness.
type engineLedger struct {
	e *Engine
}

func (l engineLedger) ready() error {
	l.e.mu.Lock()
	defer l.e.mu.Unlock()
	return l.e.checkReady()
}

func (l engineLedger) AppendLine(ctx context.Context, line string) error {
	if err := l.ready(); err != nil {
		return err
	}
	return l.e.ledger.AppendLine(ctx, line)
}

func (l engineLedger) ReadAllLines(ctx context.Context) ([]string, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	return l.e.ledger.ReadAllLines(ctx)
}

var (
	_ core.Store          = (*Engine)(nil)
	_ core.Statistician   = (*Engine)(nil)
	_ core.LedgerProvider = (*Engine)(nil)
	_ core.Watchable      = (*Engine)(nil)
)
