package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/strata/pkg/core"
)

const watchBufferSize = 64

// Watch observes every collection directory and keeps the word index, hot
// cache and manifests in step with entry files edited outside the engine.
// An event is emitted for each change whose "collection/id" matches the
// doublestar pattern; non-matching changes are still applied. The channel is
// closed when ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	e.mu.Lock()
	if err := e.checkReady(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	for _, c := range core.Collections {
		dir := e.collectionDir(c)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	events := make(chan core.Event, watchBufferSize)
	e.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer e.setWatcherActive(false)
		defer watcher.Close()
		defer func() {
			if recovered := recover(); recovered != nil {
				var stack string
				if e.config.Logger.Enabled(ctx, slog.LevelDebug) {
					stack = string(debug.Stack())
				}
				e.config.Logger.Error("watcher panic", "error", recovered, "stack", stack)
			}
		}()
		return e.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		e.config.Logger.Error("watcher stopped", "error", err)
	}))

	return events, nil
}

func (e *Engine) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case fsEvent, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			ev, ok := e.applyFilesystemEvent(fsEvent)
			if !ok {
				continue
			}
			match, _ := doublestar.Match(pattern, string(ev.Collection)+"/"+ev.ID)
			if !match {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			e.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

// applyFilesystemEvent refreshes in-memory state for one changed path and
// returns the event to report. ok is false for paths that are not entry files.
func (e *Engine) applyFilesystemEvent(fsEvent fsnotify.Event) (ev core.Event, ok bool) {
	name := filepath.Base(fsEvent.Name)
	if isTempFile(name) || filepath.Ext(name) != EntryExt {
		return core.Event{}, false
	}
	c := core.Collection(filepath.Base(filepath.Dir(fsEvent.Name)))
	if !c.Valid() {
		return core.Event{}, false
	}
	id := strings.TrimSuffix(name, EntryExt)
	if !validID(id) {
		return core.Event{}, false
	}

	e.config.Logger.Debug("event received", "name", fsEvent.Name, "op", fsEvent.Op.String())

	e.mu.Lock()
	defer e.mu.Unlock()

	typ, changed := e.refresh(c, id)
	if !changed {
		return core.Event{}, false
	}
	return core.Event{
		Type:       typ,
		ID:         id,
		Collection: c,
		Timestamp:  time.Now().Unix(),
	}, true
}

// refresh re-reads the file for id in collection c and updates index, cache
// and manifest to match. Callers hold e.mu.
func (e *Engine) refresh(c core.Collection, id string) (core.EventType, bool) {
	m := e.manifests[c]
	_, known := m.get(id)
	path := e.entryPath(c, id)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		delete(e.written, id)
		cached, inCache := e.cache.get(id)
		if !known && !(inCache && cached.Collection == c) {
			return "", false
		}
		e.index.Drop(id)
		e.cache.evict(id)
		m.remove(id)
		e.saveManifest(c, m)
		return core.EventDelete, true
	}

	var en core.Entry
	if err == nil {
		en, err = DecodeEntry(data)
	}
	if err == nil && (en.ID != id || en.Collection != c) {
		err = fmt.Errorf("%w: header does not match file location", core.ErrMalformedEntry)
	}
	if err != nil {
		e.skip(c, path, err)
		return "", false
	}

	e.index.Drop(id)
	e.index.Add(id, indexableText(en))
	e.cache.evict(id)
	e.cache.put(en)
	m.upsert(recordOf(en))
	e.saveManifest(c, m)

	if typ, ok := e.written[id]; ok {
		delete(e.written, id)
		return typ, true
	}
	if known {
		return core.EventModify, true
	}
	return core.EventCreate, true
}

func (e *Engine) saveManifest(c core.Collection, m *manifest) {
	if e.config.ReadOnly {
		return
	}
	if err := m.save(); err != nil {
		e.config.Logger.Error("failed to save manifest", "collection", c, "error", err)
	}
}

func (e *Engine) setWatcherActive(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.watcherActive = active
	if !active {
		e.written = make(map[string]core.EventType)
	}
}
