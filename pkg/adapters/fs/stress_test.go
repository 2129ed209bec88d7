package fs_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

// TestStress_ExternalVsInternal simulates a "noisy neighbor": another process
// rewrites entry files (some of them garbage) while the engine stores entries
// and a watcher reconciles. The engine must not panic or deadlock, and a
// restart must see every entry it stored.
func TestStress_ExternalVsInternal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	engine, root := setupEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := engine.Watch(ctx, "")
	require.NoError(t, err)

	var wg sync.WaitGroup

	// 1. External Actor (OS Writes)
	wg.Add(1)
	go func() {
		defer wg.Done()
		dir := filepath.Join(root, fs.CollectionsDir, string(core.Operational))
		for i := 0; ctx.Err() == nil; i++ {
			id := fmt.Sprintf("noise-%d", rand.Intn(10))
			data := fs.EncodeEntry(entry(id, core.Operational, fmt.Sprintf("noise %d", i)))
			if i%5 == 0 {
				data = []byte("garbage without a header")
			}
			_ = os.WriteFile(filepath.Join(dir, id+fs.EntryExt), data, 0644)
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		}
	}()

	// 2. Internal Actor (engine writes)
	written := make(map[string]bool)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ctx.Err() == nil; i++ {
			id := fmt.Sprintf("data-%d", rand.Intn(10))
			if err := engine.Store(context.Background(), entry(id, core.Technical, fmt.Sprintf("internal data %d", i))); err == nil {
				written[id] = true
			}
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		}
	}()

	// 3. Watcher Actor
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range events {
		}
	}()

	wg.Wait()
	require.NotEmpty(t, written)

	restarted := fs.NewEngine(fs.Config{
		Root:   root,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return testNow },
	})
	require.NoError(t, restarted.Initialize(context.Background()))

	for id := range written {
		got, ok, err := restarted.Retrieve(context.Background(), id)
		require.NoError(t, err)
		require.True(t, ok, "missing %s after restart", id)
		assert.Equal(t, core.Technical, got.Collection)
	}

	n, err := restarted.Count(context.Background(), core.Technical)
	require.NoError(t, err)
	assert.Equal(t, len(written), n)
}
