package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/internal/platform"
	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Collection Directories", func(t *testing.T) {
		storePath := filepath.Join(t.TempDir(), "vault")

		store, err := platform.Init(ctx, storePath, platform.WithForceTemp(true))
		require.NoError(t, err)

		engine, ok := store.(*fs.Engine)
		require.True(t, ok, "expected fs engine")
		assert.Equal(t, storePath, engine.Root)

		for _, c := range core.Collections {
			info, err := os.Stat(filepath.Join(storePath, fs.CollectionsDir, string(c)))
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		}
	})

	t.Run("MustExist Fails if Directory Missing", func(t *testing.T) {
		storePath := filepath.Join(t.TempDir(), "missing")

		_, err := platform.Init(ctx, storePath, platform.WithMustExist(true), platform.WithForceTemp(true))
		assert.Error(t, err)
	})

	t.Run("ReadOnly Does Not Create Directories", func(t *testing.T) {
		storePath := filepath.Join(t.TempDir(), "readonly")

		store, err := platform.Init(ctx, storePath, platform.WithReadOnly(true))
		require.NoError(t, err)

		_, err = os.Stat(storePath)
		assert.True(t, os.IsNotExist(err))

		err = store.Store(ctx, core.Entry{ID: "x", Collection: core.Technical, Content: "x"})
		assert.ErrorIs(t, err, core.ErrReadOnly)
	})

	t.Run("Injected Store Is Returned As Is", func(t *testing.T) {
		injected := fs.NewEngine(fs.Config{Root: t.TempDir()})

		store, err := platform.Init(ctx, "ignored", platform.WithStore(injected))
		require.NoError(t, err)
		assert.Same(t, injected, store)
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init(ctx, t.TempDir(), platform.WithAdapter("sqlite"))
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("Scan Progress Callbacks", func(t *testing.T) {
		storePath := t.TempDir()
		first, err := platform.Init(ctx, storePath)
		require.NoError(t, err)
		require.NoError(t, first.Store(ctx, core.Entry{ID: "a", Collection: core.Wisdom, Content: "alpha", Confidence: core.Medium}))
		require.NoError(t, first.Store(ctx, core.Entry{ID: "b", Collection: core.Creative, Content: "beta", Confidence: core.Medium}))

		var (
			mu    sync.Mutex
			total int
			seen  []string
		)
		_, err = platform.Init(ctx, storePath, platform.WithScanProgress(
			func(n int) { total = n },
			func(path string) {
				// Collections are scanned in parallel.
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, filepath.Base(path))
			},
		))
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.ElementsMatch(t, []string{"a.md", "b.md"}, seen)
	})
}

func TestResolveStorePath(t *testing.T) {
	t.Run("No Force Keeps Path", func(t *testing.T) {
		assert.Equal(t, "./vault", platform.ResolveStorePath("./vault", false))
		assert.Equal(t, ".", platform.ResolveStorePath("", false))
	})

	t.Run("Temp Paths Are Kept", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, filepath.Clean(dir), platform.ResolveStorePath(dir, true))
	})

	t.Run("Relative Paths Are Sandboxed", func(t *testing.T) {
		got := platform.ResolveStorePath("my-vault", true)
		assert.Equal(t, filepath.Join(os.TempDir(), platform.DevDirName, "my-vault"), got)
	})

	t.Run("Traversal Is Dropped", func(t *testing.T) {
		got := platform.ResolveStorePath("../../etc", true)
		assert.Equal(t, filepath.Join(os.TempDir(), platform.DevDirName, "etc"), got)
	})

	t.Run("Empty Uses Default", func(t *testing.T) {
		got := platform.ResolveStorePath("", true)
		assert.Equal(t, filepath.Join(os.TempDir(), platform.DevDirName, "default"), got)
	})
}

func TestIsDevRun(t *testing.T) {
	// Test binaries end in .test, so this is always a dev run.
	assert.True(t, platform.IsDevRun())
}
