package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/internal/platform"
	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

func setupService(t *testing.T, opts ...platform.Option) (*core.Service, string) {
	t.Helper()
	tmpDir := t.TempDir()

	service, err := platform.New(context.Background(), tmpDir, opts...)
	require.NoError(t, err, "failed to init service")
	return service, tmpDir
}

func TestService_RememberRecall(t *testing.T) {
	service, tmpDir := setupService(t)
	ctx := context.Background()

	saved, err := service.Remember(ctx, core.EntryInput{
		ID:         "deploy-notes",
		Collection: core.Operational,
		Content:    "Deploy the ingestion pipeline every Tuesday",
		Tags:       []string{"deploy", "pipeline"},
	})
	require.NoError(t, err)

	// Check the file exists on disk
	expectedPath := filepath.Join(tmpDir, fs.CollectionsDir, "operational", "deploy-notes.md")
	_, err = os.Stat(expectedPath)
	require.NoError(t, err, "entry file not created")

	results, err := service.Recall(ctx, core.SearchOptions{Query: "pipeline"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, saved.ID, results[0].Entry.ID)
	assert.Equal(t, []string{"pipeline"}, results[0].MatchedTerms)
}

func TestService_ReopenRebuildsIndex(t *testing.T) {
	ctx := context.Background()
	service, tmpDir := setupService(t)

	_, err := service.Remember(ctx, core.EntryInput{
		ID:         "arch",
		Collection: core.Technical,
		Content:    "Hexagonal architecture keeps adapters at the edge",
	})
	require.NoError(t, err)

	reopened, err := platform.New(ctx, tmpDir)
	require.NoError(t, err)

	got, ok, err := reopened.Get(ctx, "arch")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.Technical, got.Collection)

	results, err := reopened.Recall(ctx, core.SearchOptions{Query: "adapters"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_ClockOption(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	service, _ := setupService(t, platform.WithClock(func() time.Time { return fixed }))

	saved, err := service.Remember(context.Background(), core.EntryInput{
		Collection: core.Wisdom,
		Content:    "Measure twice",
	})
	require.NoError(t, err)
	assert.True(t, saved.CreatedAt.Equal(fixed))
}

func TestService_ReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	_, tmpDir := setupService(t)

	ro, err := platform.New(ctx, tmpDir, platform.WithReadOnly(true))
	require.NoError(t, err)

	_, err = ro.Remember(ctx, core.EntryInput{Collection: core.Creative, Content: "nope"})
	assert.ErrorIs(t, err, core.ErrReadOnly)

	err = ro.AppendLine(ctx, `{"a":1}`)
	assert.ErrorIs(t, err, core.ErrReadOnly)
}
