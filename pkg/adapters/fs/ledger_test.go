package fs_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

func TestLedger_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "entries.jsonl")
	ledger := fs.NewLedger(path, false)
	ctx := context.Background()

	lines, err := ledger.ReadAllLines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines, "missing file reads as empty")

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.AppendLine(ctx, fmt.Sprintf(`{"seq":%d}`, i)))
	}

	lines, err = ledger.ReadAllLines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"seq":0}`, `{"seq":1}`, `{"seq":2}`}, lines)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"seq\":0}\n{\"seq\":1}\n{\"seq\":2}\n", string(data))
}

func TestLedger_RejectsInvalidRecords(t *testing.T) {
	ledger := fs.NewLedger(filepath.Join(t.TempDir(), "entries.jsonl"), false)
	ctx := context.Background()

	for _, line := range []string{
		"",
		"plain text",
		`["array"]`,
		"{\"a\":1}\n{\"b\":2}",
		`{"unterminated":`,
	} {
		assert.ErrorIs(t, ledger.AppendLine(ctx, line), core.ErrInvalidRecord, line)
	}

	// A single trailing newline is tolerated.
	require.NoError(t, ledger.AppendLine(ctx, "{\"ok\":true}\n"))
	lines, err := ledger.ReadAllLines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"ok":true}`}, lines)
}

func TestLedger_ConcurrentAppends(t *testing.T) {
	ledger := fs.NewLedger(filepath.Join(t.TempDir(), "entries.jsonl"), false)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, ledger.AppendLine(ctx, fmt.Sprintf(`{"writer":%d}`, i)))
		}(i)
	}
	wg.Wait()

	lines, err := ledger.ReadAllLines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 20)
}
