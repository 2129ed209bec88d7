package platform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/internal/platform"
	"github.com/aretw0/strata/pkg/core"
)

type AuditRecord struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

// baseStore aliases core.Store so the embedded field is not named Store,
// which would shadow the interface's Store method.
type baseStore = core.Store

type ledgerlessStore struct {
	baseStore
}

func TestNewTypedLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("Round Trip Through Store Ledger", func(t *testing.T) {
		store, err := platform.Init(ctx, t.TempDir())
		require.NoError(t, err)

		ledger, err := platform.NewTypedLedger[AuditRecord](store)
		require.NoError(t, err)

		require.NoError(t, ledger.Append(ctx, AuditRecord{Action: "store", Target: "n1"}))
		require.NoError(t, ledger.Append(ctx, AuditRecord{Action: "remove", Target: "n1"}))

		all, err := ledger.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, []AuditRecord{
			{Action: "store", Target: "n1"},
			{Action: "remove", Target: "n1"},
		}, all)
	})

	t.Run("Store Without Ledger", func(t *testing.T) {
		_, err := platform.NewTypedLedger[AuditRecord](ledgerlessStore{})
		assert.ErrorIs(t, err, platform.ErrNoLedger)
	})
}
