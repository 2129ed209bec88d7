package typed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typed"
)

type AuditRecord struct {
	Event string `json:"event"`
	Actor string `json:"actor,omitempty"`
}

func TestTypedService_Remember(t *testing.T) {
	engine := setupEngine(t)
	svc := typed.NewService[Decision](core.NewService(engine))
	ctx := context.Background()

	m := &typed.EntryModel[Decision]{
		Entry: core.Entry{Collection: core.Strategic},
		Data:  Decision{Title: "Adopt quarterly roadmap"},
	}
	require.NoError(t, svc.Save(ctx, m))
	assert.NotEmpty(t, m.ID, "id is generated")
	assert.Equal(t, core.Medium, m.Confidence, "confidence defaults to medium")
	assert.False(t, m.CreatedAt.IsZero())

	got, ok, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Adopt quarterly roadmap", got.Data.Title)

	hits, err := svc.Recall(ctx, core.SearchOptions{Query: "quarterly"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, m.ID, hits[0].ID)

	list, err := svc.List(ctx, core.Strategic, core.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err := svc.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestTypedLedger(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()
	audit := typed.NewLedger[AuditRecord](engine.Ledger())

	require.NoError(t, audit.Append(ctx, AuditRecord{Event: "created", Actor: "ops"}))
	require.NoError(t, engine.Ledger().AppendLine(ctx, `{"event": 42}`))
	require.NoError(t, audit.Append(ctx, AuditRecord{Event: "archived"}))

	recs, err := audit.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []AuditRecord{{Event: "created", Actor: "ops"}, {Event: "archived"}}, recs.Items)
	assert.Equal(t, 1, recs.SkippedLines)

	all, err := audit.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Non-object records are refused by the ledger.
	assert.ErrorIs(t, typed.NewLedger[string](engine.Ledger()).Append(ctx, "plain"), core.ErrInvalidRecord)
}
