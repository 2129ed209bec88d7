package core_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
)

// MockStore implements core.Store in memory.
// It deliberately does NOT implement core.LedgerProvider to test fallback errors.
type MockStore struct {
	entries map[string]core.Entry
}

func NewMockStore() *MockStore {
	return &MockStore{entries: make(map[string]core.Entry)}
}

func (m *MockStore) Initialize(ctx context.Context) error { return nil }

func (m *MockStore) Store(ctx context.Context, e core.Entry) error {
	if prev, ok := m.entries[e.ID]; ok && prev.Collection.AppendOnly() {
		return core.ErrAppendOnly
	}
	m.entries[e.ID] = e
	return nil
}

func (m *MockStore) Retrieve(ctx context.Context, id string) (core.Entry, bool, error) {
	e, ok := m.entries[id]
	return e, ok, nil
}

func (m *MockStore) Search(ctx context.Context, opts core.SearchOptions) ([]core.SearchResult, error) {
	return nil, nil
}

func (m *MockStore) List(ctx context.Context, c core.Collection, opts core.ListOptions) ([]core.Entry, error) {
	var out []core.Entry
	for _, e := range m.entries {
		if e.Collection == c {
			out = append(out, e)
		}
	}
	// Sort for deterministic tests
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStore) Remove(ctx context.Context, id string) (bool, error) {
	e, ok := m.entries[id]
	if !ok || e.Collection.AppendOnly() {
		return false, nil
	}
	delete(m.entries, id)
	return true, nil
}

func (m *MockStore) Count(ctx context.Context, collections ...core.Collection) (int, error) {
	return len(m.entries), nil
}

func (m *MockStore) Clear(ctx context.Context, collections ...core.Collection) error {
	m.entries = make(map[string]core.Entry)
	return nil
}

func TestService_RememberAndForget(t *testing.T) {
	store := NewMockStore()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := core.NewService(store, core.WithServiceClock(func() time.Time { return clock }))
	ctx := context.TODO()

	// 1. Remember with defaults
	e, err := svc.Remember(ctx, core.EntryInput{Content: "refactor the database module"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, core.Technical, e.Collection)
	assert.Equal(t, core.Medium, e.Confidence)
	assert.Equal(t, clock, e.CreatedAt)
	assert.Nil(t, e.ExpiresAt)

	// 2. Update keeps creation time and bumps update time
	clock = clock.Add(time.Hour)
	updated, err := svc.Remember(ctx, core.EntryInput{ID: e.ID, Collection: core.Technical, Content: "changed"})
	require.NoError(t, err)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock, updated.UpdatedAt)

	// 3. Get
	got, ok, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "changed", got.Content)

	// 4. Forget
	removed, err := svc.Forget(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err = svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_RememberTTL(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := core.NewService(NewMockStore(), core.WithServiceClock(func() time.Time { return clock }))

	e, err := svc.Remember(context.TODO(), core.EntryInput{Content: "short lived", TTL: 90 * time.Second})
	require.NoError(t, err)
	require.NotNil(t, e.ExpiresAt)
	assert.Equal(t, clock.Add(90*time.Second), *e.ExpiresAt)
}

func TestService_RememberRejectsEmptyContent(t *testing.T) {
	svc := core.NewService(NewMockStore())

	_, err := svc.Remember(context.TODO(), core.EntryInput{ID: "x"})
	assert.True(t, errors.Is(err, core.ErrInvalidEntry))
}

func TestService_RememberHorizonIsWriteOnce(t *testing.T) {
	svc := core.NewService(NewMockStore())
	ctx := context.TODO()

	_, err := svc.Remember(ctx, core.EntryInput{ID: "h1", Collection: core.Horizon, Content: "a good future"})
	require.NoError(t, err)

	_, err = svc.Remember(ctx, core.EntryInput{ID: "h1", Collection: core.Horizon, Content: "rewritten"})
	assert.ErrorIs(t, err, core.ErrAppendOnly)
}

func TestService_UnsupportedCapabilities(t *testing.T) {
	svc := core.NewService(NewMockStore())
	ctx := context.TODO()

	err := svc.AppendLine(ctx, `{"event":"a"}`)
	require.Error(t, err)
	assert.Equal(t, "store does not carry a ledger", err.Error())

	_, err = svc.Stats(ctx, core.Wisdom)
	assert.Error(t, err)

	_, err = svc.Watch(ctx, "**")
	assert.Error(t, err)

	state, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "store", state.StoreType)
	assert.Empty(t, state.Capabilities)
}
