// Package typed provides type-safe views over the store: entries whose body
// is a JSON document of type T, and a ledger of JSON records of type T.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

// EntryModel is a typed view of an entry. Data is kept as the entry body in
// JSON form; the rest of the entry carries the usual metadata.
type EntryModel[T any] struct {
	core.Entry
	Data  T        // The typed body
	Saver Saver[T] // Active Record reference interface
}

// Saver avoids tight coupling between models and the Repository/Service
// that loaded them.
type Saver[T any] interface {
	Save(ctx context.Context, m *EntryModel[T]) error
}

// Save persists the model using the attached saver (Repository or Service).
func (m *EntryModel[T]) Save(ctx context.Context) error {
	if m.Saver == nil {
		return fmt.Errorf("entry is detached (missing Saver)")
	}
	return m.Saver.Save(ctx, m)
}

// Repository wraps a core.Store to provide type-safe access.
type Repository[T any] struct {
	store core.Store
}

// NewRepository creates a new type-safe wrapper around an existing store.
func NewRepository[T any](store core.Store) *Repository[T] {
	return &Repository[T]{store: store}
}

// Save marshals Data into the entry body and stores the entry.
func (r *Repository[T]) Save(ctx context.Context, m *EntryModel[T]) error {
	e, err := toEntry(m)
	if err != nil {
		return err
	}
	if m.Saver == nil {
		m.Saver = r
	}
	if err := r.store.Store(ctx, e); err != nil {
		return err
	}
	m.Entry = e
	return nil
}

// Get retrieves an entry and unmarshals its body. ok is false when the entry
// does not exist.
func (r *Repository[T]) Get(ctx context.Context, id string) (m *EntryModel[T], ok bool, err error) {
	e, ok, err := r.store.Retrieve(ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err = fromEntry(e, r)
	return m, err == nil, err
}

// List returns the entries of a collection converted to the typed model.
func (r *Repository[T]) List(ctx context.Context, c core.Collection, opts core.ListOptions) ([]*EntryModel[T], error) {
	entries, err := r.store.List(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	return fromEntries(entries, r)
}

// Delete removes an entry by ID.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Remove(ctx, id)
}

func toEntry[T any](m *EntryModel[T]) (core.Entry, error) {
	body, err := json.MarshalIndent(m.Data, "", "  ")
	if err != nil {
		return core.Entry{}, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	e := m.Entry
	e.Content = string(body)
	return e, nil
}

func fromEntry[T any](e core.Entry, saver Saver[T]) (*EntryModel[T], error) {
	var data T
	if err := json.Unmarshal([]byte(e.Content), &data); err != nil {
		return nil, fmt.Errorf("unmarshal of %s to target type failed: %w", e.ID, err)
	}
	return &EntryModel[T]{Entry: e, Data: data, Saver: saver}, nil
}

func fromEntries[T any](entries []core.Entry, saver Saver[T]) ([]*EntryModel[T], error) {
	result := make([]*EntryModel[T], 0, len(entries))
	for _, e := range entries {
		m, err := fromEntry(e, saver)
		if err != nil {
			return nil, fmt.Errorf("failed to process entry %s: %w", e.ID, err)
		}
		result = append(result, m)
	}
	return result, nil
}
