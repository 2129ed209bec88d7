package typed

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
)

// Service wraps a core.Service to provide type-safe access. Saving goes
// through Remember, so ids, collections and timestamps get their defaults.
type Service[T any] struct {
	svc *core.Service
}

// NewService creates a new typed service wrapper.
func NewService[T any](svc *core.Service) *Service[T] {
	return &Service[T]{svc: svc}
}

// Save persists a typed entry. The model is updated with the stored entry,
// including a generated ID when none was set.
func (s *Service[T]) Save(ctx context.Context, m *EntryModel[T]) error {
	if m.Saver == nil {
		m.Saver = s
	}
	e, err := toEntry(m)
	if err != nil {
		return err
	}

	stored, err := s.svc.Remember(ctx, core.EntryInput{
		ID:               e.ID,
		Collection:       e.Collection,
		Content:          e.Content,
		Tags:             e.Tags,
		Confidence:       e.Confidence,
		Origin:           e.Origin,
		AssociatedEntity: e.AssociatedEntity,
		SecondaryTag:     e.SecondaryTag,
		Summary:          e.Summary,
	})
	if err != nil {
		return err
	}
	m.Entry = stored
	return nil
}

// Get retrieves an entry via the Service.
func (s *Service[T]) Get(ctx context.Context, id string) (*EntryModel[T], bool, error) {
	e, ok, err := s.svc.Get(ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := fromEntry(e, s)
	return m, err == nil, err
}

// List retrieves the entries of a collection via the Service.
func (s *Service[T]) List(ctx context.Context, c core.Collection, opts core.ListOptions) ([]*EntryModel[T], error) {
	entries, err := s.svc.List(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	return fromEntries(entries, s)
}

// Recall searches and converts every hit. Hits whose body is not a T are
// reported as an error.
func (s *Service[T]) Recall(ctx context.Context, opts core.SearchOptions) ([]*EntryModel[T], error) {
	results, err := s.svc.Recall(ctx, opts)
	if err != nil {
		return nil, err
	}
	entries := make([]core.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, r.Entry)
	}
	return fromEntries(entries, s)
}

// Delete removes an entry via the Service.
func (s *Service[T]) Delete(ctx context.Context, id string) (bool, error) {
	return s.svc.Forget(ctx, id)
}

// Watch observes changes in the store.
func (s *Service[T]) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	return s.svc.Watch(ctx, pattern)
}
