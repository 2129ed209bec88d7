package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntryInput is what callers supply to Remember. Missing fields are filled
// with defaults.
type EntryInput struct {
	ID               string
	Collection       Collection
	Content          string
	Tags             []string
	Confidence       Confidence
	Origin           string
	AssociatedEntity string
	SecondaryTag     string
	Summary          string
	// TTL, when positive, sets ExpiresAt relative to now.
	TTL time.Duration
}

// Service handles the business logic for entries.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceClock overrides the clock used for timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// Remember creates or updates an entry.
//
// Workflow:
//  1. Generate an ID when none is given.
//  2. Classify the collection when none is given.
//  3. Keep the original creation time when the ID already exists.
//  4. Persist through the store.
func (s *Service) Remember(ctx context.Context, in EntryInput) (Entry, error) {
	if in.Content == "" {
		return Entry{}, fmt.Errorf("%w: content cannot be empty", ErrInvalidEntry)
	}

	now := s.now().UTC()
	e := Entry{
		ID:               in.ID,
		Collection:       in.Collection,
		Content:          in.Content,
		Tags:             in.Tags,
		Confidence:       in.Confidence,
		Origin:           in.Origin,
		AssociatedEntity: in.AssociatedEntity,
		SecondaryTag:     in.SecondaryTag,
		Summary:          in.Summary,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Collection == "" {
		e.Collection = Classify(e.Content, e.AssociatedEntity)
	}
	if e.Confidence == "" {
		e.Confidence = Medium
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if in.TTL > 0 {
		exp := now.Add(in.TTL)
		e.ExpiresAt = &exp
	}

	if prev, ok, err := s.store.Retrieve(ctx, e.ID); err != nil {
		return Entry{}, err
	} else if ok {
		e.CreatedAt = prev.CreatedAt
	}

	if err := s.store.Store(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Get retrieves an entry.
func (s *Service) Get(ctx context.Context, id string) (Entry, bool, error) {
	if id == "" {
		return Entry{}, false, errors.New("entry ID cannot be empty")
	}
	return s.store.Retrieve(ctx, id)
}

// Recall runs a ranked search.
func (s *Service) Recall(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	return s.store.Search(ctx, opts)
}

// List returns the live entries of a collection.
func (s *Service) List(ctx context.Context, c Collection, opts ListOptions) ([]Entry, error) {
	return s.store.List(ctx, c, opts)
}

// Forget removes an entry.
func (s *Service) Forget(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("entry ID cannot be empty")
	}
	return s.store.Remove(ctx, id)
}

// Count returns the number of live entries.
func (s *Service) Count(ctx context.Context, collections ...Collection) (int, error) {
	return s.store.Count(ctx, collections...)
}

// Clear deletes entries from mutable collections.
func (s *Service) Clear(ctx context.Context, collections ...Collection) error {
	return s.store.Clear(ctx, collections...)
}

// Stats summarises a collection if the store supports it.
func (s *Service) Stats(ctx context.Context, c Collection) (CollectionStats, error) {
	st, ok := s.store.(Statistician)
	if !ok {
		return CollectionStats{}, errors.New("store does not support statistics")
	}
	return st.Stats(ctx, c)
}

// AppendLine writes a record to the ledger.
func (s *Service) AppendLine(ctx context.Context, line string) error {
	lp, ok := s.store.(LedgerProvider)
	if !ok {
		return errors.New("store does not carry a ledger")
	}
	return lp.Ledger().AppendLine(ctx, line)
}

// ReadAllLines returns every ledger record in append order.
func (s *Service) ReadAllLines(ctx context.Context) ([]string, error) {
	lp, ok := s.store.(LedgerProvider)
	if !ok {
		return nil, errors.New("store does not carry a ledger")
	}
	return lp.Ledger().ReadAllLines(ctx)
}

// Watch observes changes in the store if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.store.(Watchable)
	if !ok {
		return nil, errors.New("store does not support watching")
	}
	return w.Watch(ctx, pattern)
}
