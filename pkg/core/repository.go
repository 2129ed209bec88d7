package core

import "context"

// Store defines the contract for persisting and querying entries.
// Adhering to this interface keeps the service independent of the
// underlying storage mechanism.
type Store interface {
	// Initialize prepares the storage and builds every in-memory index.
	// No other method may be used before it returns successfully.
	Initialize(ctx context.Context) error

	// Store persists an entry, creating it or replacing the entry with the same ID.
	Store(ctx context.Context, e Entry) error

	// Retrieve returns the entry with the given ID. The boolean is false when
	// no visible entry exists; that is not an error.
	Retrieve(ctx context.Context, id string) (Entry, bool, error)

	// Search runs a ranked full-text query.
	Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error)

	// List returns the live entries of a collection, newest first.
	List(ctx context.Context, c Collection, opts ListOptions) ([]Entry, error)

	// Remove deletes an entry. It reports false when the entry does not exist
	// or belongs to an append-only collection.
	Remove(ctx context.Context, id string) (bool, error)

	// Count returns the number of live entries in the given collections, or
	// in every collection when none is given.
	Count(ctx context.Context, collections ...Collection) (int, error)

	// Clear deletes every entry of the given collections, or of every mutable
	// collection when none is given.
	Clear(ctx context.Context, collections ...Collection) error
}

// Ledger is the raw append-only audit trail.
type Ledger interface {
	// AppendLine writes one serialized record.
	AppendLine(ctx context.Context, line string) error

	// ReadAllLines returns every record ever appended, in append order.
	ReadAllLines(ctx context.Context) ([]string, error)
}

// LedgerProvider is implemented by stores that carry an append-only ledger.
type LedgerProvider interface {
	Ledger() Ledger
}

// Statistician is implemented by stores that can summarise a collection.
type Statistician interface {
	Stats(ctx context.Context, c Collection) (CollectionStats, error)
}

// Watchable is implemented by stores that can observe external changes.
type Watchable interface {
	// Watch emits an event for each change whose "collection/id" matches pattern.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
