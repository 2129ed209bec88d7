package core

import "errors"

// Common errors.
var (
	ErrReadOnly       = errors.New("store is in read-only mode")
	ErrNotInitialized = errors.New("store not initialized: call Initialize before using storage operations")
	ErrAppendOnly     = errors.New("collection is append-only")
	ErrInvalidEntry   = errors.New("invalid entry")
	ErrMalformedEntry = errors.New("malformed entry file")
	ErrInvalidRecord  = errors.New("invalid ledger record")
)
