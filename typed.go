package strata

import (
	"context"

	"github.com/aretw0/strata/internal/platform"
	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typed"
)

// EntryModel is a public alias for the typed entry model.
type EntryModel[T any] = typed.EntryModel[T]

// TypedRepository is a public alias for the typed repository.
type TypedRepository[T any] = typed.Repository[T]

// TypedService is a public alias for the typed service.
type TypedService[T any] = typed.Service[T]

// TypedLedger is a public alias for the typed ledger.
type TypedLedger[T any] = typed.Ledger[T]

// NewTypedRepository creates a type-safe wrapper around an existing store.
func NewTypedRepository[T any](store core.Store) *typed.Repository[T] {
	return typed.NewRepository[T](store)
}

// NewTypedService creates a type-safe wrapper around an existing service.
func NewTypedService[T any](svc *core.Service) *typed.Service[T] {
	return typed.NewService[T](svc)
}

// NewTypedLedger returns a typed view of the store's append-only ledger.
func NewTypedLedger[T any](store core.Store) (*typed.Ledger[T], error) {
	return platform.NewTypedLedger[T](store)
}

// OpenTypedRepository simplifies creating a TypedRepository from a path.
func OpenTypedRepository[T any](ctx context.Context, path string, opts ...Option) (*typed.Repository[T], error) {
	store, err := Init(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewRepository[T](store), nil
}

// OpenTypedService simplifies creating a TypedService from a path.
func OpenTypedService[T any](ctx context.Context, path string, opts ...Option) (*typed.Service[T], error) {
	svc, err := New(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewService[T](svc), nil
}
