package platform

import (
	"errors"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typed"
)

// ErrNoLedger is returned when a store does not carry an append-only ledger.
var ErrNoLedger = errors.New("store does not carry a ledger")

// NewTypedLedger returns a typed view of the store's ledger.
// T should marshal to a JSON object.
func NewTypedLedger[T any](store core.Store) (*typed.Ledger[T], error) {
	lp, ok := store.(core.LedgerProvider)
	if !ok {
		return nil, ErrNoLedger
	}
	return typed.NewLedger[T](lp.Ledger()), nil
}
