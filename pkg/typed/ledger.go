package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
)

// Ledger appends and reads JSON records of type T on a core.Ledger.
type Ledger[T any] struct {
	ledger core.Ledger
}

// NewLedger wraps a raw ledger.
func NewLedger[T any](ledger core.Ledger) *Ledger[T] {
	return &Ledger[T]{ledger: ledger}
}

// Append marshals record as one JSON line. T must marshal to a JSON object.
func (l *Ledger[T]) Append(ctx context.Context, record T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return l.ledger.AppendLine(ctx, string(data))
}

// Records is the outcome of reading a typed ledger.
type Records[T any] struct {
	Items []T
	// SkippedLines counts lines that did not unmarshal into T.
	SkippedLines int
}

// Read returns every record that unmarshals into T, in append order.
func (l *Ledger[T]) Read(ctx context.Context) (Records[T], error) {
	lines, err := l.ledger.ReadAllLines(ctx)
	if err != nil {
		return Records[T]{}, err
	}

	out := Records[T]{Items: make([]T, 0, len(lines))}
	for _, line := range lines {
		var rec T
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			out.SkippedLines++
			continue
		}
		out.Items = append(out.Items, rec)
	}
	return out, nil
}

// All returns the records of Read, dropping the skip count.
func (l *Ledger[T]) All(ctx context.Context) ([]T, error) {
	recs, err := l.Read(ctx)
	return recs.Items, err
}
