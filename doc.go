// Package strata is the Composition Root for the Strata store.
//
// It connects the core business logic (Domain Layer) with the infrastructure adapters
// (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Strata is an embedded vault for structured notes. Every entry is a plain text
// file with a small metadata header, grouped into a fixed set of collections.
// Files stay human-readable and editable; the in-memory word index and the
// per-collection manifests are rebuilt from them on every start.
//
// Features:
//
//   - **Human-readable storage**: one file per entry, atomic writes.
//   - **Full-text search**: exact and prefix matches, recency and confidence bonuses.
//   - **Append-only horizon**: entries of the horizon collection are write-once.
//   - **Ledger**: a JSON Lines audit trail next to the collections.
//   - **Typed Retrieval**: Generic wrappers (`NewTypedRepository[T]`, `NewTypedLedger[T]`).
//   - **Extensible**: other backends can implement `core.Store`.
//
// Usage:
//
//	svc, err := strata.New(ctx, "./vault",
//		strata.WithLogger(logger),
//	)
//
//	entry, err := svc.Remember(ctx, core.EntryInput{Content: "Deploy on Tuesdays"})
//	results, err := svc.Recall(ctx, core.SearchOptions{Query: "deploy"})
package strata
