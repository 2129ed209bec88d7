package strata_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/core"
)

// Example_basic demonstrates how to open a store, remember an entry and recall it.
func Example_basic() {
	// Create a temporary directory for the example
	tmpDir, err := os.MkdirTemp("", "strata-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	svc, err := strata.New(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	// 1. Remember an entry
	_, err = svc.Remember(ctx, core.EntryInput{
		ID:         "dragon",
		Collection: core.Creative,
		Content:    "The dragon flies at dawn",
		Tags:       []string{"dragon"},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 2. Recall it
	results, err := svc.Recall(ctx, core.SearchOptions{Query: "dragon"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found entry: %s (%s)\n", results[0].Entry.ID, results[0].Entry.Collection)
	// Output:
	// Found entry: dragon (creative)
}

// ExampleNewTypedRepository demonstrates how to use the Generic Typed Wrapper for type safety.
func ExampleNewTypedRepository() {
	tmpDir, err := os.MkdirTemp("", "strata-typed-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store, err := strata.Init(ctx, filepath.Join(tmpDir, "vault"))
	if err != nil {
		log.Fatal(err)
	}

	// Define your Domain Model
	type Decision struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	}

	decisions := strata.NewTypedRepository[Decision](store)

	err = decisions.Save(ctx, &strata.EntryModel[Decision]{
		Entry: core.Entry{
			ID:         "adr-001",
			Collection: core.Strategic,
			Confidence: core.High,
		},
		Data: Decision{Title: "Use plain files", Status: "accepted"},
	})
	if err != nil {
		log.Fatal(err)
	}

	model, ok, err := decisions.Get(ctx, "adr-001")
	if err != nil || !ok {
		log.Fatal("decision not found")
	}

	fmt.Printf("Decision: %s (%s)\n", model.Data.Title, model.Data.Status)
	// Output:
	// Decision: Use plain files (accepted)
}

// ExampleNewTypedLedger demonstrates appending typed records to the ledger.
func ExampleNewTypedLedger() {
	tmpDir, err := os.MkdirTemp("", "strata-ledger-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store, err := strata.Init(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	type Event struct {
		Kind string `json:"kind"`
	}

	ledger, err := strata.NewTypedLedger[Event](store)
	if err != nil {
		log.Fatal(err)
	}
	_ = ledger.Append(ctx, Event{Kind: "boot"})
	_ = ledger.Append(ctx, Event{Kind: "shutdown"})

	events, err := ledger.All(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(events), events[0].Kind, events[1].Kind)
	// Output:
	// 2 boot shutdown
}
