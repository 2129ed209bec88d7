package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

var words = []string{
	"cache", "pipeline", "deploy", "dragon", "latency", "index", "ledger",
	"horizon", "schema", "replica", "tuesday", "budget", "review", "sprint",
}

func main() {
	count := flag.Int("count", 1000, "Number of entries to generate")
	queries := flag.Int("queries", 100, "Number of searches to run")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	flag.Parse()

	// 1. Setup Namespace
	benchDir, err := os.MkdirTemp("", "strata_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	fmt.Printf("Generating %d entries in %s...\n", *count, benchDir)
	startGen := time.Now()

	// Direct file writes simulate an existing store and keep setup fast.
	now := time.Now().UTC()
	for i := 0; i < *count; i++ {
		c := core.MutableCollections()[i%len(core.MutableCollections())]
		e := core.Entry{
			ID:         fmt.Sprintf("entry-%d", i),
			Collection: c,
			Content: fmt.Sprintf("Benchmark entry %d about %s and %s near %s",
				i, words[i%len(words)], words[(i*7)%len(words)], words[(i*3)%len(words)]),
			Tags:       []string{"benchmark", words[i%len(words)]},
			Confidence: core.Medium,
			CreatedAt:  now.Add(-time.Duration(i) * time.Minute),
			UpdatedAt:  now.Add(-time.Duration(i) * time.Minute),
		}
		dir := filepath.Join(benchDir, fs.CollectionsDir, string(c))
		if err := os.MkdirAll(dir, 0755); err != nil {
			panic(err)
		}
		if err := os.WriteFile(filepath.Join(dir, e.ID+fs.EntryExt), fs.EncodeEntry(e), 0644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	// Run 1: Cold (no manifests yet)
	fmt.Println("Initializing (Run 1 - Cold)...")
	startCold := time.Now()
	svc, err := strata.New(ctx, benchDir, strata.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	cold := time.Since(startCold)

	// Run 2: Warm (manifests already reconciled)
	fmt.Println("Initializing (Run 2 - Warm)...")
	startWarm := time.Now()
	svc, err = strata.New(ctx, benchDir, strata.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	warm := time.Since(startWarm)

	fmt.Printf("Running %d searches...\n", *queries)
	startSearch := time.Now()
	hits := 0
	for i := 0; i < *queries; i++ {
		results, err := svc.Recall(ctx, core.SearchOptions{Query: words[i%len(words)]})
		if err != nil {
			panic(err)
		}
		hits += len(results)
	}
	search := time.Since(startSearch)

	startList := time.Now()
	listed := 0
	for _, c := range core.Collections {
		entries, err := svc.List(ctx, c, core.ListOptions{})
		if err != nil {
			panic(err)
		}
		listed += len(entries)
	}
	list := time.Since(startList)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d entries):\n", *count)
	fmt.Printf("  Init cold: %v\n", cold)
	fmt.Printf("  Init warm: %v\n", warm)
	if *queries > 0 {
		fmt.Printf("  Search:    %v total, %v/query (%d hits)\n", search, search/time.Duration(*queries), hits)
	}
	fmt.Printf("  List:      %v (Items: %d)\n", list, listed)
	fmt.Printf("--------------------------------------------------\n")
}
