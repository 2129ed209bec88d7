package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/core"
)

// openService opens the configured store.
func openService(ctx context.Context, extra ...strata.Option) (*core.Service, error) {
	opts := append(cfg.Options(), strata.WithLogger(slog.Default()))
	opts = append(opts, extra...)

	svc, err := strata.New(ctx, cfg.Root, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Root, err)
	}
	return svc, nil
}

// parseCollections converts a comma separated list.
func parseCollections(values ...string) ([]core.Collection, error) {
	var out []core.Collection
	for _, value := range values {
		for _, name := range splitList(value) {
			c, err := core.ParseCollection(name)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// splitList splits a comma separated flag value, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
