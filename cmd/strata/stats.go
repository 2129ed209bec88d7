package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

var (
	statsJSON  bool
	statsState bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [collection...]",
	Short: "Summarise collections",
	Long: `Stats prints, per collection, the number of live entries, the most used
tags, the associated entities and the age range. --state adds the engine's
internal state (index size, cache use, skipped files).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		collections, err := parseCollections(args...)
		if err != nil {
			return err
		}
		if len(collections) == 0 {
			collections = core.Collections
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		all := make([]core.CollectionStats, 0, len(collections))
		for _, c := range collections {
			st, err := svc.Stats(cmd.Context(), c)
			if err != nil {
				return fmt.Errorf("failed to summarise %s: %w", c, err)
			}
			all = append(all, st)
		}

		var state *fs.EngineState
		if statsState {
			if engine, ok := svc.Store().(*fs.Engine); ok {
				s := engine.State().(fs.EngineState)
				state = &s
			}
		}

		if statsJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(struct {
				Collections []core.CollectionStats `json:"collections"`
				State       *fs.EngineState        `json:"state,omitempty"`
			}{all, state})
		}

		out := cmd.OutOrStdout()
		header := color.New(color.FgCyan, color.Bold)
		for _, st := range all {
			header.Fprintf(out, "%s", st.Collection)
			fmt.Fprintf(out, ": %d entries\n", st.Count)
			if len(st.TopTags) > 0 {
				tags := make([]string, 0, len(st.TopTags))
				for _, tc := range st.TopTags {
					tags = append(tags, fmt.Sprintf("%s(%d)", tc.Tag, tc.Count))
				}
				fmt.Fprintf(out, "  tags:     %s\n", strings.Join(tags, " "))
			}
			if len(st.Entities) > 0 {
				fmt.Fprintf(out, "  entities: %d\n", len(st.Entities))
			}
			if st.Oldest != nil && st.Newest != nil {
				fmt.Fprintf(out, "  range:    %s .. %s\n", st.Oldest.Format(time.DateOnly), st.Newest.Format(time.DateOnly))
			}
		}
		if state != nil {
			header.Fprintln(out, "engine")
			fmt.Fprintf(out, "  documents: %d, terms: %d\n", state.Documents, state.Terms)
			fmt.Fprintf(out, "  cache:     %d/%d\n", state.CacheSize, state.CacheCapacity)
			fmt.Fprintf(out, "  skipped:   %d\n", state.SkippedFiles)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
	statsCmd.Flags().BoolVar(&statsState, "state", false, "Include engine state")
}
