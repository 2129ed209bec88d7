package main

import (
	"encoding/json"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/core"
)

var (
	listJSON   bool
	listTag    string
	listMatch  string
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list [collection...]",
	Short: "List the entries of one or more collections",
	Long: `List live entries, newest first. Without arguments every collection is
listed. --match filters ids with a glob pattern (e.g. "adr-*").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		collections, err := parseCollections(args...)
		if err != nil {
			return err
		}
		if len(collections) == 0 {
			collections = core.Collections
		}
		if listMatch != "" && !doublestar.ValidatePattern(listMatch) {
			return fmt.Errorf("invalid pattern: %s", listMatch)
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		// Paging is applied per collection by the store, so filters run on the
		// full listing and paging happens here.
		var entries []core.Entry
		for _, c := range collections {
			listed, err := svc.List(cmd.Context(), c, core.ListOptions{})
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", c, err)
			}
			for _, e := range listed {
				if listTag != "" && !e.HasTags([]string{listTag}) {
					continue
				}
				if listMatch != "" {
					if ok, _ := doublestar.Match(listMatch, e.ID); !ok {
						continue
					}
				}
				entries = append(entries, e)
			}
		}
		entries = pageEntries(entries, listOffset, listLimit)

		if listJSON {
			if entries == nil {
				entries = []core.Entry{}
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(entries)
		}

		idColor := color.New(color.FgCyan)
		collColor := color.New(color.FgHiBlack)
		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(out, "%s %s %s\n",
				idColor.Sprint(e.ID),
				collColor.Sprintf("[%s]", e.Collection),
				e.DisplaySummary(),
			)
		}
		return nil
	},
}

func pageEntries(entries []core.Entry, offset, limit int) []core.Entry {
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter entries by tag")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Filter entry ids by glob pattern")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of entries (0 means all)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of entries to skip")
}
