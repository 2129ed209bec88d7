package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/fulltext"
)

var (
	searchJSON          bool
	searchCollections   string
	searchEntity        string
	searchTags          string
	searchMinConfidence string
	searchLimit         int
	searchOffset        int
	searchSort          string
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Run a ranked full-text search",
	Long: `Search matches query words against entry content, summaries and tags.
Exact word matches outrank prefix matches; recent and trusted entries get a
small bonus. All --tags must be present on a result.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := core.SearchOptions{
			Query:            strings.Join(args, " "),
			AssociatedEntity: searchEntity,
			Tags:             splitList(searchTags),
			Limit:            searchLimit,
			Offset:           searchOffset,
			SortBy:           core.SortBy(searchSort),
		}
		if opts.Limit == 0 {
			opts.Limit = cfg.Search.DefaultLimit
		}
		switch opts.SortBy {
		case core.SortRelevance, core.SortRecency, core.SortConfidence:
		default:
			return fmt.Errorf("unknown sort %q", searchSort)
		}

		var err error
		if opts.Collections, err = parseCollections(searchCollections); err != nil {
			return err
		}
		if searchMinConfidence != "" {
			if opts.MinConfidence, err = core.ParseConfidence(searchMinConfidence); err != nil {
				return err
			}
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		results, err := svc.Recall(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if searchJSON {
			if results == nil {
				results = []core.SearchResult{}
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(results)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results.")
			return nil
		}

		idColor := color.New(color.FgCyan)
		scoreColor := color.New(color.FgGreen)
		for _, r := range results {
			fmt.Fprintf(out, "%s %s [%s]\n",
				scoreColor.Sprintf("%.3f", r.Score),
				idColor.Sprint(r.Entry.ID),
				r.Entry.Collection,
			)
			fmt.Fprintf(out, "      %s\n", highlight(r.Entry.DisplaySummary(), r.MatchedTerms))
		}
		return nil
	},
}

// highlight colors every word of text whose token starts with a matched term.
func highlight(text string, terms []string) string {
	if len(terms) == 0 {
		return text
	}
	mark := color.New(color.FgYellow, color.Bold)

	words := strings.Fields(text)
	for i, word := range words {
		tokens := fulltext.Tokenize(word)
		for _, tok := range tokens {
			if matchesAny(tok, terms) {
				words[i] = mark.Sprint(word)
				break
			}
		}
	}
	return strings.Join(words, " ")
}

func matchesAny(token string, terms []string) bool {
	for _, term := range terms {
		if strings.HasPrefix(token, term) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	searchCmd.Flags().StringVarP(&searchCollections, "collection", "c", "", "Comma separated collections to search")
	searchCmd.Flags().StringVar(&searchEntity, "entity", "", "Only entries associated with this entity")
	searchCmd.Flags().StringVarP(&searchTags, "tags", "t", "", "Comma separated tags that must all be present")
	searchCmd.Flags().StringVar(&searchMinConfidence, "min-confidence", "", "Minimum confidence")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default from config)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Number of results to skip")
	searchCmd.Flags().StringVar(&searchSort, "sort", string(core.SortRelevance), "Sort by relevance, recency or confidence")
}
