package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/core"
)

var (
	writeID         string
	writeCollection string
	writeTags       string
	writeConfidence string
	writeOrigin     string
	writeEntity     string
	writeSecondary  string
	writeSummary    string
	writeTTL        time.Duration
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write [content]",
	Short: "Write an entry",
	Long: `Create or update an entry. The content is taken from the arguments, or
from stdin when there are none. Without --id a new id is generated; without
--collection the entry is classified from its content.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			content = strings.TrimRight(string(data), "\n")
		}

		in := core.EntryInput{
			ID:               writeID,
			Content:          content,
			Tags:             splitList(writeTags),
			Origin:           writeOrigin,
			AssociatedEntity: writeEntity,
			SecondaryTag:     writeSecondary,
			Summary:          writeSummary,
			TTL:              writeTTL,
		}
		if writeCollection != "" {
			c, err := core.ParseCollection(writeCollection)
			if err != nil {
				return err
			}
			in.Collection = c
		}
		if writeConfidence != "" {
			c, err := core.ParseConfidence(writeConfidence)
			if err != nil {
				return err
			}
			in.Confidence = c
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		entry, err := svc.Remember(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Entry '%s' saved to %s.\n", entry.ID, entry.Collection)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeID, "id", "", "Entry ID (generated when empty)")
	writeCmd.Flags().StringVarP(&writeCollection, "collection", "c", "", "Collection (classified from content when empty)")
	writeCmd.Flags().StringVarP(&writeTags, "tags", "t", "", "Comma separated tags")
	writeCmd.Flags().StringVar(&writeConfidence, "confidence", "", "Confidence: low, medium, high or verified")
	writeCmd.Flags().StringVar(&writeOrigin, "origin", "", "Where the entry came from")
	writeCmd.Flags().StringVar(&writeEntity, "entity", "", "Associated entity")
	writeCmd.Flags().StringVar(&writeSecondary, "secondary-tag", "", "Secondary tag")
	writeCmd.Flags().StringVar(&writeSummary, "summary", "", "Short summary shown in listings")
	writeCmd.Flags().DurationVar(&writeTTL, "ttl", 0, "Expire the entry after this duration")
}
