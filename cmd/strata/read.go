package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	readJSON bool
)

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Read an entry",
	Long:  `Read an entry by its ID. Outputs the raw content by default, or the full entry as JSON with --json.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		entry, ok, err := svc.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to read entry: %w", err)
		}
		if !ok {
			return fmt.Errorf("entry not found: %s", id)
		}

		if readJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(entry)
		}

		// Default: Print Content
		fmt.Fprintln(cmd.OutOrStdout(), entry.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
