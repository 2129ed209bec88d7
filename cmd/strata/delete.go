package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an entry from the store",
	Long:  `Delete permanently removes an entry. Entries of the append-only horizon collection cannot be deleted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		removed, err := svc.Forget(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		if !removed {
			return fmt.Errorf("entry not deleted (missing or append-only): %s", id)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Entry deleted: %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
