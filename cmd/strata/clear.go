package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear [collection...]",
	Short: "Delete every entry of one or more collections",
	Long: `Clear deletes every entry of the given collections, or of every mutable
collection when none is given. The append-only horizon collection cannot be
cleared. Requires --force.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			return fmt.Errorf("refusing to clear without --force")
		}
		collections, err := parseCollections(args...)
		if err != nil {
			return err
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		if err := svc.Clear(cmd.Context(), collections...); err != nil {
			return fmt.Errorf("failed to clear: %w", err)
		}

		if len(collections) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared all mutable collections.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d collection(s).\n", len(collections))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Confirm the deletion")
}
