package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count [collection...]",
	Short: "Count live entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		collections, err := parseCollections(args...)
		if err != nil {
			return err
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		n, err := svc.Count(cmd.Context(), collections...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
