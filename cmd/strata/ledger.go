package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

// ledgerNote is the record written by `ledger append --message`.
type ledgerNote struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

var (
	ledgerMessage string
	ledgerKind    string
	ledgerJSON    bool
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Append to or read the append-only ledger",
}

var ledgerAppendCmd = &cobra.Command{
	Use:   "append [json-object]",
	Short: "Append one record",
	Long: `Append a raw JSON object, or build a note record from --message (with a
generated id and the current time).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (ledgerMessage != "") {
			return fmt.Errorf("provide either a JSON object or --message")
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		if len(args) == 1 {
			if err := svc.AppendLine(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to append: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Record appended.")
			return nil
		}

		notes, err := strata.NewTypedLedger[ledgerNote](svc.Store())
		if err != nil {
			return err
		}
		note := ledgerNote{
			ID:      uuid.NewString(),
			At:      time.Now().UTC(),
			Kind:    ledgerKind,
			Message: ledgerMessage,
		}
		if err := notes.Append(cmd.Context(), note); err != nil {
			return fmt.Errorf("failed to append: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Record %s appended.\n", note.ID)
		return nil
	},
}

var ledgerReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Print every record in append order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}

		lines, err := svc.ReadAllLines(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if ledgerJSON {
			records := make([]json.RawMessage, 0, len(lines))
			for _, line := range lines {
				if json.Valid([]byte(line)) {
					records = append(records, json.RawMessage(line))
				}
			}
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}
		fmt.Fprint(out, strings.Join(lines, "\n"))
		if len(lines) > 0 {
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerAppendCmd, ledgerReadCmd)
	ledgerAppendCmd.Flags().StringVarP(&ledgerMessage, "message", "m", "", "Append a note record with this message")
	ledgerAppendCmd.Flags().StringVar(&ledgerKind, "kind", "note", "Kind of the note record")
	ledgerReadCmd.Flags().BoolVar(&ledgerJSON, "json", false, "Output a JSON array")
}
