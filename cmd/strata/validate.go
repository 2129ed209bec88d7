package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check entry files for problems",
	Long: `Validate decodes entry files and reports errors (files the store would
skip) and warnings (unknown headers, non-canonical values, empty bodies).
Without arguments every entry file under the store root is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := args
		if len(files) == 0 {
			var err error
			if files, err = entryFiles(cfg.Root); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		errColor := color.New(color.FgRed)
		warnColor := color.New(color.FgYellow)

		failed := 0
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			report := fs.InspectEntry(data)
			for _, msg := range report.Errors {
				errColor.Fprint(out, "ERROR ")
				fmt.Fprintf(out, "%s: %s\n", path, msg)
			}
			for _, msg := range report.Warnings {
				warnColor.Fprint(out, "WARN  ")
				fmt.Fprintf(out, "%s: %s\n", path, msg)
			}
			if !report.OK() {
				failed++
			}
		}

		fmt.Fprintf(out, "Checked %d file(s), %d with errors.\n", len(files), failed)
		if failed > 0 {
			return fmt.Errorf("%d invalid file(s)", failed)
		}
		return nil
	},
}

// entryFiles lists every entry file of every collection under root.
func entryFiles(root string) ([]string, error) {
	var files []string
	for _, c := range core.Collections {
		dir := filepath.Join(root, fs.CollectionsDir, string(c))
		dirEntries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, de := range dirEntries {
			name := de.Name()
			if de.IsDir() || !strings.HasSuffix(name, fs.EntryExt) || strings.HasPrefix(name, fs.TempFilePrefix) {
				continue
			}
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
