package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/pkg/core"
)

var (
	initWriteConfig bool
	initQuiet       bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a strata store",
	Long: `Create the collection layout in the store root (or rescan an existing
store), rebuild every manifest and report what was indexed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ReadOnly {
			return fmt.Errorf("cannot initialize a store in read-only mode")
		}

		var (
			bar   *progressbar.ProgressBar
			barMu sync.Mutex
		)
		start := func(total int) {
			if initQuiet || total == 0 {
				return
			}
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Scanning[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)
		}
		step := func(string) {
			barMu.Lock()
			defer barMu.Unlock()
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		svc, err := openService(cmd.Context(), strata.WithScanProgress(start, step))
		if err != nil {
			return err
		}

		if initWriteConfig {
			path, err := writeDefaultConfig(cfg.Root)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		}

		total, err := svc.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized strata store in %s (%d entries in %d collections)\n",
			cfg.Root, total, len(core.Collections))
		return nil
	},
}

// writeDefaultConfig writes strata.yaml with the default settings unless a
// config file already exists.
func writeDefaultConfig(root string) (string, error) {
	if path, ok := config.Discover(root); ok {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	defaults := config.Default()
	defaults.Root = "."
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(root, config.Candidates[0])
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("config file already exists: %s", path)
	}
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "Write a default strata.yaml to the store root")
	initCmd.Flags().BoolVarP(&initQuiet, "quiet", "q", false, "Do not show scan progress")
}
