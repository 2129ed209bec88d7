package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/internal/platform"
)

var (
	verbose  bool
	readOnly bool
	cfgFile  string
	rootDir  string
	cfg      *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "An embedded vault of plain-text entries with full-text search",
	Long: `Strata stores structured notes as human-readable files grouped into
collections, keeps a per-collection manifest for listing and builds an
in-memory word index for ranked full-text search.

Example usage:
  strata init                                   # Create the layout in the current directory
  strata write --collection technical "..."     # Store an entry
  strata search cache invalidation              # Ranked search
  strata watch --metrics-addr :9090             # Follow external edits`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logging := cfg.Logging
		if verbose {
			logging.Level = "debug"
		}
		slog.SetDefault(logging.NewLogger(os.Stderr))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Open the store without writing to it")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is strata.yaml or strata.toml in the store root)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "store root (default is the nearest directory with a store, or the current directory)")
}

// loadConfig resolves the config file and the store root. An explicit --root
// always wins over the root named in the config file.
func loadConfig() (*config.Config, error) {
	var (
		c   *config.Config
		err error
	)
	switch {
	case cfgFile != "":
		c, err = config.Load(cfgFile)
	case rootDir != "":
		c, err = config.LoadDir(rootDir)
	default:
		wd, werr := os.Getwd()
		if werr != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", werr)
		}
		dir, ferr := platform.FindRoot(wd)
		if ferr != nil {
			dir = wd
		}
		c, err = config.LoadDir(dir)
	}
	if err != nil {
		return nil, err
	}

	if rootDir != "" {
		c.Root = rootDir
	}
	if readOnly {
		c.ReadOnly = true
	}
	return c, nil
}
