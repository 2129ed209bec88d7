package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/strata/pkg/adapters/fs"
)

// ErrRootNotFound is returned by FindRoot when no indicator is found.
var ErrRootNotFound = errors.New("root not found")

// rootIndicators mark a directory as a store root.
var rootIndicators = []string{
	fs.CollectionsDir,
	"strata.yaml",
	"strata.yml",
	"strata.toml",
	".strata",
}

// FindRoot walks upwards from startDir looking for a store root indicator
// (a collections directory, a strata config file or a .strata directory) and
// returns the absolute path of the first directory that has one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range rootIndicators {
			if hasFile(dir, name) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
