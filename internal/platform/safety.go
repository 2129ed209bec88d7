package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the directory under os.TempDir() that holds sandboxed stores.
const DevDirName = "strata-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	// "go run" builds into the system temp dir.
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}

	// "go test" binaries end in .test
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveStorePath determines the actual path for the store based on safety rules.
// When forceTemp is set, the path is re-rooted into a temporary directory to
// avoid polluting the user's workspace, unless it already lives under the
// system temp dir (e.g. t.TempDir()).
func ResolveStorePath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	cleanUserPath := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), cleanUserPath); err == nil && filepath.IsAbs(cleanUserPath) && !strings.HasPrefix(rel, "..") {
		return cleanUserPath
	}

	subName := "default"
	if userPath != "" && userPath != "." && userPath != "./" {
		// Only the base name is kept, which also drops any traversal.
		if base := filepath.Base(userPath); base != "." && base != string(os.PathSeparator) {
			subName = base
		}
	}
	return filepath.Join(os.TempDir(), DevDirName, subName)
}
