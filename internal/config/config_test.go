package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv keeps developer environment variables out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STRATA_ROOT", "STRATA_READ_ONLY", "STRATA_CACHE_SIZE",
		"STRATA_LOGGING_LEVEL", "STRATA_LOGGING_FORMAT", "STRATA_METRICS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, 100, cfg.Cache.Size)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 30*24*time.Hour, cfg.Search.RecencyWindow)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Path)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")
	writeFile(t, path, `
root: vault
readOnly: true
cache:
  size: 8
search:
  defaultLimit: 5
  recencyWindow: 72h
logging:
  level: debug
  format: json
metrics:
  addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vault"), cfg.Root)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, 8, cfg.Cache.Size)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, 72*time.Hour, cfg.Search.RecencyWindow)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, path, cfg.Path)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.toml")
	writeFile(t, path, `
root = "/srv/strata"

[cache]
size = 42

[search]
recencyWindow = "24h"

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/strata", cfg.Root)
	assert.Equal(t, 42, cfg.Cache.Size)
	assert.Equal(t, 24*time.Hour, cfg.Search.RecencyWindow)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvExpansionAndOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")
	writeFile(t, path, "metrics:\n  addr: \"${STRATA_TEST_METRICS}\"\n")

	t.Setenv("STRATA_TEST_METRICS", "127.0.0.1:9100")
	t.Setenv("STRATA_CACHE_SIZE", "7")
	t.Setenv("STRATA_READ_ONLY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	assert.Equal(t, 7, cfg.Cache.Size)
	assert.True(t, cfg.ReadOnly)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad yaml", "strata.yaml", "cache: [unclosed"},
		{"bad toml", "strata.toml", "cache = {"},
		{"negative cache", "strata.yaml", "cache:\n  size: -1\n"},
		{"unknown level", "strata.yaml", "logging:\n  level: loud\n"},
		{"unknown format", "strata.yaml", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name, tt.file)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestDiscover(t *testing.T) {
	clearEnv(t)

	t.Run("none", func(t *testing.T) {
		_, ok := Discover(t.TempDir())
		assert.False(t, ok)
	})

	t.Run("yaml wins over toml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "strata.toml"), "")
		writeFile(t, filepath.Join(dir, "strata.yaml"), "")
		path, ok := Discover(dir)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "strata.yaml"), path)
	})

	t.Run("hidden dir resolves root to parent", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".strata", "config.yaml"), "cache:\n  size: 3\n")

		cfg, err := LoadDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.Root)
		assert.Equal(t, 3, cfg.Cache.Size)
	})

	t.Run("defaults rooted at dir", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.Root)
	})
}

func TestOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.Options(), 3)

	cfg.Cache.Size = 0
	cfg.Search.RecencyWindow = 0
	assert.Len(t, cfg.Options(), 1)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}
