// Package config loads the optional strata configuration file. YAML
// (strata.yaml, .strata/config.yaml) and TOML (strata.toml) are supported;
// environment variables override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Candidates lists the config file names looked up in a store root, in order.
var Candidates = []string{
	"strata.yaml",
	"strata.yml",
	"strata.toml",
	filepath.Join(".strata", "config.yaml"),
}

// Config is the top-level configuration.
type Config struct {
	Root     string        `yaml:"root" toml:"root"`
	ReadOnly bool          `yaml:"readOnly" toml:"readOnly"`
	Cache    CacheConfig   `yaml:"cache" toml:"cache"`
	Search   SearchConfig  `yaml:"search" toml:"search"`
	Logging  LoggingConfig `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig `yaml:"metrics" toml:"metrics"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// CacheConfig sizes the hot entry cache.
type CacheConfig struct {
	Size int `yaml:"size" toml:"size"`
}

// SearchConfig controls query defaults.
type SearchConfig struct {
	DefaultLimit  int           `yaml:"defaultLimit" toml:"defaultLimit"`
	RecencyWindow time.Duration `yaml:"recencyWindow" toml:"recencyWindow"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Root: ".",
		Cache: CacheConfig{
			Size: 100,
		},
		Search: SearchConfig{
			DefaultLimit:  20,
			RecencyWindow: 30 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a config file (if provided) and applies environment-variable
// overrides. The format is chosen by extension: .toml is TOML, anything else
// YAML. A relative root is resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		expanded := expandEnvVars(string(data))

		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if _, err := toml.Decode(expanded, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
		cfg.Path = path

		if !filepath.IsAbs(cfg.Root) {
			base := filepath.Dir(path)
			if filepath.Base(base) == ".strata" {
				base = filepath.Dir(base)
			}
			cfg.Root = filepath.Join(base, cfg.Root)
		}
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Discover returns the first candidate config file present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range Candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadDir loads the config discovered in dir, or the defaults rooted at dir
// when there is none.
func LoadDir(dir string) (*Config, error) {
	if path, ok := Discover(dir); ok {
		return Load(path)
	}
	cfg, err := Load("")
	if err != nil {
		return nil, err
	}
	if os.Getenv("STRATA_ROOT") == "" {
		cfg.Root = dir
	}
	return cfg, nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}
	if c.Search.DefaultLimit < 0 {
		return fmt.Errorf("search.defaultLimit must not be negative")
	}
	if c.Search.RecencyWindow < 0 {
		return fmt.Errorf("search.recencyWindow must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// applyEnvOverrides reads STRATA_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STRATA_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("STRATA_READ_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ReadOnly = b
		}
	}
	if v := os.Getenv("STRATA_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Size = n
		}
	}
	if v := os.Getenv("STRATA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STRATA_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("STRATA_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}
