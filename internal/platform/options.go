package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

// options holds the internal configuration for the store.
type options struct {
	store    core.Store
	logger   *slog.Logger
	adapter  string
	observer fs.Observer
	config   map[string]interface{}
}

// Option defines a functional option for configuring the store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		store:   nil,
		logger:  nil,
		adapter: "fs",
		config:  make(map[string]interface{}),
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the store directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the store and service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore allows injecting a custom storage adapter (e.g. a mock).
// If provided, the default filesystem adapter will be skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter allows specifying the storage adapter to use by name (e.g. "fs").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithCacheSize sets the capacity of the hot entry cache.
// Zero means default (100).
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.config["cache_size"] = size
	}
}

// WithRecencyWindow sets the age after which search results no longer get a
// recency bonus. Zero means default (30 days).
func WithRecencyWindow(d time.Duration) Option {
	return func(o *options) {
		o.config["recency_window"] = d
	}
}

// WithObserver registers a receiver for operation and cache measurements
// (see internal/metrics).
func WithObserver(obs fs.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithClock overrides the clock used for expiry and recency.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.config["clock"] = now
	}
}

// WithScanProgress registers callbacks reporting the startup scan: start is
// called once with the number of files, step once per file read.
func WithScanProgress(start func(total int), step func(path string)) Option {
	return func(o *options) {
		o.config["scan_start"] = start
		o.config["scan_step"] = step
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Write operations (Store, Remove, Clear, AppendLine) return ErrReadOnly.
// 2. Directories are not created and manifests are not rewritten.
// 3. Dev Safety Lock (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the "Sandbox" safety mechanism when running via `go run`.
// By default (true), the store is forced into a temporary directory to prevent
// accidental data loss. Setting this to false allows operating on the real
// filesystem even during `go run`.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
