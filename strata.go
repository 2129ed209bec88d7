package strata

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/strata/internal/platform"
	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

// --- Configuration ---

// Option defines a functional option for configuring Strata.
type Option = platform.Option

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the store directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithReadOnly opens the store without ever writing to it.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp dir sandbox used under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithCacheSize sets the capacity of the hot entry cache.
func WithCacheSize(size int) Option {
	return platform.WithCacheSize(size)
}

// WithRecencyWindow sets the age after which search results no longer get a recency bonus.
func WithRecencyWindow(d time.Duration) Option {
	return platform.WithRecencyWindow(d)
}

// WithObserver registers a receiver for operation and cache measurements.
func WithObserver(obs fs.Observer) Option {
	return platform.WithObserver(obs)
}

// WithClock overrides the clock used for timestamps, expiry and recency.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithScanProgress registers callbacks reporting the startup scan.
func WithScanProgress(start func(total int), step func(path string)) Option {
	return platform.WithScanProgress(start, step)
}

// --- Factory ---

// New opens the store at path and returns a Service over it.
func New(ctx context.Context, path string, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, path, opts...)
}

// Init opens and initializes the store explicitly.
func Init(ctx context.Context, path string, opts ...Option) (core.Store, error) {
	return platform.Init(ctx, path, opts...)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual path for the store based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot recursively looks upwards for a store root indicator.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
