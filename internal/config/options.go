package config

import "github.com/aretw0/strata/internal/platform"

// Options translates the file configuration into platform options.
func (c *Config) Options() []platform.Option {
	opts := []platform.Option{
		platform.WithReadOnly(c.ReadOnly),
	}
	if c.Cache.Size > 0 {
		opts = append(opts, platform.WithCacheSize(c.Cache.Size))
	}
	if c.Search.RecencyWindow > 0 {
		opts = append(opts, platform.WithRecencyWindow(c.Search.RecencyWindow))
	}
	return opts
}
