package catalog

import (
	"time"

	fetchpkg "github.com/framehub/datacat/catalog/internal/fetch"
)

// Config configures the catalog service.
type Config struct {
	// Fetch settings for example page retrieval.
	Fetch fetchpkg.Config

	// WatchInterval is how often the database is polled for external writes
	// that should invalidate the render cache.
	WatchInterval time.Duration

	// WatchDebounce is the quiet period after a detected change before the
	// cache is purged.
	WatchDebounce time.Duration
}

func (c *Config) defaults() {
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 10 * 1024 * 1024
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "datacat/1.0"
	}
	if c.WatchInterval <= 0 {
		c.WatchInterval = time.Second
	}
	if c.WatchDebounce < 0 {
		c.WatchDebounce = 0
	}
}

func defaultConfig() *Config {
	return &Config{
		Fetch: fetchpkg.Config{
			Timeout:   30 * time.Second,
			MaxBytes:  10 * 1024 * 1024,
			UserAgent: "datacat/1.0",
		},
		WatchInterval: time.Second,
		WatchDebounce: 500 * time.Millisecond,
	}
}
