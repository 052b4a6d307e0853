// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the record store backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath locates the database file when StoreDriver is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// SeedFile optionally points at a JSON file of records loaded on startup.
	SeedFile string `koanf:"seed_file"`

	// RecordQueueSize bounds the in-memory ingest queue.
	RecordQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of aggregation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the roll-number deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRanklistLimit caps how many rows GET /api/ranklist returns.
	MaxRanklistLimit int `koanf:"max_ranklist_limit"`

	// StrictQuery aborts ranklist queries when a stored record cannot be
	// aggregated instead of skipping it.
	StrictQuery bool `koanf:"strict_query"`

	// MissingMetricPolicy decides how ranking treats records without the
	// requested metric: error or exclude.
	MissingMetricPolicy string `koanf:"missing_metric_policy"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StoreDriver:         "memory",
		SQLitePath:          "ranklist.db",
		RecordQueueSize:     10_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          50_000,
		MaxRanklistLimit:    1_000,
		StrictQuery:         false,
		MissingMetricPolicy: "error",
	}
	return c
}
