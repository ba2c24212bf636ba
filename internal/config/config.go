// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's sentinel kinds.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath points at the SQLite database file; ":memory:" is ephemeral.
	DBPath string `koanf:"db_path"`

	// FeedQueueSize bounds the in-memory project feed queue.
	FeedQueueSize int `koanf:"feed_queue_size"`

	// WorkerCount sets the number of feed workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the feed deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		DBPath:        "podium.db",
		FeedQueueSize: 10_000,
		WorkerCount:   4,
		DedupeSize:    50_000,
	}
}
