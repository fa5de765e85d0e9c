// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Errors wrap this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// ShardSize is the caregiver pool size above which scoring is fanned out
	// across workers, and the size of each shard.
	ShardSize int `koanf:"shard_size"`

	// JobQueueSize bounds the shard job queue.
	JobQueueSize int `koanf:"job_queue_size"`

	// MaxMatchLimit caps the limit query parameter of match endpoints.
	MaxMatchLimit int `koanf:"max_match_limit"`

	// VocabularyFile optionally replaces the embedded tag alias table.
	VocabularyFile string `koanf:"vocabulary_file"`

	// Weights overrides per-factor weights. Empty keeps the defaults.
	Weights map[string]float64 `koanf:"weights"`

	// ReferenceYears is the experience at which the experience factor saturates.
	ReferenceYears float64 `koanf:"reference_years"`

	// Store selects the profile store backend: memory or postgres.
	Store string `koanf:"store"`

	// PostgresDSN is required when Store is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// PostgresMaxConns bounds the connection pool.
	PostgresMaxConns int `koanf:"postgres_max_conns"`

	// RedisAddr enables the profile cache when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// CacheTTLSeconds is the profile cache entry lifetime.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		WorkerCount:      runtime.NumCPU(),
		ShardSize:        2_000,
		JobQueueSize:     1_024,
		MaxMatchLimit:    100,
		ReferenceYears:   10,
		Store:            StoreMemory,
		PostgresMaxConns: 10,
		CacheTTLSeconds:  300,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxMatchLimit < 1:
		return fmt.Errorf("%w: max_match_limit must be positive", ErrInvalidConfig)
	case c.ReferenceYears <= 0:
		return fmt.Errorf("%w: reference_years must be positive", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}

// CacheEnabled reports whether a Redis cache is configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}
