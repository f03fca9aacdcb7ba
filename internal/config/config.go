// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and AKRED_* environment variables over them.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/akreditasi/internal/domain/grading"
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

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the persistence backend: memory or postgres.
	Store string `koanf:"store"`

	// DatabaseDSN is the Postgres connection string for the postgres store.
	DatabaseDSN string `koanf:"database_dsn"`

	// AutoMigrate creates missing tables on startup.
	AutoMigrate bool `koanf:"auto_migrate"`

	// BackfillCategories infers categories for uncategorized criteria on startup.
	BackfillCategories bool `koanf:"backfill_categories"`

	// SeedFile is an optional JSON snapshot loaded into the memory store.
	SeedFile string `koanf:"seed_file"`

	// QueueSize bounds the recompute queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers and the report fan-out.
	WorkerCount int `koanf:"worker_count"`

	// JobTimeout bounds a single recompute job.
	JobTimeout time.Duration `koanf:"job_timeout"`

	// CompletenessFactor is the share of a criterion's ceiling credited to
	// assignments with validated documents but no evaluations.
	CompletenessFactor float64 `koanf:"completeness_factor"`

	// DefaultScale is the grading scale used when a request names none.
	DefaultScale string `koanf:"default_scale"`

	// MaxRankingLimit caps GET /rankings?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Database pool settings for the postgres store.
	DBMaxOpenConns    int           `koanf:"db_max_open_conns"`
	DBMaxIdleConns    int           `koanf:"db_max_idle_conns"`
	DBConnMaxIdleTime time.Duration `koanf:"db_conn_max_idle_time"`
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		Store:              StoreMemory,
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU() * 2,
		JobTimeout:         30 * time.Second,
		CompletenessFactor: 0.8,
		DefaultScale:       string(grading.ScaleDescriptive4),
		MaxRankingLimit:    100,
		ShutdownTimeout:    10 * time.Second,
		DBMaxOpenConns:     20,
		DBMaxIdleConns:     10,
		DBConnMaxIdleTime:  60 * time.Second,
		DBConnMaxLifetime:  10 * time.Minute,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StorePostgres:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case c.Store == StorePostgres && strings.TrimSpace(c.DatabaseDSN) == "":
		return fmt.Errorf("%w: database_dsn is required for the postgres store", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.CompletenessFactor < 0 || c.CompletenessFactor > 1:
		return fmt.Errorf("%w: completeness_factor must be within [0, 1]", ErrInvalidConfig)
	case c.MaxRankingLimit < 1:
		return fmt.Errorf("%w: max_ranking_limit must be positive", ErrInvalidConfig)
	}
	if _, err := grading.ParseScale(c.DefaultScale); err != nil {
		return fmt.Errorf("%w: default_scale: %w", ErrInvalidConfig, err)
	}
	return nil
}
