package store

import (
	"context"
	"fmt"
	"time"
)

// Supported driver names.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config selects and parameterizes the storage engine at startup.
type Config struct {
	// Driver is one of "memory", "sqlite", "postgres", "redis".
	Driver string `yaml:"driver"`

	// Path is the database file location for the sqlite driver.
	Path string `yaml:"path"`

	// URL is the connection string for the postgres and redis drivers.
	URL string `yaml:"url"`

	// RetryAttempts and RetryInterval govern postgres connection retries.
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// DefaultConfig returns a file-backed SQLite configuration.
func DefaultConfig() Config {
	return Config{
		Driver:        DriverSQLite,
		Path:          "data/basekit.db",
		RetryAttempts: 3,
		RetryInterval: 5 * time.Second,
	}
}

// Open builds the engine named by cfg.Driver and wraps it in a Store.
// An unrecoverable open failure here is the only condition in this package
// treated as fatal to startup.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	engine, err := openEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(engine, opts...), nil
}

func openEngine(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(cfg.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.URL, cfg.RetryAttempts, cfg.RetryInterval)
	case DriverRedis:
		return OpenRedis(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
