// Package database manages the PostgreSQL connection pool for the platform.
// It exposes the pool behind a small interface so repository tests can swap
// in pgxmock, and runs schema migrations via golang-migrate.
package database

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DBInterface is the subset of pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it, so tests replace the global DB directly.
type DBInterface interface {
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// QueryRow executes a query that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row

	// Exec executes a query without returning rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)

	// Begin starts a transaction. Status transitions commit their approval
	// record and status change in one transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close closes all connections in the pool.
	Close()
}

// DB is the global connection pool. Production wiring sets a *pgxpool.Pool;
// repository tests substitute a pgxmock pool.
var DB DBInterface

// Config holds connection pool parameters.
type Config struct {
	// URL is the PostgreSQL connection string.
	URL string

	// MaxConns is the maximum pool size.
	MaxConns int32

	// MinConns is the minimum pool size.
	MinConns int32
}

// DefaultConfig reads DATABASE_URL and applies pool defaults.
func DefaultConfig() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return &Config{URL: dbURL, MaxConns: 25, MinConns: 5}, nil
}

// Connect establishes the pool and verifies connectivity.
// A nil cfg uses DefaultConfig.
func Connect(cfg *Config) error {
	if cfg == nil {
		var err error
		cfg, err = DefaultConfig()
		if err != nil {
			return fmt.Errorf("failed to get default config: %w", err)
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = pool
	log.Info().Int32("max_conns", cfg.MaxConns).Msg("database connected")
	return nil
}

// Close shuts the pool down. Safe to call when DB is nil or already closed.
func Close() {
	if DB != nil {
		DB.Close()
		log.Info().Msg("database connection closed")
		DB = nil
	}
}

// IsConnected reports whether the pool is established and healthy.
func IsConnected() bool {
	if DB == nil {
		return false
	}
	return DB.Ping(context.Background()) == nil
}
