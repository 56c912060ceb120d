// Package database holds the optional Postgres store for runtime rate limit overrides.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const (
	connectTimeout  = 5 * time.Second
	maxOpenConns    = 5
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute
)

// ErrNoDatabaseURL is returned by New when no connection string is configured
var ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")

// DB wraps the connection pool
type DB struct {
	*sql.DB
}

// New opens a Postgres pool and verifies it with a ping
func New(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, ErrNoDatabaseURL
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS ratelimit_config (
	config_key TEXT PRIMARY KEY,
	rate TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the tables this service owns if they are missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable. It matches the health check signature.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
