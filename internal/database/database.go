// Package database connects to the PostgreSQL workflow journal.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName = "floatingagent"

	// Pool sizing
	maxConns          = 4
	minConns          = 0
	healthCheckPeriod = 30 * time.Second
	connectTimeout    = 5 * time.Second
)

// DB owns the journal connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// New connects to the journal database. The first ping is bounded by
// connectTimeout so a dead database fails startup quickly.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.HealthCheckPeriod = healthCheckPeriod
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create journal pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping journal database %s/%s: %w", cfg.ConnConfig.Host, cfg.ConnConfig.Database, err)
	}

	slog.Info("journal database connected",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"max_conns", cfg.MaxConns,
	)

	return &DB{pool: pool}, nil
}

// Open connects and applies pending journal migrations.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	db, err := New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db.pool); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Close releases every pooled connection.
func (db *DB) Close() {
	db.pool.Close()
	slog.Info("journal database connection closed")
}
