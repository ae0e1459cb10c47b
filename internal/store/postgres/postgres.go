// Package postgres provides Postgres-backed persistence implementations.
//
// Expected schema:
//
//	CREATE TABLE tenants (
//		id UUID PRIMARY KEY,
//		name TEXT NOT NULL,
//		website TEXT NOT NULL,
//		allowed_domains TEXT[] NOT NULL DEFAULT '{}',
//		crawl_targets TEXT[] NOT NULL DEFAULT '{}',
//		crawl_enabled BOOLEAN NOT NULL DEFAULT FALSE,
//		enabled BOOLEAN NOT NULL DEFAULT TRUE,
//		created_at TIMESTAMPTZ NOT NULL,
//		updated_at TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE users (
//		id UUID PRIMARY KEY,
//		tenant_id UUID NOT NULL REFERENCES tenants(id),
//		name TEXT NOT NULL,
//		email TEXT NOT NULL UNIQUE,
//		password_hash BYTEA NOT NULL,
//		role TEXT NOT NULL,
//		department TEXT NOT NULL DEFAULT '',
//		created_at TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE claims (
//		id UUID PRIMARY KEY,
//		tenant_id UUID NOT NULL REFERENCES tenants(id),
//		student_id UUID NOT NULL REFERENCES users(id),
//		category TEXT NOT NULL,
//		title TEXT NOT NULL,
//		description TEXT NOT NULL DEFAULT '',
//		occurred_at TIMESTAMPTZ NOT NULL,
//		proof_ref TEXT NOT NULL DEFAULT '',
//		status TEXT NOT NULL DEFAULT 'pending',
//		reviewed_by UUID,
//		reviewed_at TIMESTAMPTZ,
//		rejection_reason TEXT NOT NULL DEFAULT '',
//		created_at TIMESTAMPTZ NOT NULL,
//		updated_at TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE announcements (
//		id UUID PRIMARY KEY,
//		tenant_id UUID NOT NULL REFERENCES tenants(id),
//		title TEXT NOT NULL,
//		body TEXT NOT NULL DEFAULT '',
//		category TEXT NOT NULL DEFAULT 'general',
//		source_url TEXT NOT NULL DEFAULT '',
//		starts_at TIMESTAMPTZ,
//		ends_at TIMESTAMPTZ,
//		external_key TEXT,
//		status TEXT NOT NULL DEFAULT 'pending',
//		created_by UUID NOT NULL REFERENCES users(id),
//		reviewed_by UUID,
//		reviewed_at TIMESTAMPTZ,
//		rejection_reason TEXT NOT NULL DEFAULT '',
//		created_at TIMESTAMPTZ NOT NULL,
//		updated_at TIMESTAMPTZ NOT NULL,
//		UNIQUE (tenant_id, external_key)
//	);
//
// external_key is NULL for manually authored announcements, so the unique
// constraint only bites on crawler-assigned keys.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DB is the subset of pgxpool.Pool the stores use. pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Connect opens a pgx pool using the provided config.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.postgres.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
