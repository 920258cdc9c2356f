// Package postgres implements the repository interfaces on PostgreSQL through a
// pgx connection pool. It is used instead of the embedded SQLite store when
// DATABASE_URL is configured, and keeps the same schema and error contract.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/manga-match/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// PostgreSQL SQLSTATE codes the store classifies.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	external_id TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	picture     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_likes (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(external_id) ON DELETE CASCADE,
	comic_id   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, comic_id)
);
CREATE INDEX IF NOT EXISTS idx_user_likes_user_id ON user_likes(user_id);

CREATE TABLE IF NOT EXISTS lists (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(external_id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, name)
);
CREATE INDEX IF NOT EXISTS idx_lists_user_id ON lists(user_id);

CREATE TABLE IF NOT EXISTS list_items (
	id         BIGSERIAL PRIMARY KEY,
	list_id    TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
	comic_id   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (list_id, comic_id)
);
CREATE INDEX IF NOT EXISTS idx_list_items_list_id ON list_items(list_id);
`

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection and applies the schema.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

// Ping checks database connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// migrate sends the whole schema in one round trip. With no arguments pgx uses
// the simple protocol, which accepts several statements.
func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, schema)
	return err
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
