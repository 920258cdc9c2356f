// Package sqlite implements the repository interfaces on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver (no cgo).
//
// SCHEMA:
//
//	users        one row per Google account, keyed by external_id
//	user_likes   (user_id, comic_id) unique, cascades from users
//	lists        (user_id, name) unique, cascades from users
//	list_items   (list_id, comic_id) unique, cascades from lists
//
// Comic ids are stored as canonical decimal TEXT so that a comparison never
// depends on whether the client sent 42 or "42".
//
// CONNECTION MODEL:
// SQLite allows a single writer and applies PRAGMAs per connection, so the
// pool is capped at one connection. That also keeps ":memory:" databases
// (used by the tests) from silently splitting into several empty databases.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/manga-match/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a *sql.DB connected to a SQLite file.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
// Pass ":memory:" for a throwaway in-memory database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. Cascading deletes depend on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Ping checks database connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the tables if they don't exist. Every statement is
// idempotent, so it runs on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			external_id TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL DEFAULT '',
			picture     TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_likes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(external_id) ON DELETE CASCADE,
			comic_id   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, comic_id)
		);
		CREATE INDEX IF NOT EXISTS idx_user_likes_user_id ON user_likes(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating user_likes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS lists (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(external_id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, name)
		);
		CREATE INDEX IF NOT EXISTS idx_lists_user_id ON lists(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating lists table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS list_items (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			list_id    TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
			comic_id   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (list_id, comic_id)
		);
		CREATE INDEX IF NOT EXISTS idx_list_items_list_id ON list_items(list_id);
	`)
	if err != nil {
		return fmt.Errorf("creating list_items table: %w", err)
	}

	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isForeignKeyViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

func hasConstraintCode(err error, code int, msg string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlitedrv.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == code {
		return true
	}
	// Without extended result codes the driver reports plain SQLITE_CONSTRAINT,
	// so fall back to the message SQLite attaches.
	return strings.Contains(err.Error(), msg)
}
