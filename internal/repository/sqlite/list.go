package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/model"
)

// CreateList inserts a new, empty list. A name the owner already uses is a
// conflict, not a silent no-op.
func (db *DB) CreateList(ctx context.Context, ownerID, name string) (*model.List, error) {
	now := time.Now().UTC()
	list := &model.List{
		ID:        xid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO lists (id, user_id, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		list.ID, list.OwnerID, list.Name, list.CreatedAt, list.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperror.OwnerNotRecognized(ownerID)
		}
		return nil, fmt.Errorf("sqlite: creating list %q: %w", name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.Conflict("list", name)
	}

	return list, nil
}

// ListLists returns every list of the owner with its items. Lists are ordered
// newest first (xid breaks created_at ties), items by insertion.
func (db *DB) ListLists(ctx context.Context, ownerID string) ([]model.List, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT l.id, l.name, l.created_at, l.updated_at, li.comic_id
		 FROM lists l
		 LEFT JOIN list_items li ON li.list_id = l.id
		 WHERE l.user_id = ?
		 ORDER BY l.created_at DESC, l.id DESC, li.id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing lists for %s: %w", ownerID, err)
	}
	defer rows.Close()

	lists := []model.List{}
	for rows.Next() {
		var (
			l       model.List
			comicID sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt, &comicID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning list row: %w", err)
		}

		// Rows of the same list are adjacent thanks to the ORDER BY.
		if n := len(lists); n == 0 || lists[n-1].ID != l.ID {
			l.OwnerID = ownerID
			l.Items = []string{}
			lists = append(lists, l)
		}
		if comicID.Valid {
			last := &lists[len(lists)-1]
			last.Items = append(last.Items, comicID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating lists: %w", err)
	}

	return lists, nil
}

// RenameList changes the name of one list in a single UPDATE. The UNIQUE
// (user_id, name) constraint turns a clash into a conflict; membership rows
// reference the list id and are untouched.
func (db *DB) RenameList(ctx context.Context, ownerID, oldName, newName string) (*model.List, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists SET name = ?, updated_at = ?
		 WHERE user_id = ? AND name = ?`,
		newName, time.Now().UTC(), ownerID, oldName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("list", newName)
		}
		return nil, fmt.Errorf("sqlite: renaming list %q: %w", oldName, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("list", oldName)
	}

	return db.getList(ctx, db.conn, ownerID, newName)
}

// DeleteList removes the list's items and then the list itself inside one
// transaction. If either statement fails the transaction is rolled back and
// both the list and its items are left as they were.
func (db *DB) DeleteList(ctx context.Context, ownerID, name string) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning delete of list %q: %w", name, err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	list, err := db.getList(ctx, tx, ownerID, name)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM list_items WHERE list_id = ?`, list.ID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting items of list %q: %w", name, err)
	}
	deletedItems, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, list.ID); err != nil {
		return 0, fmt.Errorf("sqlite: deleting list %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing delete of list %q: %w", name, err)
	}

	return int(deletedItems), nil
}

// AddItem puts a comic into the named list. Adding a comic that is already a
// member reports added=false.
func (db *DB) AddItem(ctx context.Context, ownerID, name, comicID string) (bool, error) {
	list, err := db.getList(ctx, db.conn, ownerID, name)
	if err != nil {
		return false, err
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO list_items (list_id, comic_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (list_id, comic_id) DO NOTHING`,
		list.ID, comicID, time.Now().UTC(),
	)
	if err != nil {
		// The list was deleted between the lookup and the insert.
		if isForeignKeyViolation(err) {
			return false, apperror.NotFound("list", name)
		}
		return false, fmt.Errorf("sqlite: adding %s to list %q: %w", comicID, name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveItem takes a comic out of the named list. Removing a comic that is not
// a member reports removed=false.
func (db *DB) RemoveItem(ctx context.Context, ownerID, name, comicID string) (bool, error) {
	list, err := db.getList(ctx, db.conn, ownerID, name)
	if err != nil {
		return false, err
	}

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM list_items WHERE list_id = ? AND comic_id = ?`,
		list.ID, comicID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing %s from list %q: %w", comicID, name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// getList resolves an owner's list by name, on the pool or inside a transaction.
func (db *DB) getList(ctx context.Context, q querier, ownerID, name string) (*model.List, error) {
	l := model.List{OwnerID: ownerID}

	err := q.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at
		 FROM lists WHERE user_id = ? AND name = ?`,
		ownerID, name,
	).Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("list", name)
		}
		return nil, fmt.Errorf("sqlite: looking up list %q: %w", name, err)
	}

	return &l, nil
}
