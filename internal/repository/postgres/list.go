package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/model"
)

func (db *DB) CreateList(ctx context.Context, ownerID, name string) (*model.List, error) {
	now := time.Now().UTC()
	list := &model.List{
		ID:        xid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO lists (id, user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		list.ID, ownerID, name, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperror.OwnerNotRecognized(ownerID)
		}
		return nil, fmt.Errorf("postgres: creating list %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.Conflict("list", name)
	}

	return list, nil
}

func (db *DB) ListLists(ctx context.Context, ownerID string) ([]model.List, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT l.id, l.name, l.created_at, l.updated_at, li.comic_id
		 FROM lists l
		 LEFT JOIN list_items li ON li.list_id = l.id
		 WHERE l.user_id = $1
		 ORDER BY l.created_at DESC, l.id DESC, li.id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing lists for %s: %w", ownerID, err)
	}
	defer rows.Close()

	lists := []model.List{}
	for rows.Next() {
		var (
			l       model.List
			comicID *string
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt, &comicID); err != nil {
			return nil, fmt.Errorf("postgres: scanning list row: %w", err)
		}

		if n := len(lists); n == 0 || lists[n-1].ID != l.ID {
			l.OwnerID = ownerID
			l.Items = []string{}
			lists = append(lists, l)
		}
		if comicID != nil {
			last := &lists[len(lists)-1]
			last.Items = append(last.Items, *comicID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating lists: %w", err)
	}

	return lists, nil
}

func (db *DB) RenameList(ctx context.Context, ownerID, oldName, newName string) (*model.List, error) {
	var l model.List
	err := db.pool.QueryRow(ctx,
		`UPDATE lists SET name = $1, updated_at = $2
		 WHERE user_id = $3 AND name = $4
		 RETURNING id, name, created_at, updated_at`,
		newName, time.Now().UTC(), ownerID, oldName,
	).Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperror.NotFound("list", oldName)
		case isUniqueViolation(err):
			return nil, apperror.Conflict("list", newName)
		}
		return nil, fmt.Errorf("postgres: renaming list %q: %w", oldName, err)
	}

	l.OwnerID = ownerID
	return &l, nil
}

// DeleteList removes the items and then the list in one transaction.
func (db *DB) DeleteList(ctx context.Context, ownerID, name string) (int, error) {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("postgres: beginning delete of list %q: %w", name, err)
	}
	defer tx.Rollback(ctx)

	list, err := getList(ctx, tx, ownerID, name)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM list_items WHERE list_id = $1`, list.ID)
	if err != nil {
		return 0, fmt.Errorf("postgres: deleting items of list %q: %w", name, err)
	}
	deletedItems := tag.RowsAffected()

	if _, err := tx.Exec(ctx, `DELETE FROM lists WHERE id = $1`, list.ID); err != nil {
		return 0, fmt.Errorf("postgres: deleting list %q: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: committing delete of list %q: %w", name, err)
	}

	return int(deletedItems), nil
}

func (db *DB) AddItem(ctx context.Context, ownerID, name, comicID string) (bool, error) {
	list, err := getList(ctx, db.pool, ownerID, name)
	if err != nil {
		return false, err
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO list_items (list_id, comic_id)
		 VALUES ($1, $2)
		 ON CONFLICT (list_id, comic_id) DO NOTHING`,
		list.ID, comicID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, apperror.NotFound("list", name)
		}
		return false, fmt.Errorf("postgres: adding %s to list %q: %w", comicID, name, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) RemoveItem(ctx context.Context, ownerID, name, comicID string) (bool, error) {
	list, err := getList(ctx, db.pool, ownerID, name)
	if err != nil {
		return false, err
	}

	tag, err := db.pool.Exec(ctx,
		`DELETE FROM list_items WHERE list_id = $1 AND comic_id = $2`,
		list.ID, comicID,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: removing %s from list %q: %w", comicID, name, err)
	}
	return tag.RowsAffected() > 0, nil
}

func getList(ctx context.Context, q querier, ownerID, name string) (*model.List, error) {
	l := model.List{OwnerID: ownerID}

	err := q.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at
		 FROM lists WHERE user_id = $1 AND name = $2`,
		ownerID, name,
	).Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("list", name)
		}
		return nil, fmt.Errorf("postgres: looking up list %q: %w", name, err)
	}

	return &l, nil
}
