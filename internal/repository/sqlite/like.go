package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/manga-match/internal/apperror"
)

// ListLikes returns the owner's liked comic ids, newest first. An owner with no
// likes (or no user row at all) gets an empty, non-nil slice.
func (db *DB) ListLikes(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT comic_id FROM user_likes
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing likes for %s: %w", ownerID, err)
	}
	defer rows.Close()

	likes := []string{}
	for rows.Next() {
		var comicID string
		if err := rows.Scan(&comicID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning like row: %w", err)
		}
		likes = append(likes, comicID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating likes: %w", err)
	}

	return likes, nil
}

// AddLike records a like. Liking the same comic twice is a no-op that reports
// added=false.
func (db *DB) AddLike(ctx context.Context, ownerID, comicID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_likes (user_id, comic_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, comic_id) DO NOTHING`,
		ownerID, comicID, time.Now().UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, apperror.OwnerNotRecognized(ownerID)
		}
		return false, fmt.Errorf("sqlite: adding like %s/%s: %w", ownerID, comicID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveLike deletes a like. Removing a like that doesn't exist reports
// removed=false without an error.
func (db *DB) RemoveLike(ctx context.Context, ownerID, comicID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_likes WHERE user_id = ? AND comic_id = ?`,
		ownerID, comicID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing like %s/%s: %w", ownerID, comicID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}
