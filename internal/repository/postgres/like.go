package postgres

import (
	"context"
	"fmt"

	"github.com/sakif/manga-match/internal/apperror"
)

func (db *DB) ListLikes(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT comic_id FROM user_likes
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing likes for %s: %w", ownerID, err)
	}
	defer rows.Close()

	likes := []string{}
	for rows.Next() {
		var comicID string
		if err := rows.Scan(&comicID); err != nil {
			return nil, fmt.Errorf("postgres: scanning like row: %w", err)
		}
		likes = append(likes, comicID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating likes: %w", err)
	}

	return likes, nil
}

func (db *DB) AddLike(ctx context.Context, ownerID, comicID string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO user_likes (user_id, comic_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, comic_id) DO NOTHING`,
		ownerID, comicID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, apperror.OwnerNotRecognized(ownerID)
		}
		return false, fmt.Errorf("postgres: adding like %s/%s: %w", ownerID, comicID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) RemoveLike(ctx context.Context, ownerID, comicID string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM user_likes WHERE user_id = $1 AND comic_id = $2`,
		ownerID, comicID,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: removing like %s/%s: %w", ownerID, comicID, err)
	}
	return tag.RowsAffected() > 0, nil
}
