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

// Upsert creates the user on first login and refreshes name, email, picture
// and updated_at on every later login. The internal ID and created_at of an
// existing row are preserved and copied back into user.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, external_id, name, email, picture, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (external_id) DO UPDATE SET
			name       = excluded.name,
			email      = excluded.email,
			picture    = excluded.picture,
			updated_at = excluded.updated_at`,
		xid.New().String(),
		user.ExternalID,
		user.Name,
		user.Email,
		user.Picture,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.ExternalID, err)
	}

	stored, err := db.GetByExternalID(ctx, user.ExternalID)
	if err != nil {
		return fmt.Errorf("sqlite: reading upserted user %s: %w", user.ExternalID, err)
	}
	*user = *stored

	return nil
}

// EnsureUser inserts the user only if no row with its external ID exists.
func (db *DB) EnsureUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, external_id, name, email, picture, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (external_id) DO NOTHING`,
		xid.New().String(),
		user.ExternalID,
		user.Name,
		user.Email,
		user.Picture,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: ensuring user %s: %w", user.ExternalID, err)
	}
	return nil
}

// GetByExternalID looks a user up by the identity provider's id.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, external_id, name, email, picture, created_at, updated_at
		 FROM users WHERE external_id = ?`,
		externalID,
	).Scan(
		&u.ID,
		&u.ExternalID,
		&u.Name,
		&u.Email,
		&u.Picture,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", externalID, err)
	}

	return &u, nil
}
