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

// Upsert creates the user on first login and refreshes the profile afterwards.
// RETURNING hands back the id and created_at of whichever row survived.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (id, external_id, name, email, picture, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (external_id) DO UPDATE SET
			name       = EXCLUDED.name,
			email      = EXCLUDED.email,
			picture    = EXCLUDED.picture,
			updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at, updated_at`,
		xid.New().String(), user.ExternalID, user.Name, user.Email, user.Picture, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upserting user %s: %w", user.ExternalID, err)
	}
	return nil
}

func (db *DB) EnsureUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, external_id, name, email, picture, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (external_id) DO NOTHING`,
		xid.New().String(), user.ExternalID, user.Name, user.Email, user.Picture, now,
	)
	if err != nil {
		return fmt.Errorf("postgres: ensuring user %s: %w", user.ExternalID, err)
	}
	return nil
}

func (db *DB) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User

	err := db.pool.QueryRow(ctx,
		`SELECT id, external_id, name, email, picture, created_at, updated_at
		 FROM users WHERE external_id = $1`,
		externalID,
	).Scan(&u.ID, &u.ExternalID, &u.Name, &u.Email, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", externalID, err)
	}

	return &u, nil
}
