// Package service holds the business rules for likes, lists and login.
//
// Handlers resolve the caller once (auth.IdentityFromContext) and pass the
// owner explicitly; nothing in this package reads request state. Services
// validate input, normalize comic ids, make sure the owner row exists before
// writes that reference it, and wrap storage failures. Errors that callers
// can act on are *apperror.AppError values; everything else is opaque.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/model"
	"github.com/sakif/manga-match/internal/repository"
)

// MaxListNameLength is counted in characters, not bytes.
const MaxListNameLength = 100

// normalizeComicID validates a raw request id and returns its canonical form.
func normalizeComicID(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperror.ValidationFailed("comicId", "comicId is required")
	}
	id, err := model.NormalizeComicID(raw)
	if err != nil {
		return "", apperror.ValidationFailed("comicId", "comicId must be a positive integer")
	}
	return id, nil
}

// normalizeListName trims name and checks it is non-blank and not too long.
func normalizeListName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed(field, "list name is required")
	}
	if utf8.RuneCountInString(name) > MaxListNameLength {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("list name must be %d characters or less", MaxListNameLength))
	}
	return name, nil
}

func requireOwnerID(ownerID string) error {
	if ownerID == "" {
		return apperror.Unauthorized("authentication required, please log in")
	}
	return nil
}

// ensureOwner creates the owner's user row if it has gone missing since login.
func ensureOwner(ctx context.Context, users repository.UserRepository, owner model.Owner) error {
	if err := requireOwnerID(owner.ExternalID); err != nil {
		return err
	}
	if err := users.EnsureUser(ctx, owner.User()); err != nil {
		return fmt.Errorf("ensuring owner %s: %w", owner.ExternalID, err)
	}
	return nil
}

// logStorageError logs err unless it is an expected domain error.
func logStorageError(logger *slog.Logger, msg string, err error, attrs ...any) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return
	}
	logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
}
