// Package repository declares the storage contracts the services depend on.
//
// Two implementations exist: repository/sqlite (default, embedded) and
// repository/postgres (selected when DATABASE_URL is set). Both must give the
// same observable behaviour, so insert-or-ignore operations report their
// outcome as a bool instead of leaking an engine-specific conflict clause.
//
// Error contract for implementations:
//   - apperror.ErrNotFound     the named list (or user) does not exist for the owner
//   - apperror.ErrConflict     a list name is already used by the owner
//   - apperror.ErrOwnerUnknown a write hit the users foreign key
//   - anything else            storage failure, wrapped with context
package repository

import (
	"context"

	"github.com/sakif/manga-match/internal/model"
)

type UserRepository interface {
	// Upsert inserts the user keyed by ExternalID or refreshes its profile
	// fields. On return user carries the stored ID and timestamps.
	Upsert(ctx context.Context, user *model.User) error

	// EnsureUser inserts the user if no row with its ExternalID exists.
	// Existing rows are left untouched.
	EnsureUser(ctx context.Context, user *model.User) error

	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
}

type LikeRepository interface {
	// ListLikes returns comic ids, most recently liked first.
	ListLikes(ctx context.Context, ownerID string) ([]string, error)
	AddLike(ctx context.Context, ownerID, comicID string) (added bool, err error)
	RemoveLike(ctx context.Context, ownerID, comicID string) (removed bool, err error)
}

type ListRepository interface {
	CreateList(ctx context.Context, ownerID, name string) (*model.List, error)

	// ListLists returns the owner's lists newest first, each with its items in
	// insertion order.
	ListLists(ctx context.Context, ownerID string) ([]model.List, error)

	RenameList(ctx context.Context, ownerID, oldName, newName string) (*model.List, error)

	// DeleteList removes the list and all of its items in one transaction and
	// reports how many items were removed.
	DeleteList(ctx context.Context, ownerID, name string) (deletedItems int, err error)

	AddItem(ctx context.Context, ownerID, name, comicID string) (added bool, err error)
	RemoveItem(ctx context.Context, ownerID, name, comicID string) (removed bool, err error)
}

// Store is everything a storage backend provides.
type Store interface {
	UserRepository
	LikeRepository
	ListRepository

	Ping(ctx context.Context) error
	Close() error
}
