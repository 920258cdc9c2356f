package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/model"
	"github.com/sakif/manga-match/internal/repository"
)

// ListService manages an owner's named lists.
//
// List lifecycle: absent -> created -> (renamed | item added | item removed)*
// -> deleted. A deleted list is gone; creating one with the same name starts
// a new list with a new id.
type ListService struct {
	users  repository.UserRepository
	lists  repository.ListRepository
	logger *slog.Logger
}

func NewListService(users repository.UserRepository, lists repository.ListRepository, logger *slog.Logger) *ListService {
	return &ListService{users: users, lists: lists, logger: logger}
}

// CreateList creates an empty list. The name is trimmed; a name the owner
// already uses is a conflict.
func (s *ListService) CreateList(ctx context.Context, owner model.Owner, name string) (*model.List, error) {
	name, err := normalizeListName("listName", name)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(ctx, s.users, owner); err != nil {
		logStorageError(s.logger, "failed to ensure owner", err, slog.String("owner", owner.ExternalID))
		return nil, err
	}

	list, err := s.lists.CreateList(ctx, owner.ExternalID, name)
	if err != nil {
		logStorageError(s.logger, "failed to create list", err,
			slog.String("owner", owner.ExternalID),
			slog.String("list", name),
		)
		return nil, fmt.Errorf("creating list: %w", err)
	}

	s.logger.Info("list created",
		slog.String("owner", owner.ExternalID),
		slog.String("list_id", list.ID),
		slog.String("list", list.Name),
	)
	return list, nil
}

// ListLists returns the owner's lists, newest first, each with its items.
func (s *ListService) ListLists(ctx context.Context, ownerID string) ([]model.List, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return nil, err
	}

	lists, err := s.lists.ListLists(ctx, ownerID)
	if err != nil {
		logStorageError(s.logger, "failed to list lists", err, slog.String("owner", ownerID))
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	return lists, nil
}

// RenameList renames oldName to newName. Renaming a list to its current name
// is rejected as a validation error rather than accepted as a no-op.
func (s *ListService) RenameList(ctx context.Context, ownerID, oldName, newName string) (*model.List, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return nil, err
	}
	oldName, err := normalizeListName("listName", oldName)
	if err != nil {
		return nil, err
	}
	newName, err = normalizeListName("newListName", newName)
	if err != nil {
		return nil, err
	}
	if oldName == newName {
		return nil, apperror.ValidationFailed("newListName", "new list name must be different from the current name")
	}

	list, err := s.lists.RenameList(ctx, ownerID, oldName, newName)
	if err != nil {
		logStorageError(s.logger, "failed to rename list", err,
			slog.String("owner", ownerID),
			slog.String("from", oldName),
			slog.String("to", newName),
		)
		return nil, fmt.Errorf("renaming list: %w", err)
	}

	s.logger.Info("list renamed",
		slog.String("owner", ownerID),
		slog.String("from", oldName),
		slog.String("to", newName),
	)
	return list, nil
}

// DeleteList removes the list and all of its items atomically.
func (s *ListService) DeleteList(ctx context.Context, ownerID, name string) (*model.DeleteResult, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return nil, err
	}
	name, err := normalizeListName("listName", name)
	if err != nil {
		return nil, err
	}

	count, err := s.lists.DeleteList(ctx, ownerID, name)
	if err != nil {
		logStorageError(s.logger, "failed to delete list", err,
			slog.String("owner", ownerID),
			slog.String("list", name),
		)
		return nil, fmt.Errorf("deleting list: %w", err)
	}

	s.logger.Info("list deleted",
		slog.String("owner", ownerID),
		slog.String("list", name),
		slog.Int("items", count),
	)
	return &model.DeleteResult{Deleted: true, DeletedItemCount: count}, nil
}

// AddItem adds a comic to the named list; added=false if it was already there.
func (s *ListService) AddItem(ctx context.Context, ownerID, name, rawComicID string) (bool, error) {
	name, comicID, err := s.itemArgs(ownerID, name, rawComicID)
	if err != nil {
		return false, err
	}

	added, err := s.lists.AddItem(ctx, ownerID, name, comicID)
	if err != nil {
		logStorageError(s.logger, "failed to add list item", err,
			slog.String("owner", ownerID),
			slog.String("list", name),
			slog.String("comic", comicID),
		)
		return false, fmt.Errorf("adding to list: %w", err)
	}
	return added, nil
}

// RemoveItem removes a comic from the named list; removed=false if it was
// not a member.
func (s *ListService) RemoveItem(ctx context.Context, ownerID, name, rawComicID string) (bool, error) {
	name, comicID, err := s.itemArgs(ownerID, name, rawComicID)
	if err != nil {
		return false, err
	}

	removed, err := s.lists.RemoveItem(ctx, ownerID, name, comicID)
	if err != nil {
		logStorageError(s.logger, "failed to remove list item", err,
			slog.String("owner", ownerID),
			slog.String("list", name),
			slog.String("comic", comicID),
		)
		return false, fmt.Errorf("removing from list: %w", err)
	}
	return removed, nil
}

func (s *ListService) itemArgs(ownerID, name, rawComicID string) (string, string, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return "", "", err
	}
	name, err := normalizeListName("listName", name)
	if err != nil {
		return "", "", err
	}
	comicID, err := normalizeComicID(rawComicID)
	if err != nil {
		return "", "", err
	}
	return name, comicID, nil
}
