package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/manga-match/internal/model"
	"github.com/sakif/manga-match/internal/repository"
)

// LikeService manages an owner's liked comics.
type LikeService struct {
	users  repository.UserRepository
	likes  repository.LikeRepository
	logger *slog.Logger
}

func NewLikeService(users repository.UserRepository, likes repository.LikeRepository, logger *slog.Logger) *LikeService {
	return &LikeService{users: users, likes: likes, logger: logger}
}

// ListLikes returns the owner's liked comic ids, most recent first.
func (s *LikeService) ListLikes(ctx context.Context, ownerID string) ([]string, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return nil, err
	}

	likes, err := s.likes.ListLikes(ctx, ownerID)
	if err != nil {
		logStorageError(s.logger, "failed to list likes", err, slog.String("owner", ownerID))
		return nil, fmt.Errorf("listing likes: %w", err)
	}
	return likes, nil
}

// AddLike likes a comic. Liking it again is not an error; added reports
// whether a new like was stored.
func (s *LikeService) AddLike(ctx context.Context, owner model.Owner, rawComicID string) (bool, error) {
	comicID, err := normalizeComicID(rawComicID)
	if err != nil {
		return false, err
	}
	if err := ensureOwner(ctx, s.users, owner); err != nil {
		logStorageError(s.logger, "failed to ensure owner", err, slog.String("owner", owner.ExternalID))
		return false, err
	}

	added, err := s.likes.AddLike(ctx, owner.ExternalID, comicID)
	if err != nil {
		logStorageError(s.logger, "failed to add like", err,
			slog.String("owner", owner.ExternalID),
			slog.String("comic", comicID),
		)
		return false, fmt.Errorf("adding like: %w", err)
	}

	if added {
		s.logger.Info("comic liked", slog.String("owner", owner.ExternalID), slog.String("comic", comicID))
	}
	return added, nil
}

// RemoveLike unlikes a comic. Removing a like that doesn't exist reports
// removed=false.
func (s *LikeService) RemoveLike(ctx context.Context, ownerID, rawComicID string) (bool, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return false, err
	}
	comicID, err := normalizeComicID(rawComicID)
	if err != nil {
		return false, err
	}

	removed, err := s.likes.RemoveLike(ctx, ownerID, comicID)
	if err != nil {
		logStorageError(s.logger, "failed to remove like", err,
			slog.String("owner", ownerID),
			slog.String("comic", comicID),
		)
		return false, fmt.Errorf("removing like: %w", err)
	}

	if removed {
		s.logger.Info("comic unliked", slog.String("owner", ownerID), slog.String("comic", comicID))
	}
	return removed, nil
}
