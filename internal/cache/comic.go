package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/manga-match/internal/model"
)

const (
	comicKeyPrefix = "comic:"

	// DefaultComicTTL bounds how stale a cached catalog entry can get.
	DefaultComicTTL = 24 * time.Hour
)

// ErrCacheMiss is returned when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

func comicKey(id int) string {
	return comicKeyPrefix + strconv.Itoa(id)
}

// GetComic returns the cached comic or ErrCacheMiss.
func (c *Cache) GetComic(ctx context.Context, id int) (*model.Comic, error) {
	raw, err := c.client.Get(ctx, comicKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache: redis get %d: %w", id, err)
	}

	var comic model.Comic
	if err := json.Unmarshal(raw, &comic); err != nil {
		// A payload we can't read is as good as absent; drop it.
		c.client.Del(ctx, comicKey(id))
		return nil, ErrCacheMiss
	}
	return &comic, nil
}

// SetComic stores the transformed comic under its AniList id.
func (c *Cache) SetComic(ctx context.Context, comic *model.Comic) error {
	raw, err := json.Marshal(comic)
	if err != nil {
		return fmt.Errorf("cache: encoding comic %d: %w", comic.ID, err)
	}
	if err := c.client.Set(ctx, comicKey(comic.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set %d: %w", comic.ID, err)
	}
	return nil
}
