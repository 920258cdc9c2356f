// Package catalog is a read-only client for the AniList GraphQL API.
//
// Two lookups are offered: Discover (a random page of popular manga for the
// swipe deck) and Batch (specific ids, used to render likes and lists).
// Results are transformed into model.Comic and run through a local content
// filter. When AniList is unreachable the client falls back to a small built-in
// set, so the UI keeps working offline.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/manga-match/internal/model"
)

const (
	discoverPages   = 50
	discoverPerPage = 50

	defaultTimeout = 10 * time.Second
)

// ComicCache stores transformed comics by id. A miss is reported as an error;
// the client treats every cache error as a miss.
type ComicCache interface {
	GetComic(ctx context.Context, id int) (*model.Comic, error)
	SetComic(ctx context.Context, comic *model.Comic) error
}

// Client talks to AniList.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      ComicCache
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables per-comic caching of batch lookups.
func WithCache(cache ComicCache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the GraphQL endpoint. An empty endpoint means
// DefaultURL.
func New(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover returns a shuffled page of popular, safe manga. It never fails:
// upstream errors are logged and the mock set is returned instead.
func (c *Client) Discover(ctx context.Context) []model.Comic {
	page := rand.Intn(discoverPages) + 1

	entries, err := c.query(ctx, discoverQuery, map[string]any{
		"page":    page,
		"perPage": discoverPerPage,
	})
	if err != nil {
		c.logger.Warn("anilist discover failed, serving mock comics", "error", err, "page", page)
		return shuffle(mockComics())
	}

	comics := safeComics(entries)
	c.logger.Debug("anilist discover",
		"page", page,
		"received", len(entries),
		"safe", len(comics),
	)
	return shuffle(comics)
}

// Batch returns the safe comics among ids, in the order the ids were given.
// Ids AniList doesn't know (or that the filter removes) are simply absent.
// On upstream failure the mock entries whose ids were requested are returned.
func (c *Client) Batch(ctx context.Context, ids []int) []model.Comic {
	if len(ids) == 0 {
		return []model.Comic{}
	}

	found := make(map[int]model.Comic, len(ids))
	missing := c.fromCache(ctx, ids, found)

	if len(missing) > 0 {
		entries, err := c.query(ctx, batchQuery, map[string]any{"ids": missing})
		if err != nil {
			c.logger.Warn("anilist batch failed, serving mock comics", "error", err, "ids", len(missing))
			for _, m := range mockComics() {
				if slices.Contains(missing, m.ID) {
					found[m.ID] = m
				}
			}
		} else {
			for _, comic := range safeComics(entries) {
				found[comic.ID] = comic
				c.toCache(ctx, comic)
			}
		}
	}

	out := make([]model.Comic, 0, len(found))
	for _, id := range ids {
		if comic, ok := found[id]; ok {
			out = append(out, comic)
		}
	}
	return out
}

// fromCache fills found with cached comics and returns the ids still missing.
func (c *Client) fromCache(ctx context.Context, ids []int, found map[int]model.Comic) []int {
	if c.cache == nil {
		return ids
	}

	var missing []int
	for _, id := range ids {
		comic, err := c.cache.GetComic(ctx, id)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		found[id] = *comic
	}
	return missing
}

func (c *Client) toCache(ctx context.Context, comic model.Comic) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetComic(ctx, &comic); err != nil {
		c.logger.Warn("caching comic failed", "error", err, "comic_id", comic.ID)
	}
}

// ParseIDs parses a comma-separated id list as sent in ?ids=. Blank entries are
// skipped and duplicates dropped, keeping first-seen order.
func ParseIDs(raw string) ([]int, error) {
	ids := []int{}
	seen := make(map[int]bool)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		canonical, err := model.NormalizeComicID(part)
		if err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(canonical)
		if err != nil {
			return nil, errors.Join(model.ErrInvalidComicID, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids, nil
}

func shuffle(comics []model.Comic) []model.Comic {
	rand.Shuffle(len(comics), func(i, j int) {
		comics[i], comics[j] = comics[j], comics[i]
	})
	return comics
}
