package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/auth"
	"github.com/sakif/manga-match/internal/catalog"
	"github.com/sakif/manga-match/internal/model"
)

// Catalog is the comic source behind the browse endpoints. *catalog.Client
// implements it; both calls degrade to built-in entries instead of failing.
type Catalog interface {
	Discover(ctx context.Context) []model.Comic
	Batch(ctx context.Context, ids []int) []model.Comic
}

// CatalogHandler serves public comic data. The routes sit behind
// auth.OptionalAuth, so a logged-in caller is named in the logs.
type CatalogHandler struct {
	catalog Catalog
	logger  *slog.Logger
}

func NewCatalogHandler(c Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, logger: logger}
}

type comicsResponse struct {
	Comics []model.Comic `json:"comics"`
}

// HandleDiscover returns a shuffled page of safe comics.
//
// HTTP: GET /api/comics
func (h *CatalogHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	comics := nonNil(h.catalog.Discover(r.Context()))
	h.logger.Debug("discover served",
		slog.Int("comics", len(comics)),
		slog.String("caller", caller(r)),
	)
	writeJSON(w, http.StatusOK, comicsResponse{Comics: comics})
}

// HandleBatch looks comics up by id, typically the caller's likes.
//
// HTTP: GET /api/comics/batch?ids=1,2,3
func (h *CatalogHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	ids, err := catalog.ParseIDs(raw)
	if err != nil {
		h.logger.Warn("batch rejected",
			slog.String("ids", raw),
			slog.String("caller", caller(r)),
		)
		writeError(w, apperror.ValidationFailed("ids", "ids must be a comma-separated list of positive integers"))
		return
	}

	comics := nonNil(h.catalog.Batch(r.Context(), ids))
	h.logger.Debug("batch served",
		slog.Int("requested", len(ids)),
		slog.Int("comics", len(comics)),
		slog.String("caller", caller(r)),
	)
	writeJSON(w, http.StatusOK, comicsResponse{Comics: comics})
}

// caller names the session owner for log lines, or "anonymous".
func caller(r *http.Request) string {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		return id.ExternalID
	}
	return "anonymous"
}

func nonNil(comics []model.Comic) []model.Comic {
	if comics == nil {
		return []model.Comic{}
	}
	return comics
}
