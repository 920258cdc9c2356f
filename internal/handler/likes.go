package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/auth"
	"github.com/sakif/manga-match/internal/model"
	"github.com/sakif/manga-match/internal/service"
)

// LikeHandler serves the caller's liked comics.
//
// Routes (all behind auth.RequireAuth):
//
//	GET    /api/likes                -> HandleList
//	POST   /api/likes   {comicId}    -> HandleAdd
//	DELETE /api/likes   {comicId}    -> HandleRemove
//	GET    /api/users/{userID}/likes -> HandleListForUser (plus auth.RequireOwner)
type LikeHandler struct {
	likes  *service.LikeService
	logger *slog.Logger
}

func NewLikeHandler(likes *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, logger: logger}
}

// comicRequest is the body of every like and list-item mutation. comicId may
// be sent as a JSON number or a string.
type comicRequest struct {
	ComicID model.ComicID `json:"comicId"`
}

type likesResponse struct {
	LikedComics []string `json:"likedComics"`
	Count       int      `json:"count"`
}

func (h *LikeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	h.writeLikes(w, r, owner.ExternalID)
}

// HandleListForUser is HandleList addressed by path. auth.RequireOwner has
// already checked that {userID} is the caller.
func (h *LikeHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	h.writeLikes(w, r, chi.URLParam(r, "userID"))
}

func (h *LikeHandler) writeLikes(w http.ResponseWriter, r *http.Request, ownerID string) {
	likes, err := h.likes.ListLikes(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likesResponse{LikedComics: likes, Count: len(likes)})
}

func (h *LikeHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req comicRequest
	if !readBody(w, r, h.logger, &req) {
		return
	}

	liked, err := h.likes.AddLike(r.Context(), owner, string(req.ComicID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *LikeHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req comicRequest
	if !readBody(w, r, h.logger, &req) {
		return
	}

	removed, err := h.likes.RemoveLike(r.Context(), owner.ExternalID, string(req.ComicID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// requireOwner resolves the caller set by auth.RequireAuth. It only fails if a
// route was registered without that middleware.
func requireOwner(w http.ResponseWriter, r *http.Request) (model.Owner, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required, please log in"))
		return model.Owner{}, false
	}
	return id.Owner(), true
}
