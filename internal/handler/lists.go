package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/manga-match/internal/model"
	"github.com/sakif/manga-match/internal/service"
)

// ListHandler serves the caller's named lists.
//
// Routes (all behind auth.RequireAuth):
//
//	GET    /api/lists                          -> HandleList
//	POST   /api/lists               {listName} -> HandleCreate
//	PUT    /api/lists/{name}/rename {newListName} -> HandleRename
//	DELETE /api/lists/{name}                   -> HandleDelete
//	POST   /api/lists/{name}/add    {comicId}  -> HandleAddItem
//	POST   /api/lists/{name}/remove {comicId}  -> HandleRemoveItem
//	GET    /api/users/{userID}/lists           -> HandleListForUser
type ListHandler struct {
	lists  *service.ListService
	logger *slog.Logger
}

func NewListHandler(lists *service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, logger: logger}
}

type createListRequest struct {
	ListName string `json:"listName"`
}

type renameListRequest struct {
	NewListName string `json:"newListName"`
}

type listSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type deleteListResponse struct {
	Deleted           bool `json:"deleted"`
	DeletedItemsCount int  `json:"deletedItemsCount"`
}

func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	h.writeLists(w, r, owner.ExternalID)
}

// HandleListForUser is HandleList addressed by path; auth.RequireOwner guards it.
func (h *ListHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	h.writeLists(w, r, chi.URLParam(r, "userID"))
}

// writeLists answers {"lists": {"<name>": ["<comicId>", ...]}}. An owner
// without lists gets an empty object, never null.
func (h *ListHandler) writeLists(w http.ResponseWriter, r *http.Request, ownerID string) {
	lists, err := h.lists.ListLists(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	byName := make(map[string][]string, len(lists))
	for _, l := range lists {
		items := l.Items
		if items == nil {
			items = []string{}
		}
		byName[l.Name] = items
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": byName})
}

func (h *ListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req createListRequest
	if !readBody(w, r, h.logger, &req) {
		return
	}

	list, err := h.lists.CreateList(r.Context(), owner, req.ListName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]listSummary{"list": summarize(list)})
}

func (h *ListHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req renameListRequest
	if !readBody(w, r, h.logger, &req) {
		return
	}

	oldName := listNameParam(r)
	list, err := h.lists.RenameList(r.Context(), owner.ExternalID, oldName, req.NewListName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"oldName": oldName,
		"newName": list.Name,
	})
}

func (h *ListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	result, err := h.lists.DeleteList(r.Context(), owner.ExternalID, listNameParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteListResponse{
		Deleted:           result.Deleted,
		DeletedItemsCount: result.DeletedItemCount,
	})
}

func (h *ListHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req comicRequest
	if !readBody(w, r, h.logger, &req) {
		return
	}

	added, err := h.lists.AddItem(r.Context(), owner.ExternalID, listNameParam(r), string(req.ComicID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

func (h *ListHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req comicRequest
	if !readBody(w, r, h.logger, &req) {
		return
	}

	removed, err := h.lists.RemoveItem(r.Context(), owner.ExternalID, listNameParam(r), string(req.ComicID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// listNameParam returns the decoded {name} segment. chi routes on
// r.URL.RawPath when it is set (the path held an escape such as %2F that
// Path cannot represent), and the segment then arrives still escaped.
// Otherwise it routes on the decoded r.URL.Path and the segment is used as is,
// so a name like "sale%41" is not decoded a second time.
func listNameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func summarize(l *model.List) listSummary {
	return listSummary{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt}
}
