package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/manga-match/internal/auth"
	"github.com/sakif/manga-match/internal/handler"
	sqliteRepo "github.com/sakif/manga-match/internal/repository/sqlite"
	"github.com/sakif/manga-match/internal/service"
)

const testSecret = "handler-test-secret-0123456789"

var (
	alice = auth.Identity{ExternalID: "u1", Name: "Alice", Email: "alice@example.com"}
	bob   = auth.Identity{ExternalID: "u2", Name: "Bob"}
)

// testEnv wires the likes and lists handlers to an in-memory database behind
// the same middleware the server uses.
type testEnv struct {
	router http.Handler
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	logger := quietLogger()
	likes := handler.NewLikeHandler(service.NewLikeService(db, db, logger), logger)
	lists := handler.NewListHandler(service.NewListService(db, db, logger), logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/likes", likes.HandleList)
		r.Post("/likes", likes.HandleAdd)
		r.Delete("/likes", likes.HandleRemove)

		r.Get("/lists", lists.HandleList)
		r.Post("/lists", lists.HandleCreate)
		r.Put("/lists/{name}/rename", lists.HandleRename)
		r.Delete("/lists/{name}", lists.HandleDelete)
		r.Post("/lists/{name}/add", lists.HandleAddItem)
		r.Post("/lists/{name}/remove", lists.HandleRemoveItem)

		r.With(auth.RequireOwner("userID")).Get("/users/{userID}/likes", likes.HandleListForUser)
		r.With(auth.RequireOwner("userID")).Get("/users/{userID}/lists", lists.HandleListForUser)
	})

	return &testEnv{router: r, db: db, tokens: tokens}
}

// do sends a request as who (nil for anonymous) and returns the recorder.
func (e *testEnv) do(t *testing.T, who *auth.Identity, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	if who != nil {
		token, err := e.tokens.Generate(*who)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}
