package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/manga-match/internal/model"
	sqliteRepo "github.com/sakif/manga-match/internal/repository/sqlite"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

var errStorage = errors.New("disk I/O error")

// failingStore implements every repository interface and fails each call with
// err. calls counts how many storage calls were attempted.
type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) fail() error { f.calls++; return f.err }

func (f *failingStore) Upsert(context.Context, *model.User) error     { return f.fail() }
func (f *failingStore) EnsureUser(context.Context, *model.User) error { return f.fail() }
func (f *failingStore) GetByExternalID(context.Context, string) (*model.User, error) {
	return nil, f.fail()
}
func (f *failingStore) ListLikes(context.Context, string) ([]string, error) { return nil, f.fail() }
func (f *failingStore) AddLike(context.Context, string, string) (bool, error) {
	return false, f.fail()
}
func (f *failingStore) RemoveLike(context.Context, string, string) (bool, error) {
	return false, f.fail()
}
func (f *failingStore) CreateList(context.Context, string, string) (*model.List, error) {
	return nil, f.fail()
}
func (f *failingStore) ListLists(context.Context, string) ([]model.List, error) {
	return nil, f.fail()
}
func (f *failingStore) RenameList(context.Context, string, string, string) (*model.List, error) {
	return nil, f.fail()
}
func (f *failingStore) DeleteList(context.Context, string, string) (int, error) {
	return 0, f.fail()
}
func (f *failingStore) AddItem(context.Context, string, string, string) (bool, error) {
	return false, f.fail()
}
func (f *failingStore) RemoveItem(context.Context, string, string, string) (bool, error) {
	return false, f.fail()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestDB returns an in-memory SQLite store.
func newTestDB(t *testing.T) *sqliteRepo.DB {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testOwner = model.Owner{
	ExternalID: "u1",
	Name:       "Reader One",
	Email:      "u1@example.com",
}
