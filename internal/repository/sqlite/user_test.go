package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/model"
)

// =========================================================================
// UPSERT TESTS
// =========================================================================

func TestUserUpsert_NewUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		ExternalID: "105000000000000000001",
		Name:       "Tanjiro Kamado",
		Email:      "tanjiro@example.com",
		Picture:    "https://example.com/t.png",
	}

	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("Upsert() (new) error = %v", err)
	}

	if user.ID == "" {
		t.Error("Upsert() did not set user.ID for new user")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Upsert() did not set user.CreatedAt for new user")
	}

	found, err := db.GetByExternalID(context.Background(), user.ExternalID)
	if err != nil {
		t.Fatalf("GetByExternalID() after Upsert: %v", err)
	}
	if found.Name != "Tanjiro Kamado" {
		t.Errorf("Name = %q, want %q", found.Name, "Tanjiro Kamado")
	}
}

func TestUserUpsert_ExistingUser_UpdatesProfile(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{ExternalID: "g-66666", Name: "Old Name", Email: "old@example.com", Picture: "old.png"}
	if err := db.Upsert(context.Background(), first); err != nil {
		t.Fatalf("Upsert() first login: %v", err)
	}

	second := &model.User{ExternalID: "g-66666", Name: "New Name", Email: "new@example.com", Picture: "new.png"}
	if err := db.Upsert(context.Background(), second); err != nil {
		t.Fatalf("Upsert() second login: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Upsert() changed user ID: got %q, want %q", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Upsert() changed CreatedAt: got %v, want %v", second.CreatedAt, first.CreatedAt)
	}

	found, err := db.GetByExternalID(context.Background(), "g-66666")
	if err != nil {
		t.Fatalf("GetByExternalID() after second Upsert: %v", err)
	}
	if found.Name != "New Name" || found.Email != "new@example.com" || found.Picture != "new.png" {
		t.Errorf("profile after upsert = %+v, want refreshed name/email/picture", found)
	}
	if countRows(t, db, `SELECT COUNT(*) FROM users`) != 1 {
		t.Error("Upsert() created a second row for the same external id")
	}
}

// =========================================================================
// ENSURE USER TESTS
// =========================================================================

func TestEnsureUser_CreatesMissing(t *testing.T) {
	db := newTestDB(t)

	err := db.EnsureUser(context.Background(), &model.User{ExternalID: "g-1", Name: "Nezuko"})
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}

	found, err := db.GetByExternalID(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("GetByExternalID() error = %v", err)
	}
	if found.Name != "Nezuko" {
		t.Errorf("Name = %q, want %q", found.Name, "Nezuko")
	}
}

func TestEnsureUser_DoesNotOverwrite(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "g-2", "original")

	err := db.EnsureUser(context.Background(), &model.User{ExternalID: "g-2", Name: "stale session name"})
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}

	found, _ := db.GetByExternalID(context.Background(), "g-2")
	if found.Name != "original" {
		t.Errorf("EnsureUser() overwrote Name: got %q, want %q", found.Name, "original")
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetByExternalID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByExternalID(context.Background(), "nobody")

	if err == nil {
		t.Fatal("GetByExternalID() should have returned an error for an unknown id")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByExternalID() error = %v, want ErrNotFound", err)
	}
}
