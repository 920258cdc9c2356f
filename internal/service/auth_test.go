package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/manga-match/internal/apperror"
	"github.com/sakif/manga-match/internal/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAuthService(newTestDB(t), tokens, testLogger()), tokens
}

func TestLoginOrRegister_NewUser(t *testing.T) {
	svc, tokens := newTestAuthService(t)

	result, err := svc.LoginOrRegister(context.Background(), &auth.GoogleUser{
		Sub:   "google-1",
		Name:  "Mikasa",
		Email: "mikasa@example.com",
	})
	if err != nil {
		t.Fatalf("LoginOrRegister() error = %v", err)
	}

	if result.User.ID == "" {
		t.Error("expected the stored user to have an internal ID")
	}
	if result.Token == "" {
		t.Fatal("expected a session token")
	}

	id, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if id.ExternalID != "google-1" || id.Name != "Mikasa" {
		t.Errorf("token identity = %+v, want google-1/Mikasa", id)
	}
}

func TestLoginOrRegister_ReturningUserRefreshesProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	first, _ := svc.LoginOrRegister(ctx, &auth.GoogleUser{Sub: "google-2", Name: "Old"})
	second, err := svc.LoginOrRegister(ctx, &auth.GoogleUser{Sub: "google-2", Name: "New"})
	if err != nil {
		t.Fatalf("LoginOrRegister() second error = %v", err)
	}

	if second.User.ID != first.User.ID {
		t.Errorf("returning user got a new ID: %q vs %q", second.User.ID, first.User.ID)
	}

	user, err := svc.GetUser(ctx, "google-2")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Name != "New" {
		t.Errorf("Name = %q, want %q", user.Name, "New")
	}
}

func TestLoginOrRegister_RejectsEmptyProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)

	for _, profile := range []*auth.GoogleUser{nil, {Name: "no sub"}} {
		if _, err := svc.LoginOrRegister(context.Background(), profile); err == nil {
			t.Errorf("LoginOrRegister(%+v) should fail", profile)
		}
	}
}

func TestLoginOrRegister_StorageError(t *testing.T) {
	tokens, _ := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	svc := NewAuthService(&failingStore{err: errStorage}, tokens, testLogger())

	_, err := svc.LoginOrRegister(context.Background(), &auth.GoogleUser{Sub: "g"})
	if !errors.Is(err, errStorage) {
		t.Errorf("LoginOrRegister() error = %v, want wrapped storage error", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.GetUser(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}
