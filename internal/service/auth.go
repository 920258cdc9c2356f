package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/manga-match/internal/auth"
	"github.com/sakif/manga-match/internal/model"
	"github.com/sakif/manga-match/internal/repository"
)

// AuthService turns a Google profile into a stored user and a session token.
//
//	AuthHandler (HTTP) -> AuthService -> UserRepository (DB)
//	                                  -> TokenService (JWT)
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// AuthResult bundles the stored user and the issued session token.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegister upserts the user keyed by the Google subject (first login
// inserts, later logins refresh name, email and picture) and issues a token.
func (s *AuthService) LoginOrRegister(ctx context.Context, profile *auth.GoogleUser) (*AuthResult, error) {
	if profile == nil || profile.Sub == "" {
		return nil, errors.New("service/auth: Google profile must carry a subject")
	}

	user := profile.Identity().Owner().User()
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", profile.Sub, err)
	}

	s.logger.Info("user authenticated via Google",
		slog.String("user_id", user.ID),
		slog.String("external_id", user.ExternalID),
	)

	token, err := s.tokens.Generate(auth.IdentityFromUser(user))
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.ExternalID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUser returns the stored profile for an external id.
func (s *AuthService) GetUser(ctx context.Context, externalID string) (*model.User, error) {
	if err := requireOwnerID(externalID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", externalID, err)
	}
	return user, nil
}
