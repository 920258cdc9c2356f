// Package auth handles Google sign-in and the session token that identifies
// the caller on every API request.
//
// SESSION FLOW:
//  1. GET /auth/google redirects to Google's consent screen
//  2. Google calls back /auth/google/callback with a code
//  3. The server exchanges the code for the Google profile and upserts the user
//  4. The server signs a JWT carrying the Google "sub" and profile fields and
//     stores it in the HttpOnly "token" cookie
//  5. RequireAuth validates that cookie on protected routes and puts the
//     Identity into the request context
//
// The token carries the profile (not just the id) so a write can recreate the
// owner's user row if it was removed after the token was issued.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/manga-match/internal/model"
)

const issuer = "manga-match"

// DefaultSessionTTL is used when NewTokenService gets a non-positive ttl.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Identity is the authenticated caller as recorded in the session token.
type Identity struct {
	ExternalID string
	Name       string
	Email      string
	Picture    string
}

// Owner converts the identity into the owner passed to the services.
func (i Identity) Owner() model.Owner {
	return model.Owner{
		ExternalID: i.ExternalID,
		Name:       i.Name,
		Email:      i.Email,
		Picture:    i.Picture,
	}
}

// IdentityFromUser builds the session identity for a stored user.
func IdentityFromUser(u *model.User) Identity {
	return Identity{
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Email:      u.Email,
		Picture:    u.Picture,
	}
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters. Tokens expire after ttl.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

type claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Generate signs a token for id that expires after the service TTL.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to mint expired tokens.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	if id.ExternalID == "" {
		return "", errors.New("auth: identity has no external id")
	}

	now := time.Now()
	c := claims{
		Name:    id.Name,
		Email:   id.Email,
		Picture: id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ExternalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry, and returns the
// identity the token was issued for.
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}

	return &Identity{
		ExternalID: c.Subject,
		Name:       c.Name,
		Email:      c.Email,
		Picture:    c.Picture,
	}, nil
}
