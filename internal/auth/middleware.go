package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// CookieName is the session cookie set on login.
const CookieName = "token"

type contextKey string

const identityKey contextKey = "identity"

// RequireAuth rejects requests without a valid session cookie with 401 and
// otherwise stores the caller's Identity in the request context.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identityFromRequest(r, tokens)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required, please log in")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *id)))
		})
	}
}

// OptionalAuth attaches the identity when a valid cookie is present and lets
// anonymous requests through unchanged.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := identityFromRequest(r, tokens); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), *id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner must run after RequireAuth. It answers 403 when the URL
// parameter param names a different owner than the session.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required, please log in")
				return
			}
			if chi.URLParam(r, param) != id.ExternalID {
				writeAuthError(w, http.StatusForbidden, "forbidden", "you can only access your own data")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.ExternalID != ""
}

// SetSessionCookie stores token in the HttpOnly session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func identityFromRequest(r *http.Request, tokens *TokenService) (*Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, err
	}
	return tokens.Validate(cookie.Value)
}

func writeAuthError(w http.ResponseWriter, status int, errType, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": errType, "message": msg})
}
