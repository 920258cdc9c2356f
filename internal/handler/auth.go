package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/manga-match/internal/auth"
	"github.com/sakif/manga-match/internal/service"
)

const (
	stateCookie    = "oauth_state"
	returnToCookie = "oauth_return_to"
	loginCookieTTL = 10 * time.Minute
)

// OAuthProvider is the Google side of the login flow. *auth.GoogleProvider
// implements it.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleUser, error)
}

// AuthConfig is the part of the application config the login flow needs.
type AuthConfig struct {
	ClientBaseURL string        // browser app the callback redirects to
	SessionTTL    time.Duration // lifetime of the token cookie
	SecureCookies bool          // set Secure on cookies (HTTPS deployments)
}

// AuthHandler manages the Google OAuth login flow and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGoogleLogin    -> redirect the browser to Google's consent page
//   - HandleGoogleCallback -> check state, exchange the code, issue the cookie
//   - HandleMe             -> profile of the logged-in user
//   - HandleLogout         -> clear the cookie
//
// google is nil when no client credentials are configured; the login routes
// then answer 503 and the rest of the API keeps working for existing sessions.
type AuthHandler struct {
	google OAuthProvider
	auth   *service.AuthService
	cfg    AuthConfig
	logger *slog.Logger
}

func NewAuthHandler(google OAuthProvider, authService *service.AuthService, cfg AuthConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google: google,
		auth:   authService,
		cfg:    cfg,
		logger: logger,
	}
}

// HandleGoogleLogin redirects to Google.
//
// HTTP: GET /auth/google?returnTo=/path
//
// A random state goes into a short-lived HttpOnly cookie and is checked on the
// callback, which proves the callback belongs to a login this server started.
// returnTo is kept alongside it so the callback can send the user back to the
// page they came from.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "Google login is not configured",
		})
		return
	}

	state := xid.New().String()
	h.setLoginCookie(w, stateCookie, state)
	h.setLoginCookie(w, returnToCookie, safeReturnTo(r.URL.Query().Get("returnTo")))

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the login.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter against the cookie (CSRF check)
//  2. Bail out to the client's login page if Google reported an error
//  3. Exchange the code for the Google profile
//  4. Upsert the user and issue the session cookie
//  5. Redirect to the client at returnTo
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "Google login is not configured",
		})
		return
	}

	query := r.URL.Query()

	// --- Step 1: CSRF state ---
	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || query.Get("state") != state.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid OAuth state",
		})
		return
	}

	returnTo := "/"
	if c, err := r.Cookie(returnToCookie); err == nil {
		returnTo = safeReturnTo(c.Value)
	}
	h.clearLoginCookie(w, stateCookie)
	h.clearLoginCookie(w, returnToCookie)

	// --- Step 2: denied or failed at Google ---
	if errParam := query.Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization failed", slog.String("error", errParam))
		h.redirectToClient(w, r, "/login?error=auth_failed")
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectToClient(w, r, "/login?error=auth_failed")
		return
	}

	// --- Step 3: code exchange ---
	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		h.redirectToClient(w, r, "/login?error=auth_failed")
		return
	}

	// --- Step 4: user + session ---
	result, err := h.auth.LoginOrRegister(r.Context(), profile)
	if err != nil {
		h.logger.Error("auth callback: login failed", slog.String("error", err.Error()))
		h.redirectToClient(w, r, "/login?error=callback_error")
		return
	}
	auth.SetSessionCookie(w, result.Token, h.cfg.SessionTTL, h.cfg.SecureCookies)

	// --- Step 5: back to the app ---
	h.redirectToClient(w, r, returnTo)
}

// HandleMe returns the stored profile of the caller.
//
// HTTP: GET /auth/me (behind auth.RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(r.Context(), owner.ExternalID)
	if err != nil {
		h.logger.Warn("HandleMe: user lookup failed",
			slog.String("owner", owner.ExternalID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleLogout clears the session cookie. The token itself stays valid until
// it expires, but the browser no longer sends it.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cfg.SecureCookies)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) redirectToClient(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, strings.TrimRight(h.cfg.ClientBaseURL, "/")+path, http.StatusSeeOther)
}

func (h *AuthHandler) setLoginCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(loginCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearLoginCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeReturnTo only allows paths on the client app. Anything else, including
// protocol-relative "//host" and absolute URLs, becomes "/".
func safeReturnTo(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
