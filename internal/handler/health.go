package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker is anything with a cheap connectivity check.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	store  HealthChecker
	cache  HealthChecker
	logger *slog.Logger
}

// NewHealthHandler takes the active store and, when Redis is configured, the
// comic cache. Pass nil for cache otherwise.
func NewHealthHandler(store, cache HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, cache: cache, logger: logger}
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is serving. No dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every dependency and answers 503 if any of them fails. The
// response only says which check failed; the cause goes to the log.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": h.check(ctx, "database", h.store),
		"cache":    h.check(ctx, "cache", h.cache),
	}

	status, code := "ok", http.StatusOK
	for _, result := range checks {
		if result == "error" {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) check(ctx context.Context, name string, c HealthChecker) string {
	if c == nil {
		return "not configured"
	}
	if err := c.Ping(ctx); err != nil {
		h.logger.Error("readiness check failed",
			slog.String("check", name),
			slog.String("error", err.Error()),
		)
		return "error"
	}
	return "ok"
}
