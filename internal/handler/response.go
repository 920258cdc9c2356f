package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the client always
// sees the same error shape:
//
//	{"error": "not_found", "message": "list \"favorites\" not found"}

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/manga-match/internal/apperror"
)

// maxBodyBytes caps JSON request bodies. Every request body in this API is a
// single small object.
const maxBodyBytes = 1 << 16

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
	Field   string `json:"field,omitempty"`
}

// writeJSON sends data with the given status. Headers must be set before
// WriteHeader; anything set afterwards is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status.
//
// errors.As finds the *apperror.AppError anywhere in the chain, so services
// are free to wrap with fmt.Errorf("...: %w", err). Anything that is not an
// AppError is a storage or transport failure and is reported as an opaque
// 500; the raw message may contain SQL or connection details.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status, errorType := statusFor(err)
	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrOwnerUnknown):
		return http.StatusBadRequest, "owner_not_recognized"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal_error"
}

// decodeJSON reads a single JSON object from the request body into dst.
// An empty body leaves dst at its zero value so the service reports the
// missing field; malformed JSON is a validation error.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.ValidationFailed("body", "request body must be a valid JSON object")
	}
	return nil
}

// readBody decodes the request body into dst. On malformed JSON it logs the
// request, answers 400 and reports false; the handler should return.
func readBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		logger.Warn("invalid request body",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeError(w, err)
		return false
	}
	return true
}
