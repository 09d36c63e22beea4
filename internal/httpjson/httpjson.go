// Package httpjson holds the JSON boundary shared by every handler: body
// decoding, input validation and error responses.
package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/magheya/lds-backend/internal/apperr"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an {"error": msg} body.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// Success writes the {"success": ok} body used by every mutation.
func Success(w http.ResponseWriter, ok bool) {
	WriteJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// Status maps err onto an HTTP status and a message safe to show clients.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, apperr.ErrSerialization),
		errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrUpload):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrConstraint):
		return http.StatusConflict, "Constraint violation"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// Error writes the response for err. Server errors are logged, and their
// message never reaches the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.DebugContext(r.Context(), "request rejected", "status", status, "error", err)
	}
	WriteError(w, status, msg)
}
