package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cluckhub/cluckhub/internal/domain"
)

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleServiceError converts a domain error into the matching JSON error
// response. Every handler funnels its failures through here, so nothing
// propagates unhandled: unknown errors surface as 500 with the message in
// the body.
func handleServiceError(w http.ResponseWriter, err error) {
	var (
		validation domain.ValidationError
		permission *domain.PermissionError
		notFound   *domain.ErrNotFound
		conflict   *domain.ErrAccountExists
	)

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.As(err, &validation):
		WriteJSONError(w, validation.Message, http.StatusBadRequest)
	case errors.As(err, &permission):
		WriteJSONError(w, permission.Message, http.StatusForbidden)
	case errors.As(err, &notFound):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &conflict):
		WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		WriteJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}
