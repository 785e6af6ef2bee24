package middleware

import (
	"encoding/json"
	"net/http"
)

// Error types used in JSON error bodies.
const (
	ErrorTypeBadRequest        = "bad_request"
	ErrorTypeNotFound          = "not_found"
	ErrorTypeBusy              = "busy"
	ErrorTypeEmptyInput        = "empty_input"
	ErrorTypeRenderFailure     = "render_failure"
	ErrorTypeSourceUnavailable = "source_unavailable"
	ErrorTypeInternal          = "internal_error"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WriteError writes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{Type: errType, Message: message},
	})
}
