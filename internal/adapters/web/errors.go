package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"importops/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONBody encodes v on a response whose status line is already written.
func writeJSONBody(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

// isClientError reports whether err is a domain error the caller caused,
// as opposed to an unexpected failure worth logging.
func isClientError(err error) bool {
	var vErr *core.ValidationError
	var overErr *core.OverReceiptError
	return errors.As(err, &vErr) || errors.As(err, &overErr) ||
		errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrCodeContention)
}

// writeServiceError maps domain errors to HTTP status codes. Validation and
// over-receipt errors carry messages safe for the caller; anything unknown is
// masked as a generic 500 (serviceError has already logged it).
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, r, vErr.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
		return
	}
	var overErr *core.OverReceiptError
	if errors.As(err, &overErr) {
		writeError(w, r, overErr.Error(), "OVER_RECEIPT", http.StatusConflict)
		return
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrCodeContention):
		writeError(w, r, "busy generating record code, retry", "RETRY", http.StatusServiceUnavailable)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
