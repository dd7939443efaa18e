package handler

// RESPONSE ENVELOPE:
// Every API response has the same shape, success or failure:
//
//	{"success": true,  "data": {...}}
//	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}}
//
// There are no other variants — no partial success, no warnings list. The
// frontend can always branch on the one boolean and the one error code.
//
// writeData/writeError are the only two ways handlers produce output, which
// keeps the envelope impossible to get wrong in any single handler.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snipvault/internal/apperror"
)

// envelope is the uniform top-level response shape.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

// errorBody is the structured error inside a failure envelope.
type errorBody struct {
	Code    string `json:"code"`    // machine-readable, e.g. "NOT_FOUND"
	Message string `json:"message"` // human-readable description
}

// writeData sends a success envelope with the given status code.
//
// Headers and status must be written before the body — once Encode calls
// w.Write, the headers are flushed and further changes are ignored.
func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		// Headers are already gone; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to its HTTP status and error code.
//
// The service layer returns apperror sentinels; errors.Is walks the wrap
// chain (AppError implements Unwrap), so wrapping with fmt.Errorf("...: %w")
// along the way doesn't break the mapping. Anything unrecognized becomes a
// generic 500 — raw internal error text (SQL, file paths) never reaches the
// client.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message

		switch {
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			code = "UNAUTHORIZED"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			code = "NOT_FOUND"
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			code = "VALIDATION_ERROR"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			code = "CONFLICT"
		default:
			message = "an internal error occurred"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &errorBody{Code: code, Message: message},
	}); encErr != nil {
		slog.Error("failed to encode error response", slog.String("error", encErr.Error()))
	}
}
