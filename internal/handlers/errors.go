package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/hci-accounts/internal/models"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// Messages for the expected account outcomes.
const (
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "invalid credentials"
)

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// writeAccountError maps the account error taxonomy onto a response.
// Store failures are logged with their cause; the client only sees a generic message.
func writeAccountError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	var ve *models.ValidationError
	var se *models.StoreError
	switch {
	case errors.As(err, &ve):
		JSONValidationError(w, "validation failed", map[string]string{ve.Field: ve.Reason}, http.StatusBadRequest)
	case errors.Is(err, models.ErrDuplicateUsername):
		JSONError(w, MsgUserExists, http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidCredentials):
		JSONError(w, MsgInvalidCredentials, http.StatusUnauthorized)
	case errors.As(err, &se):
		log.ErrorContext(r.Context(), op+" failed",
			"request_id", chimw.GetReqID(r.Context()),
			"store_op", se.Op,
			"timeout", se.Timeout,
			"error", se.Err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	default:
		log.ErrorContext(r.Context(), op+" failed",
			"request_id", chimw.GetReqID(r.Context()),
			"error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}
