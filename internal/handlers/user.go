package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crucial707/hci-accounts/internal/auth"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Service *auth.Service
	Log     *slog.Logger
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		log := h.Log
		if log == nil {
			log = slog.Default()
		}
		writeAccountError(w, r, log, "list users", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}
