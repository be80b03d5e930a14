package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/hci-accounts/internal/telemetry"
)

// Pinger is satisfied by *db.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ==========================
// System Handler
// ==========================
type SystemHandler struct {
	Probe telemetry.Probe
	DB    Pinger
}

// ==========================
// Performance
// ==========================
func (h *SystemHandler) Performance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sample, err := h.Probe.Sample(ctx)
	if err != nil {
		slog.WarnContext(r.Context(), "performance probe failed", "error", err)
		JSONError(w, "could not fetch performance data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(telemetry.NewReport(sample))
}

// ==========================
// Health
// ==========================
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("ok"))
}
