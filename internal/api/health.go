package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fanclubkz/consultant/internal/store"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	repo      store.Repository
	aiEnabled bool
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(repo store.Repository, aiEnabled bool) *HealthHandler {
	return &HealthHandler{repo: repo, aiEnabled: aiEnabled}
}

// HandleHealth handles GET /api/health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	dbStatus := "ok"

	if err := h.repo.Ping(r.Context()); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	JSON(w, code, map[string]any{
		"status":     status,
		"database":   dbStatus,
		"ai_enabled": h.aiEnabled,
	})
}

// RegisterRoutes registers the health endpoint.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.HandleHealth)
}
