package handlers

import (
	"net/http"

	"github.com/eshaffer321/travel-reconcile/internal/api/dto"
	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
)

// HealthHandler reports liveness along with the engine's matching setup.
type HealthHandler struct {
	*Base
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service *reconcile.Service) *HealthHandler {
	return &HealthHandler{Base: NewBase(service)}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse(
		h.service.DefaultStrategy(),
		h.service.RecordsRuns(),
		h.service.ActiveJobs(),
	))
}
