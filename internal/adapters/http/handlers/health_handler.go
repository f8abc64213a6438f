package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/dto"
	"github.com/jsamuelsen11/health-aggregator/internal/ports"
)

const statusAlive = "alive"

// HealthHandler exposes the aggregated health report and process liveness.
type HealthHandler struct {
	service ports.HealthService
}

// NewHealthHandler creates a new HealthHandler backed by the given service.
func NewHealthHandler(service ports.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health handles GET /health. It runs one aggregation bound to the request
// context and responds 200 for healthy or degraded, 503 for unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.service.Aggregate(r.Context())
	writeJSON(w, r, dto.HealthStatusCode(report), dto.ToHealthResponse(report))
}

// Liveness handles GET /health/live. Always returns 200 OK without
// consulting any component.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.LivenessResponse{Status: statusAlive})
}
