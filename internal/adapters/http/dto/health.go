package dto

import (
	"net/http"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
)

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status     string              `json:"status"`
	Components []ComponentResponse `json:"components"`
	// Timestamp is the report time in whole seconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// ComponentResponse is one component verdict. Message is omitted when empty.
type ComponentResponse struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// LivenessResponse is the JSON body of GET /health/live.
type LivenessResponse struct {
	Status string `json:"status"`
}

// WelcomeResponse is the JSON body of GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
	Service string `json:"service"`
}

// ToHealthResponse converts a report into its wire form, preserving
// component order.
func ToHealthResponse(h domain.SystemHealth) HealthResponse {
	components := make([]ComponentResponse, 0, len(h.Components))
	for _, c := range h.Components {
		components = append(components, ComponentResponse{
			Name:    c.Name,
			Status:  c.Status.String(),
			Message: c.Message,
		})
	}

	return HealthResponse{
		Status:     h.Status.String(),
		Components: components,
		Timestamp:  h.Timestamp.Unix(),
	}
}

// HealthStatusCode maps the overall status to the HTTP status code:
// 200 while the system is serving (healthy or degraded), 503 otherwise.
func HealthStatusCode(h domain.SystemHealth) int {
	if h.Serving() {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
