package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/dto"
)

// RootHandler serves the service banner on GET /.
type RootHandler struct {
	serviceName string
}

// NewRootHandler creates a RootHandler reporting serviceName.
func NewRootHandler(serviceName string) *RootHandler {
	return &RootHandler{serviceName: serviceName}
}

// Welcome handles GET /.
func (h *RootHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.WelcomeResponse{
		Message: "Welcome to " + h.serviceName,
		Service: h.serviceName,
	})
}
