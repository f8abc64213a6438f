// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/handlers"
)

// Routes groups the handlers mounted by NewRouter. Metrics is optional and
// is only mounted when non-nil.
type Routes struct {
	Root    *handlers.RootHandler
	Health  *handlers.HealthHandler
	Metrics http.Handler
}

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(routes Routes, middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/", routes.Root.Welcome)

	r.Get("/health", routes.Health.Health)
	r.Get("/health/live", routes.Health.Liveness)

	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	return r
}
