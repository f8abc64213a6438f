package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/dto"
	"github.com/jsamuelsen11/health-aggregator/internal/domain"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/logging"
)

// writeJSON writes v with the given status. Health answers describe the
// moment they were computed, so they are marked uncacheable.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode response",
			slog.Any("error", err),
		)
	}
}

// NotFound answers unknown routes with an RFC 9457 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	dto.WriteErrorResponse(w, r, fmt.Errorf("%w: %s", domain.ErrNotFound, r.URL.Path))
}

// MethodNotAllowed answers known routes hit with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	dto.WriteErrorResponse(w, r, fmt.Errorf("%w: %s %s", domain.ErrMethodNotAllowed, r.Method, r.URL.Path))
}
