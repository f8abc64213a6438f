package dto

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
)

// ErrorResponse is an RFC 9457 problem document. Only transport-level
// failures use it: an unhealthy system is still reported with the regular
// health document and a 503.
type ErrorResponse struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// problemStatus maps domain sentinels to HTTP statuses. Errors outside this
// table are 500s whose text is not echoed to the client.
var problemStatus = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
	{domain.ErrTimeout, http.StatusGatewayTimeout},
}

// NewErrorResponse builds the problem document for err. Instance is the
// request path.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	resp := ErrorResponse{
		Type:     "about:blank",
		Status:   http.StatusInternalServerError,
		Instance: r.URL.Path,
	}
	for _, m := range problemStatus {
		if errors.Is(err, m.err) {
			resp.Status = m.status
			resp.Detail = err.Error()
			break
		}
	}
	resp.Title = http.StatusText(resp.Status)
	return resp
}

// WriteErrorResponse writes err as application/problem+json.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	resp := NewErrorResponse(r, err)

	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(resp.Status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}
