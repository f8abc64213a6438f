package middleware_test

import (
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/middleware"
)

func TestChain_FirstIsOutermost(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+">")
				next.ServeHTTP(w, r)
				order = append(order, "<"+name)
			})
		}
	}

	h := middleware.Chain(tag("a"), tag("b"), tag("c"))(statusHandler(http.StatusOK))
	serve(h, "/")

	want := []string{"a>", "b>", "c>", "<c", "<b", "<a"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestChain_NoMiddlewareIsIdentity(t *testing.T) {
	t.Parallel()

	rec := serve(middleware.Chain()(statusHandler(http.StatusTeapot)), "/")

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestChain_ServerPipeline(t *testing.T) {
	t.Parallel()

	pipeline := middleware.Chain(
		middleware.Recovery(discardLogger()),
		middleware.RequestID(),
		middleware.CorrelationID(),
		middleware.OpenTelemetry(nil),
		middleware.Logging(discardLogger()),
		middleware.Timeout(time.Second),
	)

	var sawRequestID, sawCorrelationID string
	h := pipeline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRequestID = middleware.RequestIDFromContext(r.Context())
		sawCorrelationID = middleware.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	rec := serve(h, "/health", "X-Request-ID", "probe-1")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if sawRequestID != "probe-1" || sawCorrelationID != "probe-1" {
		t.Errorf("ids = (%q, %q), want both %q", sawRequestID, sawCorrelationID, "probe-1")
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != "probe-1" {
		t.Errorf("X-Correlation-ID = %q, want %q", got, "probe-1")
	}
}
