package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/logging"
)

func TestLogging_CompletionLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := middleware.Logging(infoLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	serve(h, "/health")

	out := buf.String()
	for _, want := range []string{"level=INFO", "request completed", "method=GET", "path=/health", "status=200", "bytes=20"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "request started") {
		t.Error("request started must only be logged at DEBUG")
	}
}

func TestLogging_ServerErrorAtWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	serve(middleware.Logging(infoLogger(&buf))(statusHandler(http.StatusServiceUnavailable)), "/health")

	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("503 not logged at WARN:\n%s", buf.String())
	}
}

func TestLogging_QuietPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		code   int
		logged bool
	}{
		{"liveness ok is quiet", "/health/live", http.StatusOK, false},
		{"metrics ok is quiet", "/metrics", http.StatusOK, false},
		{"quiet path failing still logs", "/metrics", http.StatusInternalServerError, true},
		{"other paths log", "/health", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			mw := middleware.Logging(infoLogger(&buf), "/health/live", "/metrics")
			serve(mw(statusHandler(tt.code)), tt.path)

			if got := strings.Contains(buf.String(), "request completed"); got != tt.logged {
				t.Errorf("logged = %v, want %v:\n%s", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLogging_ContextLoggerCarriesIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := middleware.RequestID()(middleware.CorrelationID()(
		middleware.Logging(infoLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logging.FromContext(r.Context()).InfoContext(r.Context(), "aggregating")
			w.WriteHeader(http.StatusOK)
		})),
	))
	serve(h, "/health", "X-Request-ID", "req-42", "X-Correlation-ID", "corr-7")

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.Contains(line, "request_id=req-42") || !strings.Contains(line, "correlation_id=corr-7") {
			t.Errorf("line missing ids: %s", line)
		}
	}
}

func TestLogging_DebugHeadersRedacted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	serve(middleware.Logging(testLogger(&buf))(statusHandler(http.StatusOK)), "/",
		"Authorization", "Bearer secret-token",
		"Accept", "application/json",
	)

	out := buf.String()
	if !strings.Contains(out, "request started") {
		t.Fatalf("missing debug start line:\n%s", out)
	}
	if strings.Contains(out, "secret-token") {
		t.Errorf("authorization header leaked:\n%s", out)
	}
	if !strings.Contains(out, "headers.Accept=application/json") {
		t.Errorf("non-sensitive header missing:\n%s", out)
	}
}

func TestRedactHeaders(t *testing.T) {
	t.Parallel()

	headers := http.Header{
		"X-Api-Key":     {"k"},
		"Cookie":        {"session=1"},
		"Accept":        {"text/plain", "application/json"},
		"Authorization": {"Basic Zm9vOmJhcg=="},
	}

	attrs := middleware.RedactHeaders(headers)

	want := []slog.Attr{
		slog.String("Accept", "text/plain,application/json"),
		slog.String("Authorization", "[REDACTED]"),
		slog.String("Cookie", "[REDACTED]"),
		slog.String("X-Api-Key", "[REDACTED]"),
	}
	if len(attrs) != len(want) {
		t.Fatalf("got %d attrs, want %d", len(attrs), len(want))
	}
	for i := range want {
		if !attrs[i].Equal(want[i]) {
			t.Errorf("attr[%d] = %v, want %v", i, attrs[i], want[i])
		}
	}
}

func TestRedactHeaders_Empty(t *testing.T) {
	t.Parallel()

	if attrs := middleware.RedactHeaders(nil); len(attrs) != 0 {
		t.Errorf("got %d attrs for nil headers", len(attrs))
	}
}
