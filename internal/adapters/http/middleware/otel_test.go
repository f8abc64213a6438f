package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/telemetry"
)

// These tests replace the global TracerProvider and must not run in parallel.

func setupTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// routed mounts the middleware the way NewRouter does, via chi's Use.
func routed(metrics *telemetry.Metrics, code int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.OpenTelemetry(metrics))
	r.Get("/health", statusHandler(code).ServeHTTP)
	return r
}

func spanAttr(span tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOpenTelemetry_SpanNamedByRoute(t *testing.T) {
	exporter := setupTracer(t)

	serve(routed(nil, http.StatusOK), "/health")

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "HTTP GET /health" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "HTTP GET /health")
	}
	if v, ok := spanAttr(spans[0], telemetry.AttrHTTPRoute); !ok || v.AsString() != "/health" {
		t.Errorf("http.route = %v, want /health", v.AsString())
	}
	if v, _ := spanAttr(spans[0], telemetry.AttrHTTPStatus); v.AsInt64() != http.StatusOK {
		t.Errorf("http.status_code = %d, want %d", v.AsInt64(), http.StatusOK)
	}
}

func TestOpenTelemetry_UnmatchedRoute(t *testing.T) {
	exporter := setupTracer(t)

	serve(routed(nil, http.StatusOK), "/does-not-exist")

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "HTTP GET unmatched" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "HTTP GET unmatched")
	}
}

func TestOpenTelemetry_ServerErrorMarksSpan(t *testing.T) {
	exporter := setupTracer(t)

	serve(routed(nil, http.StatusServiceUnavailable), "/health")

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status.Code)
	}
}

func TestOpenTelemetry_ContinuesIncomingTrace(t *testing.T) {
	exporter := setupTracer(t)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	serve(routed(nil, http.StatusOK), "/health",
		"traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := spans[0].SpanContext.TraceID().String(); got != traceID {
		t.Errorf("trace id = %s, want %s", got, traceID)
	}
}

func TestOpenTelemetry_RecordsMetricsWithRoute(t *testing.T) {
	setupTracer(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := telemetry.NewMetrics(mp, "test")
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	h := routed(metrics, http.StatusServiceUnavailable)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || m.Name != "http.server.request.total" {
				continue
			}
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
				result, _ := dp.Attributes.Value(telemetry.AttrResult)
				if route.AsString() == "/health" && result.AsString() == "error" && dp.Value == 1 {
					found = true
				}
			}
		}
	}
	if !found {
		t.Errorf("no http.server.request.total point for route /health with result=error")
	}
}
