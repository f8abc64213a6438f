package telemetry_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jsamuelsen11/health-aggregator/internal/platform/telemetry"
)

// Tests below replace the global providers, so they do not run in parallel
// with each other.

func TestInitTracer_Exporters(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		endpoint string
	}{
		{"stdout", telemetry.ExporterStdout, ""},
		{"otlp url", telemetry.ExporterOTLP, "http://localhost:4318"},
		{"otlp host port", telemetry.ExporterOTLP, "localhost:4318"},
		{"prometheus has no span exporter", telemetry.ExporterPrometheus, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			tp, err := telemetry.InitTracer(ctx, "health-aggregator", tt.exporter, tt.endpoint)
			if err != nil {
				t.Fatalf("InitTracer(%s) error = %v", tt.exporter, err)
			}
			// No collector runs under test, so the otlp flush may fail.
			t.Cleanup(func() { _ = tp.Shutdown(ctx) })

			if otel.GetTracerProvider() != tp {
				t.Error("InitTracer did not install the global TracerProvider")
			}
		})
	}
}

func TestInitTracer_InstallsTraceContextAndBaggage(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.InitTracer(ctx, "health-aggregator", telemetry.ExporterStdout, "")
	if err != nil {
		t.Fatalf("InitTracer error = %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	fields := strings.Join(otel.GetTextMapPropagator().Fields(), ",")
	for _, want := range []string{"traceparent", "baggage"} {
		if !strings.Contains(fields, want) {
			t.Errorf("propagator fields = %q, want %q", fields, want)
		}
	}
}

func TestInit_RejectsBadExporterConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exporter string
		endpoint string
		want     error
	}{
		{"unknown exporter", "jaeger", "", telemetry.ErrUnsupportedExporter},
		{"otlp without endpoint", telemetry.ExporterOTLP, "", telemetry.ErrMissingEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			if _, err := telemetry.InitTracer(ctx, "health-aggregator", tt.exporter, tt.endpoint); !errors.Is(err, tt.want) {
				t.Errorf("InitTracer error = %v, want %v", err, tt.want)
			}
			if _, err := telemetry.InitMeter(ctx, "health-aggregator", tt.exporter, tt.endpoint); !errors.Is(err, tt.want) {
				t.Errorf("InitMeter error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInitMeter_Exporters(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		endpoint string
	}{
		{"stdout", telemetry.ExporterStdout, ""},
		{"otlp", telemetry.ExporterOTLP, "https://collector.example:4318"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			mp, err := telemetry.InitMeter(ctx, "health-aggregator", tt.exporter, tt.endpoint)
			if err != nil {
				t.Fatalf("InitMeter(%s) error = %v", tt.exporter, err)
			}
			t.Cleanup(func() { _ = mp.Shutdown(ctx) })

			if otel.GetMeterProvider() != mp {
				t.Error("InitMeter did not install the global MeterProvider")
			}
		})
	}
}

func TestNewMetrics_RegistersInstruments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	metrics, err := telemetry.NewMetrics(mp, "health-aggregator")
	if err != nil {
		t.Fatalf("NewMetrics error = %v", err)
	}

	metrics.ServerRequestDuration.Record(ctx, 0.01)
	metrics.ServerRequestTotal.Add(ctx, 1)
	metrics.ClientRequestDuration.Record(ctx, 0.02)
	metrics.ClientRequestTotal.Add(ctx, 1)
	metrics.HealthCheckDuration.Record(ctx, 0.03)
	metrics.HealthCheckTotal.Add(ctx, 1)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect error = %v", err)
	}

	got := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != "health-aggregator" {
			t.Errorf("meter scope = %q, want health-aggregator", sm.Scope.Name)
		}
		for _, m := range sm.Metrics {
			got[m.Name] = true
		}
	}

	for _, name := range []string{
		"http.server.request.duration",
		"http.server.request.total",
		"http.client.request.duration",
		"http.client.request.total",
		"health.check.duration",
		"health.check.total",
	} {
		if !got[name] {
			t.Errorf("instrument %q not collected", name)
		}
	}
}

func TestInitMeter_PrometheusServesMetrics(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.InitMeter(ctx, "health-aggregator", telemetry.ExporterPrometheus, "")
	if err != nil {
		t.Fatalf("InitMeter(prometheus) error = %v", err)
	}
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	metrics, err := telemetry.NewMetrics(mp, "health-aggregator")
	if err != nil {
		t.Fatalf("NewMetrics error = %v", err)
	}
	metrics.HealthCheckTotal.Add(ctx, 1)

	rec := httptest.NewRecorder()
	telemetry.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "health_check_total") {
		t.Errorf("metrics output missing health_check_total:\n%s", rec.Body.String())
	}
}
