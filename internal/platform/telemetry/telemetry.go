// Package telemetry provides OpenTelemetry tracer and meter initialization
// with support for stdout (development), OTLP/HTTP (push) and Prometheus
// (pull) exporters.
//
// Tracer initialization:
//
//	tp, err := telemetry.InitTracer(ctx, "health-aggregator", telemetry.ExporterStdout, "")
//	defer tp.Shutdown(ctx)
//
// Meter initialization:
//
//	mp, err := telemetry.InitMeter(ctx, "health-aggregator", telemetry.ExporterPrometheus, "")
//	defer mp.Shutdown(ctx)
//
// Pre-registered metrics:
//
//	metrics, err := telemetry.NewMetrics(mp, "health-aggregator")
//	metrics.HealthCheckTotal.Add(ctx, 1, ...)
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// Supported exporter names.
const (
	ExporterStdout     = "stdout"
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
)

var (
	// ErrUnsupportedExporter is returned for an exporter name outside the
	// supported set.
	ErrUnsupportedExporter = errors.New("telemetry: unsupported exporter")

	// ErrMissingEndpoint is returned when the otlp exporter has no collector URL.
	ErrMissingEndpoint = errors.New("telemetry: otlp exporter requires an endpoint")
)

// Attribute keys for metric labels.
var (
	AttrHTTPMethod   = attribute.Key("http.method")
	AttrHTTPStatus   = attribute.Key("http.status_code")
	AttrHTTPRoute    = attribute.Key("http.route")
	AttrPeerService  = attribute.Key("peer.service")
	AttrResult       = attribute.Key("result")
	AttrComponent    = attribute.Key("health.component")
	AttrHealthStatus = attribute.Key("health.status")
)

// Metrics holds pre-registered OpenTelemetry metric instruments.
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	ClientRequestDuration metric.Float64Histogram
	ClientRequestTotal    metric.Int64Counter
	HealthCheckDuration   metric.Float64Histogram
	HealthCheckTotal      metric.Int64Counter
}

// InitTracer creates and registers a global TracerProvider.
//
// The exporter parameter selects the span exporter: "otlp" uses OTLP/HTTP
// with the given endpoint and "stdout" uses a pretty-printed stdout exporter
// for development. "prometheus" has no span format, so spans are sampled for
// context propagation but not exported.
//
// The returned TracerProvider must be shut down when the application exits.
func InitTracer(ctx context.Context, serviceName, exporter, endpoint string) (*sdktrace.TracerProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if exporter != ExporterPrometheus {
		spanExporter, err := newSpanExporter(ctx, exporter, endpoint)
		if err != nil {
			return nil, fmt.Errorf("creating span exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(spanExporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// InitMeter creates and registers a global MeterProvider.
//
// The exporter parameter selects the metric reader: "otlp" pushes over
// OTLP/HTTP to the given endpoint, "stdout" pushes periodically to stdout,
// and "prometheus" registers a pull collector with the default Prometheus
// registry (serve it with [MetricsHandler]).
//
// The returned MeterProvider must be shut down when the application exits.
func InitMeter(ctx context.Context, serviceName, exporter, endpoint string) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	reader, err := newMetricReader(ctx, exporter, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating metric reader: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// MetricsHandler serves the default Prometheus registry. It only carries
// service metrics when the meter was initialized with [ExporterPrometheus].
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// NewMetrics registers the service's instruments on mp under a meter named
// after the service.
func NewMetrics(mp metric.MeterProvider, serviceName string) (*Metrics, error) {
	meter := mp.Meter(serviceName)
	m := &Metrics{}

	histograms := []struct {
		dst         *metric.Float64Histogram
		name, about string
	}{
		{&m.ServerRequestDuration, "http.server.request.duration", "Duration of inbound HTTP requests"},
		{&m.ClientRequestDuration, "http.client.request.duration", "Duration of upstream probes"},
		{&m.HealthCheckDuration, "health.check.duration", "Duration of individual component health checks"},
	}
	for _, h := range histograms {
		inst, err := meter.Float64Histogram(h.name, metric.WithDescription(h.about), metric.WithUnit("s"))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", h.name, err)
		}
		*h.dst = inst
	}

	counters := []struct {
		dst               *metric.Int64Counter
		name, about, unit string
	}{
		{&m.ServerRequestTotal, "http.server.request.total", "Inbound HTTP requests by route and result", "{request}"},
		{&m.ClientRequestTotal, "http.client.request.total", "Upstream probes by outcome", "{request}"},
		{&m.HealthCheckTotal, "health.check.total", "Component health checks by verdict", "{check}"},
	}
	for _, c := range counters {
		inst, err := meter.Int64Counter(c.name, metric.WithDescription(c.about), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", c.name, err)
		}
		*c.dst = inst
	}

	return m, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newSpanExporter(ctx context.Context, exporter, endpoint string) (sdktrace.SpanExporter, error) {
	switch exporter {
	case ExporterOTLP:
		host, insecure, err := collector(endpoint)
		if err != nil {
			return nil, err
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(host)}
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExporter, exporter)
	}
}

func newMetricReader(ctx context.Context, exporter, endpoint string) (sdkmetric.Reader, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	switch exporter {
	case ExporterPrometheus:
		return otelprom.New()
	case ExporterOTLP:
		host, insecure, cerr := collector(endpoint)
		if cerr != nil {
			return nil, cerr
		}
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(host)}
		if insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err = otlpmetrichttp.New(ctx, opts...)
	case ExporterStdout:
		exp, err = stdoutmetric.New()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExporter, exporter)
	}
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}

// collector splits a collector URL into the host:port the OTLP exporters
// expect and whether the connection is plaintext. A bare "host:port" is
// accepted and treated as plaintext.
func collector(endpoint string) (host string, insecure bool, err error) {
	if endpoint == "" {
		return "", false, ErrMissingEndpoint
	}
	u, perr := url.Parse(endpoint)
	if perr != nil || u.Host == "" {
		return endpoint, true, nil
	}
	return u.Host, u.Scheme != "https", nil
}
