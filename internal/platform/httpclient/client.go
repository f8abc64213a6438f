// Package httpclient probes upstream HTTP dependencies. Each configured
// upstream gets a Client that guards its probes with a circuit breaker and an
// optional rate limiter, traces and meters every attempt, and forwards the
// inbound request and correlation IDs. The Client is itself a health checker.
//
// A probe passes through, in order:
//
//	Circuit Breaker → Rate Limiter → Header Injection → OTEL Span → HTTP
//
// Every call is a single attempt. A 5xx response or a transport error counts
// against the breaker; a canceled inbound request does not.
//
//	client := httpclient.New(&upstreamCfg, metrics, logger)
//	verdict := client.Check(ctx)
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/health-aggregator/internal/platform/config"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/telemetry"
)

const (
	tracerName = "github.com/jsamuelsen11/health-aggregator/internal/platform/httpclient"
	userAgent  = "health-aggregator/1 (+/health)"
)

type (
	requestIDKey     struct{}
	correlationIDKey struct{}
)

// WithRequestID stores the inbound request ID for forwarding as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithCorrelationID stores the inbound correlation ID for forwarding as
// X-Correlation-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

var (
	// ErrUpstreamStatus marks a 5xx response from an upstream.
	ErrUpstreamStatus = errors.New("upstream returned server error")

	// ErrRateLimited is returned when the limiter cannot grant a probe before
	// the context deadline. It does not count against the breaker.
	ErrRateLimited = errors.New("probe rate limit reached")
)

// Option customizes a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport, e.g. to share a connection pool
// between upstreams.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// Client probes one upstream.
type Client struct {
	name       string
	url        string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
	limiter    *rate.Limiter // nil when rate limiting is disabled
	tracer     trace.Tracer
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

// New creates a Client for cfg. The upstream name labels traces, metrics and
// the health component. A nil metrics skips metric recording and a nil logger
// discards output.
func New(cfg *config.UpstreamConfig, metrics *telemetry.Metrics, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("component", cfg.Name))

	c := &Client{
		name:       cfg.Name,
		url:        cfg.URL,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		metrics:    metrics,
		logger:     logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: toUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.CircuitBreaker.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrRateLimited)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	if cfg.RateLimit.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req through the probe pipeline.
//
// For any response below 500, resp is non-nil and the caller must close its
// body. A 5xx returns both resp and an error wrapping ErrUpstreamStatus. A
// breaker rejection, limiter refusal or transport error returns a nil resp.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	var resp *http.Response
	_, err := c.breaker.Execute(func() (struct{}, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return struct{}{}, fmt.Errorf("%w: %w", ErrRateLimited, err)
			}
		}

		c.injectHeaders(ctx, req)

		spanCtx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.name,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				telemetry.AttrHTTPMethod.String(req.Method),
				telemetry.AttrPeerService.String(c.name),
			),
		)
		defer span.End()
		otel.GetTextMapPropagator().Inject(spanCtx, propagation.HeaderCarrier(req.Header))

		sendErr := c.send(req.WithContext(spanCtx), &resp)

		if resp != nil {
			span.SetAttributes(telemetry.AttrHTTPStatus.Int(resp.StatusCode))
		}
		if sendErr != nil {
			span.RecordError(sendErr)
			span.SetStatus(codes.Error, sendErr.Error())
		}
		return struct{}{}, sendErr
	})

	c.record(ctx, req.Method, time.Since(start), resp, err)
	return resp, err
}

// send performs the round trip. The response is written through resp rather
// than returned so the bodyclose linter tracks ownership at the caller.
func (c *Client) send(req *http.Request, resp **http.Response) error {
	r, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	*resp = r
	if r.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", ErrUpstreamStatus, r.Status)
	}
	return nil
}

func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if id, _ := ctx.Value(requestIDKey{}).(string); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if id, _ := ctx.Value(correlationIDKey{}).(string); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
}

// outcome classifies a probe for the result metric label.
func outcome(resp *http.Response, err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case resp != nil && resp.StatusCode < http.StatusBadRequest:
		return "success"
	default:
		return "error"
	}
}

// record emits client metrics. It runs outside the breaker so rejected probes
// are counted too.
func (c *Client) record(ctx context.Context, method string, elapsed time.Duration, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrPeerService.String(c.name),
		telemetry.AttrResult.String(outcome(resp, err)),
	)
	c.metrics.ClientRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
	c.metrics.ClientRequestTotal.Add(ctx, 1, attrs)
}

// toUint32 clamps v into [0, MaxUint32].
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
