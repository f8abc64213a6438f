package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/health"
	"github.com/jsamuelsen11/health-aggregator/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.HealthChecker    = (*Client)(nil)
	_ health.TimeoutProvider = (*Client)(nil)
)

// maxDrainBytes caps how much of a probe response body is read before close.
const maxDrainBytes = 4 << 10

// Name returns the upstream name (e.g., "billing").
func (c *Client) Name() string {
	return c.name
}

// CheckTimeout returns the upstream's configured timeout, which replaces the
// aggregator default for this component.
func (c *Client) CheckTimeout() time.Duration {
	return c.timeout
}

// Check issues one GET against the upstream URL.
//
// Verdict mapping:
//   - 2xx-4xx response with the breaker closed: healthy with response time.
//   - any response while the breaker was half-open: degraded, since the
//     upstream is still on probation.
//   - breaker open: unhealthy without a network call.
//   - limiter refusal: degraded, since nothing is known about the upstream.
//   - transport error or 5xx: unhealthy with the error text.
func (c *Client) Check(ctx context.Context) domain.ComponentHealth {
	recovering := c.breaker.State() == gobreaker.StateHalfOpen

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return domain.Unhealthy(c.name, err.Error())
	}

	start := time.Now()
	resp, err := c.Do(ctx, req)
	elapsed := time.Since(start)
	if resp != nil {
		_, _ = io.CopyN(io.Discard, resp.Body, maxDrainBytes)
		_ = resp.Body.Close()
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return domain.Unhealthy(c.name, "circuit breaker open")
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return domain.Degraded(c.name, "circuit breaker half-open, probe limit reached")
	case errors.Is(err, ErrRateLimited):
		return domain.Degraded(c.name, "probe skipped, rate limit reached")
	case err != nil:
		return domain.Unhealthy(c.name, err.Error())
	case recovering:
		return domain.Degraded(c.name, health.ResponseTime(elapsed)+" (circuit breaker recovering)")
	default:
		return domain.Healthy(c.name, health.ResponseTime(elapsed))
	}
}
