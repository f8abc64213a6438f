package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
	"github.com/jsamuelsen11/health-aggregator/internal/ports"
)

// DefaultTimeout bounds a single check when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// TimeoutProvider is implemented by checkers that carry their own deadline
// (for example an upstream with a configured timeout). It takes precedence
// over the aggregator-wide default.
type TimeoutProvider interface {
	CheckTimeout() time.Duration
}

// DeadlineChecker bounds every Check of the wrapped checker.
type DeadlineChecker struct {
	next    ports.HealthChecker
	timeout time.Duration
}

// WithDeadline wraps checker so that each Check returns within timeout.
//
// The wrapped check runs in its own goroutine. If it has not produced a
// verdict when the deadline elapses, an Unhealthy verdict naming the timeout
// is returned and the late verdict is discarded. A panic inside the wrapped
// check is converted into an Unhealthy verdict.
//
// If checker implements [TimeoutProvider] with a positive value, that value
// replaces timeout. A non-positive timeout falls back to [DefaultTimeout].
//
// The bound also honors an earlier deadline already on the Check context, so
// a caller can start the clock before the check gets to run. A context that
// is already done yields the timeout verdict without invoking the checker.
func WithDeadline(checker ports.HealthChecker, timeout time.Duration) *DeadlineChecker {
	if tp, ok := checker.(TimeoutProvider); ok && tp.CheckTimeout() > 0 {
		timeout = tp.CheckTimeout()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DeadlineChecker{next: checker, timeout: timeout}
}

// Name returns the wrapped checker's name.
func (d *DeadlineChecker) Name() string {
	return d.next.Name()
}

// CheckTimeout reports the effective bound.
func (d *DeadlineChecker) CheckTimeout() time.Duration {
	return d.timeout
}

// Check runs the wrapped check under the deadline.
func (d *DeadlineChecker) Check(ctx context.Context) domain.ComponentHealth {
	name := d.next.Name()
	if err := ctx.Err(); err != nil {
		return timeoutVerdict(name, d.timeout, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Buffered so the goroutine never blocks once the verdict is abandoned.
	done := make(chan domain.ComponentHealth, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- domain.Unhealthy(name, fmt.Sprintf("Health check panicked: %v", v))
			}
		}()
		done <- d.next.Check(ctx)
	}()

	select {
	case res := <-done:
		if res.Name == "" {
			res.Name = name
		}
		return res
	case <-ctx.Done():
		return timeoutVerdict(name, d.timeout, ctx.Err())
	}
}

// timeoutVerdict builds the verdict for a check abandoned at its deadline or
// by cancellation of the inbound request.
func timeoutVerdict(name string, timeout time.Duration, err error) domain.ComponentHealth {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Unhealthy(name, fmt.Sprintf("Health check timed out after %s", timeout))
	}
	return domain.Unhealthy(name, fmt.Sprintf("Health check canceled: %v", err))
}
