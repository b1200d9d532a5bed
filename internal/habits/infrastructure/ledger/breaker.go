package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the RPC circuit breaker.
type BreakerConfig struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "ledger-rpc",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker guards ledger RPCs with a circuit breaker and records their timing.
// A nil Breaker runs calls unguarded.
type Breaker struct {
	cb      *gobreaker.CircuitBreaker[any]
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewBreaker creates a new Breaker.
func NewBreaker(config BreakerConfig, metrics observability.Metrics, logger *slog.Logger) *Breaker {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Breaker{metrics: metrics, logger: logger}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ethereum.NotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			b.metrics.Gauge(observability.MetricBreakerState, float64(to), observability.T("breaker", name))
		},
	}
	b.cb = gobreaker.NewCircuitBreaker[any](settings)
	return b
}

// Do runs fn under the breaker. An open breaker fails fast with
// domain.ErrLedgerUnavailable.
func (b *Breaker) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	if b == nil {
		return fn(ctx)
	}

	timer := observability.StartTimer(observability.MetricRPCDuration, operation).
		WithMetrics(b.metrics).
		WithLogger(b.logger)
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	timer.StopWithError(err)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		b.metrics.Counter(observability.MetricRPCErrors, 1,
			observability.T("operation", operation), observability.T("reason", "breaker_open"))
		return fmt.Errorf("%w: %s: %v", domain.ErrLedgerUnavailable, operation, err)
	default:
		b.metrics.Counter(observability.MetricRPCErrors, 1,
			observability.T("operation", operation), observability.T("reason", "call_failed"))
		return err
	}
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	if b == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}
