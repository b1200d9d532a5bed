package subscribers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/keepup/pkg/observability"
)

// DefaultActivityCapacity is the default number of remembered events.
const DefaultActivityCapacity = 50

// Activity is one observed habits event.
type Activity struct {
	RoutingKey    string
	OccurredAt    time.Time
	CorrelationID string
	Wallet        string
}

// ActivitySubscriber logs every habits event and remembers the most recent ones.
type ActivitySubscriber struct {
	logger   *slog.Logger
	metrics  observability.Metrics
	capacity int

	mu     sync.Mutex
	recent []Activity
}

// NewActivitySubscriber creates a new activity subscriber.
func NewActivitySubscriber(logger *slog.Logger, metrics observability.Metrics, capacity int) *ActivitySubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivitySubscriber{
		logger:   logger,
		metrics:  metrics,
		capacity: capacity,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *ActivitySubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeySnapshotSettled,
		domain.RoutingKeySnapshotFailed,
		domain.RoutingKeyTransactionConfirmed,
	}
}

// Handle records the event.
func (s *ActivitySubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	s.logger.DebugContext(ctx, "habits event",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID.String(),
		"correlation_id", event.Metadata.CorrelationID,
	)
	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, Activity{
		RoutingKey:    event.RoutingKey,
		OccurredAt:    event.OccurredAt,
		CorrelationID: event.Metadata.CorrelationID,
		Wallet:        event.Metadata.Wallet,
	})
	if over := len(s.recent) - s.capacity; over > 0 {
		s.recent = append([]Activity(nil), s.recent[over:]...)
	}
	return nil
}

// Recent returns the remembered events, oldest first.
func (s *ActivitySubscriber) Recent() []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Activity(nil), s.recent...)
}
