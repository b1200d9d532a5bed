package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and records it under a metric name.
type Timer struct {
	metric    string
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
	tags      []Tag
}

// StartTimer starts timing operation; the duration is recorded under metric.
func StartTimer(metric, operation string) *Timer {
	return &Timer{
		metric:    metric,
		operation: operation,
		start:     time.Now(),
	}
}

// WithLogger logs the outcome at debug level on stop.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics sets the metrics sink.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags adds tags to the recorded metric.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records a successful operation.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the duration tagged with outcome ok or error.
func (t *Timer) StopWithError(err error) time.Duration {
	duration := time.Since(t.start)

	if t.logger != nil {
		t.logger.Debug("operation finished",
			OperationKey, t.operation,
			DurationKey, duration.Milliseconds(),
			ErrorKey, err,
		)
	}

	if t.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		tags := append(append([]Tag(nil), t.tags...), T("operation", t.operation), T("outcome", outcome))
		t.metrics.Timing(t.metric, duration, tags...)
	}

	return duration
}
