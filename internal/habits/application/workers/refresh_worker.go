// Package workers runs the long-lived refresh loop of the worker binary.
package workers

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// DefaultRefreshInterval is the default interval between refreshes.
const DefaultRefreshInterval = time.Minute

// Coordinator is the refresh coordinator as seen by the worker.
type Coordinator interface {
	Trigger(trigger refresh.Trigger) <-chan struct{}
	Status() refresh.Status
}

// SubjectResolver determines the subject and hands it to the coordinator.
type SubjectResolver func(ctx context.Context) (domain.Subject, error)

// RefreshWorker keeps the coordinator's snapshot fresh. Until the wallet has
// a deployed contract it retries resolution on every tick instead.
type RefreshWorker struct {
	coordinator Coordinator
	resolve     SubjectResolver
	interval    time.Duration
	logger      *slog.Logger
	running     atomic.Bool
	stopCh      chan struct{}
	stopOnce    sync.Once
	ready       bool
}

// NewRefreshWorker creates a new refresh worker.
func NewRefreshWorker(coordinator Coordinator, resolve SubjectResolver, interval time.Duration, logger *slog.Logger) *RefreshWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshWorker{
		coordinator: coordinator,
		resolve:     resolve,
		interval:    interval,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Run starts the worker and blocks until context is cancelled or Stop() is called.
func (w *RefreshWorker) Run(ctx context.Context) error {
	w.running.Store(true)
	defer w.running.Store(false)
	w.logger.Info("refresh worker started", "interval", w.interval)

	// Run immediately on start
	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("refresh worker stopped (context cancelled)")
			return ctx.Err()
		case <-w.stopCh:
			w.logger.Info("refresh worker stopped (stop signal)")
			return nil
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// Stop signals the worker to stop gracefully.
func (w *RefreshWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// IsRunning returns true if the worker is currently running.
func (w *RefreshWorker) IsRunning() bool {
	return w.running.Load()
}

func (w *RefreshWorker) runCycle(ctx context.Context) {
	if !w.ready {
		subject, err := w.resolve(ctx)
		if err == nil {
			err = subject.Ready()
		}
		if err != nil {
			w.logger.Warn("subject not ready, will retry", "error", err)
			return
		}
		w.ready = true
		w.logger.Info("tracking subject", "subject", subject.String())
		// Resolving already started the first fetch.
		return
	}

	w.await(ctx, w.coordinator.Trigger(refresh.TriggerInterval))
}

func (w *RefreshWorker) await(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-ctx.Done():
		return
	case <-w.stopCh:
		return
	}

	status := w.coordinator.Status()
	if status.LastError != nil {
		w.logger.Warn("refresh failed",
			"state", status.State.String(),
			"generation", status.Generation,
			"error", status.LastError,
		)
		return
	}
	w.logger.Debug("refresh settled",
		"generation", status.Generation,
		"settled_at", status.SettledAt,
	)
}
