package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/pkg/observability"
)

var (
	// ErrStale is returned to callers whose fetch was overtaken by a subject change.
	ErrStale = errors.New("refresh result is stale")
	// ErrClosed is returned once the coordinator has been closed.
	ErrClosed = errors.New("refresh coordinator closed")
)

// State is the lifecycle of the current subject's data.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateSettled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Trigger names why a refresh was requested.
type Trigger string

const (
	TriggerSubjectChanged       Trigger = "subject_changed"
	TriggerUserRequested        Trigger = "user_requested"
	TriggerTransactionConfirmed Trigger = "transaction_confirmed"
	TriggerInterval             Trigger = "interval"
)

// Status describes the coordinator at one instant.
type Status struct {
	State      State
	Subject    domain.Subject
	Generation uint64
	LastError  error
	SettledAt  time.Time
}

// SettledFunc receives every published snapshot.
type SettledFunc func(ctx context.Context, snap *Snapshot)

// FailedFunc receives every failed fetch of the current subject.
type FailedFunc func(ctx context.Context, subject domain.Subject, generation uint64, err error)

// fetch is one load of one generation. done closes when snap or err is final.
type fetch struct {
	gen     uint64
	subject domain.Subject
	trigger Trigger
	done    chan struct{}
	snap    *Snapshot
	err     error
}

func (f *fetch) finish(snap *Snapshot, err error) {
	f.snap, f.err = snap, err
	close(f.done)
}

// Coordinator owns the current subject and its latest snapshot. At most one
// fetch per generation runs at a time. Triggers arriving while one runs join
// it, except confirmed transactions, which collapse into a single follow-up
// fetch.
type Coordinator struct {
	loader  Loader
	clock   domain.Clock
	logger  *slog.Logger
	metrics observability.Metrics
	timeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	subject    domain.Subject
	generation uint64
	state      State
	lastErr    error
	settledAt  time.Time
	snapshot   *Snapshot
	inflight   *fetch
	queued     *fetch
	onSettled  []SettledFunc
	onFailed   []FailedFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used to derive the current day.
func WithClock(clock domain.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics observability.Metrics) Option {
	return func(c *Coordinator) { c.metrics = metrics }
}

// WithTimeout bounds each fetch. Zero means no bound beyond Close.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// NewCoordinator creates an idle coordinator with no subject.
func NewCoordinator(loader Loader, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		loader:  loader,
		clock:   domain.SystemClock{},
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		baseCtx: ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSettled registers a subscriber for published snapshots. Subscribers run
// on the fetch goroutine, after the snapshot is visible through Snapshot.
func (c *Coordinator) OnSettled(fn SettledFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSettled = append(c.onSettled, fn)
}

// OnFailed registers a subscriber for failed fetches.
func (c *Coordinator) OnFailed(fn FailedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFailed = append(c.onFailed, fn)
}

// SetSubject switches to subject. A different subject bumps the generation,
// discards the previous snapshot and, when the subject is ready, starts a
// fetch. Results of fetches for earlier generations are never published.
// The returned channel closes when the new subject's first fetch finishes;
// it is already closed when nothing was started.
func (c *Coordinator) SetSubject(subject domain.Subject) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return closedChan()
	}
	if subject == c.subject && c.generation > 0 {
		if c.inflight != nil {
			return c.inflight.done
		}
		return closedChan()
	}

	c.generation++
	c.subject = subject
	c.snapshot = nil
	c.lastErr = nil
	c.settledAt = time.Time{}
	c.state = StateIdle

	if c.queued != nil {
		c.queued.finish(nil, ErrStale)
		c.queued = nil
	}
	// The running fetch, if any, finds its generation outdated on completion.
	c.inflight = nil

	if subject.Ready() != nil {
		return closedChan()
	}
	return c.startLocked(TriggerSubjectChanged).done
}

// Trigger requests a refresh without waiting for it. The returned channel
// closes when the fetch serving this trigger finishes.
func (c *Coordinator) Trigger(trigger Trigger) <-chan struct{} {
	f, err := c.request(trigger)
	if err != nil {
		return closedChan()
	}
	return f.done
}

// Refresh requests a refresh and waits for it. It returns the published
// snapshot, the fetch error, ErrStale when the subject changed meanwhile, or
// the subject's precondition error when no fetch is possible.
func (c *Coordinator) Refresh(ctx context.Context, trigger Trigger) (*Snapshot, error) {
	f, err := c.request(trigger)
	if err != nil {
		return nil, err
	}
	select {
	case <-f.done:
		return f.snap, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) request(trigger Trigger) (*fetch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.subject.Ready(); err != nil {
		return nil, err
	}
	if c.inflight == nil {
		return c.startLocked(trigger), nil
	}
	// Only a confirmed transaction can postdate the running read.
	if trigger != TriggerTransactionConfirmed {
		return c.inflight, nil
	}
	if c.queued == nil {
		c.queued = &fetch{
			gen:     c.generation,
			subject: c.subject,
			trigger: trigger,
			done:    make(chan struct{}),
		}
	}
	return c.queued, nil
}

// startLocked must be called with mu held and no fetch in flight for the
// current generation.
func (c *Coordinator) startLocked(trigger Trigger) *fetch {
	f := &fetch{
		gen:     c.generation,
		subject: c.subject,
		trigger: trigger,
		done:    make(chan struct{}),
	}
	c.launchLocked(f)
	return f
}

func (c *Coordinator) launchLocked(f *fetch) {
	c.inflight = f
	c.state = StateFetching
	c.wg.Add(1)
	go c.run(f)
}

func (c *Coordinator) run(f *fetch) {
	defer c.wg.Done()

	ctx := c.baseCtx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	day := domain.CurrentDay(c.clock.Now())
	snap, err := c.loader.Load(ctx, f.subject, day)
	c.metrics.Timing(observability.MetricRefreshDuration, time.Since(start), observability.T("trigger", string(f.trigger)))

	c.mu.Lock()
	current := f.gen == c.generation && f.subject == c.subject
	var settled []SettledFunc
	var failed []FailedFunc
	switch {
	case c.closed:
		err = ErrClosed
		snap = nil
	case !current:
		err = ErrStale
		snap = nil
		c.metrics.Counter(observability.MetricRefreshStale, 1)
		c.logger.Debug("dropped stale refresh result", "generation", f.gen, "subject", f.subject.String())
	case err != nil:
		snap = nil
		c.state = StateFailed
		c.lastErr = err
		failed = append(failed, c.onFailed...)
		c.metrics.Counter(observability.MetricRefreshTotal, 1, observability.T("outcome", "failed"))
		c.logger.Warn("refresh failed", "subject", f.subject.String(), "trigger", string(f.trigger), "error", err)
	default:
		snap.Subject = f.subject
		snap.Generation = f.gen
		snap.Trigger = f.trigger
		snap.Day = day
		snap.SettledAt = c.clock.Now()
		c.snapshot = snap
		c.state = StateSettled
		c.lastErr = nil
		c.settledAt = snap.SettledAt
		settled = append(settled, c.onSettled...)
		c.metrics.Counter(observability.MetricRefreshTotal, 1, observability.T("outcome", "settled"))
	}
	c.mu.Unlock()

	f.finish(snap, err)

	for _, fn := range settled {
		fn(c.baseCtx, snap)
	}
	for _, fn := range failed {
		fn(c.baseCtx, f.subject, f.gen, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != f {
		return
	}
	c.inflight = nil
	if next := c.queued; next != nil {
		c.queued = nil
		if c.closed {
			next.finish(nil, ErrClosed)
			return
		}
		c.launchLocked(next)
	} else if c.state == StateFetching {
		c.state = StateIdle
	}
}

// Snapshot returns the latest settled snapshot of the current subject, or nil.
func (c *Coordinator) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Status returns the current state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:      c.state,
		Subject:    c.subject,
		Generation: c.generation,
		LastError:  c.lastErr,
		SettledAt:  c.settledAt,
	}
}

// Subject returns the current subject.
func (c *Coordinator) Subject() domain.Subject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subject
}

// LastSettled returns when a snapshot was last published, zero if never.
func (c *Coordinator) LastSettled() time.Time {
	return c.Status().SettledAt
}

// Close cancels running fetches and waits for their goroutines.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.queued != nil {
		c.queued.finish(nil, ErrClosed)
		c.queued = nil
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
