package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/application/queries"
	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/application/services"
	"github.com/felixgeelhaar/keepup/internal/habits/application/subscribers"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/internal/habits/infrastructure/annotations"
	"github.com/felixgeelhaar/keepup/internal/habits/infrastructure/ledger"
	sharedApplication "github.com/felixgeelhaar/keepup/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/keepup/internal/shared/domain"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/keepup/pkg/config"
	"github.com/felixgeelhaar/keepup/pkg/observability"
	"github.com/google/uuid"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Ledger
	EthClient *ethclient.Client
	Breaker   *ledger.Breaker
	Binder    *ledger.Binder
	Directory *ledger.Directory
	Signer    *ecdsa.PrivateKey

	// Annotations
	Categories *annotations.CategoryStore
	Proofs     *annotations.ProofStore

	// Events
	EventPublisher     eventbus.Publisher
	InProcessEventBus  *eventbus.InProcessEventBus
	ActivitySubscriber *subscribers.ActivitySubscriber

	// Refresh
	Coordinator *refresh.Coordinator

	// Command Handlers
	Locks               *commands.InflightLocks
	Submitter           *commands.Submitter
	AddTaskHandler      *commands.AddTaskHandler
	CompleteTaskHandler *commands.CompleteTaskHandler
	RemoveTaskHandler   *commands.RemoveTaskHandler
	ClaimRewardHandler  *commands.ClaimRewardHandler
	SetCategoryHandler  *commands.SetCategoryHandler

	// Query Handlers
	GetTaskBoardHandler      *queries.GetTaskBoardHandler
	GetRewardsSummaryHandler *queries.GetRewardsSummaryHandler
	ListProofsHandler        *queries.ListProofsHandler

	store *annotationStore
}

type containerOptions struct {
	metrics observability.Metrics
	clock   domain.Clock
}

// Option configures NewContainer.
type Option func(*containerOptions)

// WithMetrics sets the metrics sink shared by every component.
func WithMetrics(metrics observability.Metrics) Option {
	return func(o *containerOptions) { o.metrics = metrics }
}

// WithClock sets the clock used for day numbers and proof dates.
func WithClock(clock domain.Clock) Option {
	return func(o *containerOptions) { o.clock = clock }
}

// NewContainer creates a new dependency container. The coordinator starts
// without a subject; call ResolveSubject to bind one.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := containerOptions{
		metrics: observability.NoopMetrics{},
		clock:   domain.SystemClock{},
	}
	for _, opt := range opts {
		opt(&options)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: options.metrics,
		Health:  observability.NewHealthRegistry(),
	}

	// Signing key is optional; reads work without one.
	if cfg.PrivateKey != "" {
		key, err := ledger.ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		c.Signer = key
	}

	// Ledger RPC
	client, err := ledger.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, err
	}
	c.EthClient = client
	c.Breaker = ledger.NewBreaker(ledger.BreakerConfig{
		Name:             "ledger-rpc",
		MaxRequests:      convert.IntToUint32Clamped(cfg.BreakerMaxRequests),
		Interval:         cfg.BreakerInterval,
		Timeout:          cfg.BreakerTimeout,
		FailureThreshold: convert.IntToUint32Clamped(cfg.BreakerFailureThreshold),
	}, c.Metrics, logger)
	c.Binder = ledger.NewBinder(ledger.BinderConfig{
		Backend:      client,
		Breaker:      c.Breaker,
		ChainID:      big.NewInt(cfg.ChainID),
		Key:          c.Signer,
		PollInterval: cfg.ConfirmPollInterval,
	})
	c.Directory = ledger.NewDirectory(cfg.Factory(), client, c.Breaker)
	c.Health.Register("ledger", observability.PingChecker("ledger", observability.HealthStatusUnhealthy, func(ctx context.Context) error {
		_, err := client.BlockNumber(ctx)
		return err
	}))

	// Annotation store
	store, err := openAnnotationStore(ctx, cfg, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.store = store
	c.Categories = annotations.NewCategoryStore(store.backend, logger, c.Metrics)
	c.Proofs = annotations.NewProofStore(store.backend, logger, c.Metrics)
	c.Health.Register("annotations", observability.PingChecker("annotations", observability.HealthStatusDegraded, store.ping))

	// Event publisher: RabbitMQ when configured, in-process otherwise.
	c.ActivitySubscriber = subscribers.NewActivitySubscriber(logger, c.Metrics, subscribers.DefaultActivityCapacity)
	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	// Refresh
	reconciler := services.NewReconciler(c.Binder, c.Categories, logger, cfg.StatusConcurrency)
	history := services.NewRewardHistoryResolver(c.Binder)
	loader := refresh.NewLedgerLoader(c.Binder, reconciler, history, logger)
	c.Coordinator = refresh.NewCoordinator(loader,
		refresh.WithClock(options.clock),
		refresh.WithLogger(logger),
		refresh.WithMetrics(c.Metrics),
		refresh.WithTimeout(cfg.RPCTimeout),
	)
	c.Coordinator.OnSettled(c.publishSettled)
	c.Coordinator.OnFailed(c.publishFailed)

	// Commands
	c.Locks = commands.NewInflightLocks()
	c.Submitter = commands.NewSubmitter(c.Binder, c.Coordinator, c.EventPublisher, c.Metrics, logger)
	c.AddTaskHandler = commands.NewAddTaskHandler(c.Submitter, c.Coordinator, c.Binder, c.Categories, c.Locks, logger)
	c.CompleteTaskHandler = commands.NewCompleteTaskHandler(c.Submitter, c.Coordinator, c.Proofs, c.Locks, options.clock, logger)
	c.RemoveTaskHandler = commands.NewRemoveTaskHandler(c.Submitter, c.Coordinator, c.Categories, c.Proofs, c.Locks, logger)
	c.ClaimRewardHandler = commands.NewClaimRewardHandler(c.Submitter, c.Coordinator, c.Binder, c.Locks, options.clock)
	c.SetCategoryHandler = commands.NewSetCategoryHandler(c.Categories)

	// Queries
	c.GetTaskBoardHandler = queries.NewGetTaskBoardHandler(c.Coordinator, c.Categories, c.Proofs)
	c.GetRewardsSummaryHandler = queries.NewGetRewardsSummaryHandler(c.Coordinator)
	c.ListProofsHandler = queries.NewListProofsHandler(c.Proofs)

	logger.Debug("container ready",
		"chain_id", cfg.ChainID,
		"store", store.driver,
		"signer", c.Signer != nil,
	)
	return c, nil
}

func (c *Container) initPublisher() error {
	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
			c.Health.Register("broker", observability.PingChecker("broker", observability.HealthStatusDegraded, publisher.Ping))
			return nil
		}
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
	}

	bus := eventbus.NewInProcessEventBus(c.Logger)
	bus.RegisterConsumer(c.ActivitySubscriber)
	c.InProcessEventBus = bus
	c.EventPublisher = bus
	return nil
}

// Wallet returns the configured wallet, or the signer's address when no
// wallet is configured.
func (c *Container) Wallet() common.Address {
	if wallet := c.Config.Wallet(); wallet != (common.Address{}) {
		return wallet
	}
	if c.Signer != nil {
		return ledger.KeyAddress(c.Signer)
	}
	return common.Address{}
}

// ResolveSubject determines the wallet and user contract and hands them to
// the coordinator, which starts the first fetch.
func (c *Container) ResolveSubject(ctx context.Context) (domain.Subject, error) {
	wallet := c.Wallet()

	var (
		subject domain.Subject
		err     error
	)
	if contract := c.Config.Contract(); contract != (common.Address{}) {
		subject = domain.Subject{Wallet: wallet, Contract: contract}
		if !subject.HasWallet() {
			err = domain.ErrWalletNotConnected
		}
	} else {
		subject, err = domain.ResolveSubject(ctx, c.Directory, wallet)
	}
	if err != nil {
		return subject, err
	}

	c.Coordinator.SetSubject(subject)
	c.Logger.DebugContext(ctx, "subject resolved",
		"wallet", subject.Wallet.Hex(),
		"contract", subject.Contract.Hex(),
		"deployed", subject.HasDeployment(),
	)
	return subject, nil
}

func (c *Container) publishSettled(ctx context.Context, snap *refresh.Snapshot) {
	event := domain.NewSnapshotSettled(
		snap.Subject,
		snap.Generation,
		len(snap.Board.ActiveTasks),
		snap.Board.CompletedCount(),
		snap.Streak.CurrentStreak,
		snap.Pending,
		snap.History.LifetimeTotal,
	)
	c.publish(ctx, snap.Subject, event)
}

func (c *Container) publishFailed(ctx context.Context, subject domain.Subject, generation uint64, err error) {
	c.publish(ctx, subject, domain.NewSnapshotFailed(subject, generation, err))
}

func (c *Container) publish(ctx context.Context, subject domain.Subject, event sharedDomain.DomainEvent) {
	correlationID, _ := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	events := []sharedDomain.DomainEvent{event}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(subject.Wallet.Hex(), correlationID))

	if err := eventbus.PublishEvents(ctx, c.EventPublisher, events...); err != nil {
		c.Logger.WarnContext(ctx, "failed to publish event", "routing_key", event.RoutingKey(), "error", err)
		return
	}
	c.Metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.Coordinator != nil {
		c.Coordinator.Close()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.store != nil {
		c.store.close(c.Logger)
	}

	if c.EthClient != nil {
		c.EthClient.Close()
		c.Logger.Debug("ledger connection closed")
	}
}
