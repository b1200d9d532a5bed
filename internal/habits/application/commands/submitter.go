package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	sharedApplication "github.com/felixgeelhaar/keepup/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/keepup/internal/shared/domain"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/keepup/pkg/observability"
	"github.com/google/uuid"
)

// TxResult is the outcome of a confirmed ledger write.
type TxResult struct {
	TransactionID common.Hash
	Receipt       *domain.Receipt
	// Snapshot is the refreshed state, nil when the follow-up refresh failed.
	Snapshot *refresh.Snapshot
}

// Submitter sends a write, waits for it to be mined, announces it and
// refreshes the read model.
type Submitter struct {
	writers   WriterBinder
	refresher Refresher
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewSubmitter creates a new Submitter.
func NewSubmitter(writers WriterBinder, refresher Refresher, publisher eventbus.Publisher, metrics observability.Metrics, logger *slog.Logger) *Submitter {
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		writers:   writers,
		refresher: refresher,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

type sendFunc func(ctx context.Context, w domain.LedgerWriter) (common.Hash, error)

// Submit runs send against subject's contract. Submission and confirmation
// errors are returned wrapped; announcing and refreshing only log.
func (s *Submitter) Submit(ctx context.Context, subject domain.Subject, action ActionKind, taskID string, send sendFunc) (*TxResult, error) {
	ctx = observability.WithWallet(ctx, subject.Wallet.Hex())
	tags := []observability.Tag{observability.T("action", string(action))}

	writer, err := s.writers.Writer(subject.Contract)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger writer: %w", err)
	}

	hash, err := send(ctx, writer)
	if err != nil {
		s.metrics.Counter(observability.MetricTxFailed, 1, tags...)
		return nil, fmt.Errorf("failed to submit %s transaction: %w", action, err)
	}
	s.metrics.Counter(observability.MetricTxSubmitted, 1, tags...)
	s.logger.InfoContext(ctx, "transaction submitted", "action", string(action), "task_id", taskID, "tx", hash.Hex())

	receipt, err := writer.AwaitConfirmation(ctx, hash)
	if err != nil {
		s.metrics.Counter(observability.MetricTxFailed, 1, tags...)
		return nil, fmt.Errorf("failed to confirm %s transaction %s: %w", action, hash.Hex(), err)
	}
	s.metrics.Counter(observability.MetricTxConfirmed, 1, tags...)
	s.logger.InfoContext(ctx, "transaction confirmed", "action", string(action), "tx", hash.Hex(), "block", receipt.BlockNumber)

	s.announce(ctx, subject, action, taskID, receipt)

	result := &TxResult{TransactionID: hash, Receipt: receipt}
	snap, err := s.refresher.Refresh(ctx, refresh.TriggerTransactionConfirmed)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh after transaction failed", "action", string(action), "error", err)
	} else {
		result.Snapshot = snap
	}
	return result, nil
}

func (s *Submitter) announce(ctx context.Context, subject domain.Subject, action ActionKind, taskID string, receipt *domain.Receipt) {
	event := domain.NewTransactionConfirmed(subject, string(action), taskID, receipt)

	correlationID, _ := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	events := []sharedDomain.DomainEvent{event}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(subject.Wallet.Hex(), correlationID))

	if err := eventbus.PublishEvents(ctx, s.publisher, events...); err != nil {
		s.logger.WarnContext(ctx, "failed to publish transaction event", "action", string(action), "error", err)
		return
	}
	s.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
}
