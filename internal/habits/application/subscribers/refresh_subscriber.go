// Package subscribers reacts to habits events delivered by the event bus.
package subscribers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/eventbus"
)

// Triggerable is the refresh coordinator as seen by subscribers.
type Triggerable interface {
	Subject() domain.Subject
	Trigger(trigger refresh.Trigger) <-chan struct{}
}

// RefreshSubscriber refreshes the tracked subject when another process
// confirms a transaction for it.
type RefreshSubscriber struct {
	coordinator Triggerable
	logger      *slog.Logger
	enabled     bool
}

// NewRefreshSubscriber creates a new refresh subscriber.
func NewRefreshSubscriber(coordinator Triggerable, logger *slog.Logger) *RefreshSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshSubscriber{
		coordinator: coordinator,
		logger:      logger,
		enabled:     true,
	}
}

// SetEnabled enables or disables the subscriber.
func (s *RefreshSubscriber) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// EventTypes returns the event types this subscriber handles.
func (s *RefreshSubscriber) EventTypes() []string {
	return []string{domain.RoutingKeyTransactionConfirmed}
}

type confirmedPayload struct {
	Wallet        string `json:"wallet"`
	Contract      string `json:"contract"`
	Action        string `json:"action"`
	TransactionID string `json:"transaction_id"`
}

// Handle queues a refresh when the event concerns the tracked subject. It
// does not wait for the refresh.
func (s *RefreshSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if !s.enabled {
		return nil
	}

	var payload confirmedPayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode %s: %w", event.RoutingKey, err)
	}

	subject := s.coordinator.Subject()
	if subject.Ready() != nil ||
		!strings.EqualFold(payload.Wallet, subject.Wallet.Hex()) ||
		!strings.EqualFold(payload.Contract, subject.Contract.Hex()) {
		s.logger.DebugContext(ctx, "ignoring transaction for another subject",
			"wallet", payload.Wallet,
			"contract", payload.Contract,
		)
		return nil
	}

	s.logger.InfoContext(ctx, "transaction confirmed elsewhere, refreshing",
		"action", payload.Action,
		"transaction_id", payload.TransactionID,
	)
	s.coordinator.Trigger(refresh.TriggerTransactionConfirmed)
	return nil
}
