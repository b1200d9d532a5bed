package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/keepup/internal/shared/domain"
	"github.com/google/uuid"
)

// Publisher publishes encoded events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Encode wraps a domain event in a ConsumedEvent envelope.
func Encode(event domain.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	meta := event.Metadata()
	envelope := ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
		Metadata: EventMetadata{
			Wallet:        meta.Wallet,
			CorrelationID: uuidString(meta.CorrelationID),
			CausationID:   uuidString(meta.CausationID),
		},
	}
	return json.Marshal(envelope)
}

// PublishEvents encodes and publishes events in order, stopping at the first error.
func PublishEvents(ctx context.Context, p Publisher, events ...domain.DomainEvent) error {
	for _, event := range events {
		body, err := Encode(event)
		if err != nil {
			return err
		}
		if err := p.Publish(ctx, event.RoutingKey(), body); err != nil {
			return fmt.Errorf("failed to publish %s: %w", event.RoutingKey(), err)
		}
	}
	return nil
}

func uuidString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
