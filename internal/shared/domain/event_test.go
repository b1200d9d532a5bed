package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/keepup/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	domain.BaseEvent
	Data string
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()

	event := domain.NewBaseEvent("0xabc@0xdef", "Subject", "test.event.created")

	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "0xabc@0xdef", event.AggregateID())
	assert.Equal(t, "Subject", event.AggregateType())
	assert.Equal(t, "test.event.created", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
}

func TestBaseEvent_WithMetadata(t *testing.T) {
	correlationID := uuid.New()
	causationID := uuid.New()

	event := domain.NewBaseEvent("agg", "Subject", "test.event.created")
	event.SetMetadata(domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   causationID,
		Wallet:        "0x1",
	})

	metadata := event.Metadata()
	assert.Equal(t, correlationID, metadata.CorrelationID)
	assert.Equal(t, causationID, metadata.CausationID)
	assert.Equal(t, "0x1", metadata.Wallet)
}

func TestBaseEvent_EmbeddedSatisfiesInterface(t *testing.T) {
	var e domain.DomainEvent = &testEvent{
		BaseEvent: domain.NewBaseEvent("agg", "Subject", "test.event.embedded"),
		Data:      "payload",
	}

	assert.Equal(t, "test.event.embedded", e.RoutingKey())
}

func TestNewBaseEvent_UniqueIDs(t *testing.T) {
	e1 := domain.NewBaseEvent("agg", "Subject", "k")
	e2 := domain.NewBaseEvent("agg", "Subject", "k")

	assert.NotEqual(t, e1.EventID(), e2.EventID())
}
