package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
)

// OutboxPublisher stores events durably; the outbox worker hands them to a
// Dispatcher later.
type OutboxPublisher struct {
	outbox repository.OutboxRepository
}

// NewOutboxPublisher wraps the outbox repository.
func NewOutboxPublisher(outbox repository.OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox}
}

// Publish enqueues the event for asynchronous delivery.
func (p *OutboxPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.outbox.Enqueue(ctx, &domain.OutboxEvent{
		EventType:   string(event.Type),
		AggregateID: event.AggregateID,
		Payload:     body,
	})
}

// FromOutbox restores the event stored by OutboxPublisher.
func FromOutbox(record domain.OutboxEvent) (Event, error) {
	var event Event
	if err := json.Unmarshal(record.Payload, &event); err != nil {
		return Event{}, fmt.Errorf("decode outbox event %s: %w", record.ID, err)
	}
	return event, nil
}
