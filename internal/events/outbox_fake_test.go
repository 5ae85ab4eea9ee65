package events

import (
	"context"
	"time"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

type captureOutbox struct {
	events []domain.OutboxEvent
}

func (c *captureOutbox) Enqueue(_ context.Context, event *domain.OutboxEvent) error {
	event.ID = "ob-1"
	c.events = append(c.events, *event)
	return nil
}

func (c *captureOutbox) ClaimDue(context.Context, time.Time, time.Duration, int) ([]domain.OutboxEvent, error) {
	return nil, nil
}

func (c *captureOutbox) MarkDelivered(context.Context, string, time.Time) error { return nil }

func (c *captureOutbox) MarkRetry(context.Context, string, int, time.Time, string) error { return nil }

func (c *captureOutbox) MarkFailed(context.Context, string, int, string) error { return nil }
