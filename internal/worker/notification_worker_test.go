package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
)

type outboxStub struct {
	pending   []domain.OutboxEvent
	delivered []string
	retried   map[string]int
	failed    map[string]int
}

func newOutboxStub(records ...domain.OutboxEvent) *outboxStub {
	return &outboxStub{pending: records, retried: map[string]int{}, failed: map[string]int{}}
}

func (o *outboxStub) Enqueue(context.Context, *domain.OutboxEvent) error { return nil }

func (o *outboxStub) ClaimDue(_ context.Context, _ time.Time, _ time.Duration, limit int) ([]domain.OutboxEvent, error) {
	if limit > len(o.pending) {
		limit = len(o.pending)
	}
	batch := o.pending[:limit]
	o.pending = o.pending[limit:]
	return batch, nil
}

func (o *outboxStub) MarkDelivered(_ context.Context, id string, _ time.Time) error {
	o.delivered = append(o.delivered, id)
	return nil
}

func (o *outboxStub) MarkRetry(_ context.Context, id string, attempts int, _ time.Time, _ string) error {
	o.retried[id] = attempts
	return nil
}

func (o *outboxStub) MarkFailed(_ context.Context, id string, attempts int, _ string) error {
	o.failed[id] = attempts
	return nil
}

func storedEvent(t *testing.T, id string, eventType events.EventType, attempts int) domain.OutboxEvent {
	t.Helper()
	event, err := events.New(eventType, "agg-"+id, nil, map[string]string{"k": "v"})
	require.NoError(t, err)

	capture := &captureRepo{}
	require.NoError(t, events.NewOutboxPublisher(capture).Publish(context.Background(), event))
	record := capture.last
	record.ID = id
	record.Attempts = attempts
	return record
}

type captureRepo struct {
	outboxStub
	last domain.OutboxEvent
}

func (c *captureRepo) Enqueue(_ context.Context, e *domain.OutboxEvent) error {
	c.last = *e
	return nil
}

func TestDrainDeliversAndRetries(t *testing.T) {
	ok := storedEvent(t, "ok", events.EventTicketCreated, 0)
	bad := storedEvent(t, "bad", events.EventTicketReminder, 0)
	dead := storedEvent(t, "dead", events.EventTicketReminder, 2)
	outbox := newOutboxStub(ok, bad, dead)

	dispatcher := events.NewInMemoryDispatcher()
	var seen []string
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		seen = append(seen, e.AggregateID)
		return nil
	})
	dispatcher.Subscribe(events.EventTicketReminder, func(context.Context, events.Event) error {
		return errors.New("smtp down")
	})

	w := NewOutboxWorker(outbox, dispatcher, OutboxConfig{MaxAttempts: 3, Backoff: time.Second}, nil)
	delivered, err := w.Drain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"agg-ok"}, seen)
	assert.Equal(t, []string{"ok"}, outbox.delivered)
	assert.Equal(t, 1, outbox.retried["bad"])
	assert.Equal(t, 3, outbox.failed["dead"])
}

func TestDrainMalformedPayloadRetries(t *testing.T) {
	outbox := newOutboxStub(domain.OutboxEvent{ID: "x", EventType: "notify", Payload: []byte("{")})
	w := NewOutboxWorker(outbox, events.NewInMemoryDispatcher(), OutboxConfig{MaxAttempts: 5}, nil)

	delivered, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered)
	assert.Equal(t, 1, outbox.retried["x"])
}

func TestBackoff(t *testing.T) {
	base := 30 * time.Second
	assert.Equal(t, 30*time.Second, Backoff(base, 1))
	assert.Equal(t, time.Minute, Backoff(base, 2))
	assert.Equal(t, 4*time.Minute, Backoff(base, 4))
	assert.Equal(t, time.Hour, Backoff(base, 20))
}
