package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

func TestNewAndDecode(t *testing.T) {
	actor := "u-1"
	event, err := New(EventTicketStatusChanged, "t-1", &actor, TicketStatusChangedPayload{
		TicketNumber: "REP-030624-001",
		OldStatus:    domain.TicketStatusOpen,
		NewStatus:    domain.TicketStatusResolved,
		Note:         "done",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "t-1", event.AggregateID)

	var payload TicketStatusChangedPayload
	require.NoError(t, event.Decode(&payload))
	assert.Equal(t, domain.TicketStatusResolved, payload.NewStatus)
	assert.Equal(t, "done", payload.Note)
}

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	d.Subscribe(EventNotify, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventNotify, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventNotify})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 2, calls)
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	after := false
	d.Subscribe(EventNotify, func(context.Context, Event) error {
		panic("nil map")
	})
	d.Subscribe(EventNotify, func(context.Context, Event) error {
		after = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventNotify})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.Contains(t, err.Error(), "nil map")
	assert.True(t, after)
}

func TestDispatcherWithoutHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketReminder}))
}

func TestFromOutboxRoundTrip(t *testing.T) {
	store := &captureOutbox{}
	pub := NewOutboxPublisher(store)
	event, err := New(EventNotify, "letter-1", nil, NotifyPayload{
		Audience: Audience{Roles: []domain.Role{domain.RoleAdmin}},
		Type:     domain.NotificationLetter,
		Message:  "New letter",
	})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), event))
	require.Len(t, store.events, 1)
	assert.Equal(t, "notify", store.events[0].EventType)

	restored, err := FromOutbox(store.events[0])
	require.NoError(t, err)
	var payload NotifyPayload
	require.NoError(t, restored.Decode(&payload))
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, payload.Audience.Roles)
	assert.Equal(t, event.ID, restored.ID)
}

func TestAudienceEmpty(t *testing.T) {
	assert.True(t, Audience{}.Empty())
	dept := "d-1"
	assert.False(t, Audience{DepartmentID: &dept}.Empty())
}
