package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
)

func TestReminderChain(t *testing.T) {
	ctx := context.Background()
	tickets := newFakeTickets()
	queue := newFakeQueue()
	pub := &recordingPublisher{}
	now := fixedNow
	svc := NewReminderService(ReminderDependencies{
		Queue:        queue,
		TicketRepo:   tickets,
		Publisher:    pub,
		Clock:        func() time.Time { return now },
		FirstDelay:   2 * time.Minute,
		DailyHourUTC: 9,
	})

	dept := "dept-1"
	open := &domain.Ticket{TicketNumber: "REP-140325-001", Status: domain.TicketStatusOpen, DepartmentID: &dept}
	require.NoError(t, tickets.Create(ctx, open))
	done := &domain.Ticket{TicketNumber: "REP-140325-002", Status: domain.TicketStatusResolved, DepartmentID: &dept}
	require.NoError(t, tickets.Create(ctx, done))

	require.NoError(t, svc.Schedule(ctx, open.ID))
	require.NoError(t, svc.Schedule(ctx, done.ID))
	require.NoError(t, svc.Schedule(ctx, "deleted-ticket"))
	assert.Equal(t, fixedNow.Add(2*time.Minute), queue.due[open.ID])

	sent, err := svc.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "nothing is due before the first delay")

	now = fixedNow.Add(3 * time.Minute)
	sent, err = svc.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	reminders := pub.ofType(events.EventTicketReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, open.ID, reminders[0].AggregateID)

	next, ok := queue.due[open.ID]
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC), next)
	_, ok = queue.due[done.ID]
	assert.False(t, ok, "resolved tickets end their chain")
	_, ok = queue.due["deleted-ticket"]
	assert.False(t, ok)

	require.NoError(t, svc.Cancel(ctx, open.ID))
	assert.Empty(t, queue.due)
}
