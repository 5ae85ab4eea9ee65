package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

type notificationFixture struct {
	dispatcher    events.Dispatcher
	notifications *fakeNotifications
	users         *fakeUsers
	mail          *fakeMailer
	svc           *NotificationService
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		dispatcher:    events.NewInMemoryDispatcher(),
		notifications: &fakeNotifications{},
		users:         &fakeUsers{},
		mail:          &fakeMailer{},
	}
	f.svc = NewNotificationService(NotificationDependencies{
		NotificationRepo: f.notifications,
		UserRepo:         f.users,
		Mailer:           f.mail,
		PublicURL:        "https://portal.example/",
	})
	f.svc.RegisterHandlers(f.dispatcher)
	return f
}

func mustEvent(t *testing.T, eventType events.EventType, aggregateID string, actor *string, payload any) events.Event {
	t.Helper()
	event, err := events.New(eventType, aggregateID, actor, payload)
	require.NoError(t, err)
	return event
}

func TestTicketCreatedFansOutToAdminsAndDepartment(t *testing.T) {
	f := newNotificationFixture()
	dept := "dept-trade"
	admin := f.users.add("Admin", domain.RoleAdmin, nil)
	desk := f.users.add("Desk", domain.RoleMDA, &dept)
	other := f.users.add("Elsewhere", domain.RoleMDA, strPtr("dept-ports"))

	event := mustEvent(t, events.EventTicketCreated, "ticket-1", nil, events.TicketCreatedPayload{
		TicketNumber:   "REP-140325-001",
		Title:          "Port delay",
		DepartmentID:   &dept,
		DepartmentName: "Trade",
	})
	require.NoError(t, f.dispatcher.Publish(context.Background(), event))

	assert.Len(t, f.notifications.forUser(admin.ID), 1)
	assert.Len(t, f.notifications.forUser(desk.ID), 1)
	assert.Empty(t, f.notifications.forUser(other.ID))
	assert.Equal(t, []string{admin.Email, desk.Email}, f.mail.recipients())
	assert.Contains(t, f.mail.sent[0].HTML, "https://portal.example/tickets/ticket-1")

	// Redelivery keeps one notification per user but may mail again.
	require.NoError(t, f.dispatcher.Publish(context.Background(), event))
	assert.Len(t, f.notifications.forUser(admin.ID), 1)
	assert.Len(t, f.mail.sent, 4)
}

func TestStatusChangeNotifiesCreatorNotActor(t *testing.T) {
	f := newNotificationFixture()
	creator := f.users.add("Citizen", domain.RoleUser, nil)
	desk := f.users.add("Desk", domain.RoleMDA, strPtr("d"))

	event := mustEvent(t, events.EventTicketStatusChanged, "ticket-1", &desk.ID, events.TicketStatusChangedPayload{
		TicketNumber: "REP-140325-001",
		CreatorID:    creator.ID,
		ContactEmail: "Citizen@Example.gov.ng",
		OldStatus:    domain.TicketStatusOpen,
		NewStatus:    domain.TicketStatusInProgress,
	})
	require.NoError(t, f.dispatcher.Publish(context.Background(), event))

	notes := f.notifications.forUser(creator.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationTicketStatus, notes[0].Type)
	assert.Equal(t, "Ticket REP-140325-001 moved from open to in progress", notes[0].Message)
	assert.Empty(t, f.notifications.forUser(desk.ID))
	// Contact email matches the creator's address, so only one mail goes out.
	assert.Equal(t, []string{creator.Email}, f.mail.recipients())
}

func TestCommentNotifiesOtherSide(t *testing.T) {
	f := newNotificationFixture()
	dept := "d1"
	creator := f.users.add("Citizen", domain.RoleUser, nil)
	desk := f.users.add("Desk", domain.RoleMDA, &dept)

	fromCreator := mustEvent(t, events.EventTicketCommentAdded, "t1", &creator.ID, events.TicketCommentAddedPayload{
		AuthorID: creator.ID, CreatorID: creator.ID, DepartmentID: &dept,
	})
	require.NoError(t, f.dispatcher.Publish(context.Background(), fromCreator))
	assert.Len(t, f.notifications.forUser(desk.ID), 1)
	assert.Empty(t, f.notifications.forUser(creator.ID))

	fromDesk := mustEvent(t, events.EventTicketCommentAdded, "t1", &desk.ID, events.TicketCommentAddedPayload{
		AuthorID: desk.ID, CreatorID: creator.ID, DepartmentID: &dept,
	})
	require.NoError(t, f.dispatcher.Publish(context.Background(), fromDesk))
	assert.Len(t, f.notifications.forUser(creator.ID), 1)
}

func TestNotifyEmailOnlyAudience(t *testing.T) {
	f := newNotificationFixture()

	event := mustEvent(t, events.EventNotify, "reg-1", nil, events.NotifyPayload{
		Audience: events.Audience{Emails: []string{"guest@example.com", "GUEST@example.com"}},
		Type:     domain.NotificationEvent,
		Message:  "Registration confirmed",
		HTML:     "<p>hi</p>",
	})
	require.NoError(t, f.dispatcher.Publish(context.Background(), event))

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "Registration confirmed", f.mail.sent[0].Subject)
	assert.Equal(t, "<p>hi</p>", f.mail.sent[0].HTML)
	assert.Empty(t, f.notifications.items)
}

func TestInbox(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	user := f.users.add("Citizen", domain.RoleUser, nil)
	for _, id := range []string{"e1", "e2"} {
		_, err := f.notifications.CreateIfAbsent(ctx, &domain.Notification{UserID: user.ID, EventID: id, Message: id})
		require.NoError(t, err)
	}

	count, err := f.svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := f.svc.List(ctx, user, true, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, f.svc.MarkRead(ctx, user, list[0].ID))
	err = f.svc.MarkRead(ctx, user, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	changed, err := f.svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	_, err = f.svc.List(ctx, nil, false, 20, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}
