package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/mailer"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// NotificationService turns domain events into in-app notifications and
// email, and serves each user's notification inbox.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	tickets       repository.TicketRepository
	mail          mailer.Sender
	logger        *zap.Logger
	publicURL     string
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	TicketRepo       repository.TicketRepository
	Mailer           mailer.Sender
	Logger           *zap.Logger
	PublicURL        string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		tickets:       deps.TicketRepo,
		mail:          deps.Mailer,
		logger:        loggerOrNop(deps.Logger),
		publicURL:     strings.TrimRight(deps.PublicURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	dispatcher.Subscribe(events.EventTicketReopened, n.handleTicketReopened)
	dispatcher.Subscribe(events.EventTicketDepartmentAssigned, n.handleTicketDepartmentAssigned)
	dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
	dispatcher.Subscribe(events.EventTicketReminder, n.handleTicketReminder)
	dispatcher.Subscribe(events.EventNotify, n.handleNotify)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	var p events.TicketCreatedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	audience := events.Audience{Roles: []domain.Role{domain.RoleAdmin}, DepartmentID: p.DepartmentID}
	message := fmt.Sprintf("New ticket %s: %s", p.TicketNumber, p.Title)
	html := mailer.Render("New ticket submitted", message, []mailer.Field{
		{Label: "Ticket", Value: p.TicketNumber},
		{Label: "Title", Value: p.Title},
		{Label: "MDA", Value: p.DepartmentName},
		{Label: "Submitted by", Value: p.ContactName},
		{Label: "Contact email", Value: p.ContactEmail},
	}, n.ticketLink(event.AggregateID))
	return n.deliver(ctx, event, n.ticketNotice(event, audience, domain.NotificationTicketCreated, message, html))
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	var p events.TicketStatusChangedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	message := fmt.Sprintf("Ticket %s moved from %s to %s", p.TicketNumber, humanStatus(p.OldStatus), humanStatus(p.NewStatus))
	html := mailer.Render("Your ticket was updated", message, []mailer.Field{
		{Label: "Ticket", Value: p.TicketNumber},
		{Label: "Title", Value: p.Title},
		{Label: "Previous status", Value: humanStatus(p.OldStatus)},
		{Label: "New status", Value: humanStatus(p.NewStatus)},
		{Label: "Resolution note", Value: p.Note},
	}, n.ticketLink(event.AggregateID))
	audience := events.Audience{UserIDs: []string{p.CreatorID}}
	if p.ContactEmail != "" {
		audience.Emails = []string{p.ContactEmail}
	}
	return n.deliver(ctx, event, n.ticketNotice(event, audience, domain.NotificationTicketStatus, message, html))
}

func (n *NotificationService) handleTicketReopened(ctx context.Context, event events.Event) error {
	var p events.TicketReopenedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	message := fmt.Sprintf("Ticket %s was reopened", p.TicketNumber)
	html := mailer.Render("Ticket reopened", message, []mailer.Field{
		{Label: "Ticket", Value: p.TicketNumber},
		{Label: "Title", Value: p.Title},
	}, n.ticketLink(event.AggregateID))
	audience := events.Audience{Roles: []domain.Role{domain.RoleAdmin}, DepartmentID: p.DepartmentID}
	return n.deliver(ctx, event, n.ticketNotice(event, audience, domain.NotificationTicketReopened, message, html))
}

func (n *NotificationService) handleTicketDepartmentAssigned(ctx context.Context, event events.Event) error {
	var p events.TicketDepartmentAssignedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	message := fmt.Sprintf("Ticket %s was assigned to %s", p.TicketNumber, p.DepartmentName)
	html := mailer.Render("Ticket assigned to your MDA", message, []mailer.Field{
		{Label: "Ticket", Value: p.TicketNumber},
		{Label: "Title", Value: p.Title},
		{Label: "MDA", Value: p.DepartmentName},
	}, n.ticketLink(event.AggregateID))
	audience := events.Audience{DepartmentID: &p.DepartmentID}
	return n.deliver(ctx, event, n.ticketNotice(event, audience, domain.NotificationTicketAssigned, message, html))
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	var p events.TicketCommentAddedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	audience := events.Audience{UserIDs: []string{p.CreatorID}}
	if p.AuthorID == p.CreatorID {
		audience = events.Audience{Roles: []domain.Role{domain.RoleAdmin}, DepartmentID: p.DepartmentID}
	}
	message := fmt.Sprintf("New comment on ticket %s", p.TicketNumber)
	html := mailer.Render("New comment", message, []mailer.Field{
		{Label: "Ticket", Value: p.TicketNumber},
		{Label: "Comment", Value: p.BodyPreview},
	}, n.ticketLink(event.AggregateID))
	return n.deliver(ctx, event, n.ticketNotice(event, audience, domain.NotificationTicketComment, message, html))
}

func (n *NotificationService) handleTicketReminder(ctx context.Context, event events.Event) error {
	var p events.TicketReminderPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	audience := events.Audience{DepartmentID: &p.DepartmentID}
	if p.AgentID != nil {
		audience.UserIDs = []string{*p.AgentID}
	}
	message := fmt.Sprintf("Reminder: ticket %s is still open", p.TicketNumber)
	html := mailer.Render("Ticket awaiting action", message, []mailer.Field{
		{Label: "Ticket", Value: p.TicketNumber},
		{Label: "Title", Value: p.Title},
	}, n.ticketLink(event.AggregateID))
	return n.deliver(ctx, event, n.ticketNotice(event, audience, domain.NotificationTicketReminder, message, html))
}

func (n *NotificationService) handleNotify(ctx context.Context, event events.Event) error {
	var p events.NotifyPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	return n.deliver(ctx, event, p)
}

func (n *NotificationService) ticketNotice(event events.Event, audience events.Audience, kind domain.NotificationType, message, html string) events.NotifyPayload {
	return events.NotifyPayload{
		Audience:   audience,
		Type:       kind,
		Message:    message,
		Subject:    message,
		HTML:       html,
		EntityType: "ticket",
		EntityID:   strPtr(event.AggregateID),
	}
}

// deliver writes one notification per recipient and emails each of them.
// Notifications are idempotent per event; email is at-least-once, so a
// retried event can mail a recipient twice.
func (n *NotificationService) deliver(ctx context.Context, event events.Event, p events.NotifyPayload) error {
	gone, err := n.ticketGone(ctx, p)
	if err != nil {
		return err
	}
	if gone {
		n.logger.Debug("dropping notice for deleted ticket",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", *p.EntityID))
		return nil
	}

	recipients, err := n.resolve(ctx, p.Audience, event.ActorID)
	if err != nil {
		return err
	}

	var errs []error
	emails := make([]string, 0, len(recipients)+len(p.Audience.Emails))
	for _, user := range recipients {
		note := &domain.Notification{
			UserID:     user.ID,
			EventID:    event.ID,
			Type:       p.Type,
			Message:    p.Message,
			EntityType: p.EntityType,
			EntityID:   p.EntityID,
		}
		if _, err := n.notifications.CreateIfAbsent(ctx, note); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", user.ID, err))
		}
		if user.Email != "" {
			emails = append(emails, user.Email)
		}
	}
	emails = append(emails, p.Audience.Emails...)

	if n.mail != nil {
		subject := p.Subject
		if subject == "" {
			subject = p.Message
		}
		html := p.HTML
		if html == "" {
			html = mailer.Render(subject, p.Message, nil, "")
		}
		for _, addr := range uniqueEmails(emails) {
			if err := n.mail.Send(ctx, mailer.Message{To: addr, Subject: subject, HTML: html}); err != nil {
				errs = append(errs, fmt.Errorf("email %s: %w", addr, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ticketGone reports whether p is about a ticket that no longer exists.
func (n *NotificationService) ticketGone(ctx context.Context, p events.NotifyPayload) (bool, error) {
	if n.tickets == nil || p.EntityType != "ticket" || p.EntityID == nil {
		return false, nil
	}
	_, err := n.tickets.GetByID(ctx, *p.EntityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("load ticket %s: %w", *p.EntityID, err)
	}
	return false, nil
}

// resolve expands the audience into distinct users, leaving out the actor.
func (n *NotificationService) resolve(ctx context.Context, a events.Audience, actor *string) ([]domain.User, error) {
	seen := map[string]bool{}
	if actor != nil {
		seen[*actor] = true
	}
	var out []domain.User
	add := func(users ...domain.User) {
		for _, u := range users {
			if !seen[u.ID] {
				seen[u.ID] = true
				out = append(out, u)
			}
		}
	}

	for _, id := range a.UserIDs {
		if seen[id] {
			continue
		}
		user, err := n.users.GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load recipient %s: %w", id, err)
		}
		add(*user)
	}
	for _, role := range a.Roles {
		users, err := n.users.ListByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("list %s users: %w", role, err)
		}
		add(users...)
	}
	if a.DepartmentID != nil {
		users, err := n.users.ListByDepartment(ctx, *a.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("list department users: %w", err)
		}
		add(users...)
	}
	return out, nil
}

func (n *NotificationService) ticketLink(ticketID string) string {
	if n.publicURL == "" {
		return ""
	}
	return n.publicURL + "/tickets/" + ticketID
}

// List returns the caller's notifications newest first.
func (n *NotificationService) List(ctx context.Context, caller *domain.User, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	items, err := n.notifications.ListByUser(ctx, caller.ID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// UnreadCount counts the caller's unread notifications.
func (n *NotificationService) UnreadCount(ctx context.Context, caller *domain.User) (int, error) {
	if caller == nil {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	count, err := n.notifications.CountUnread(ctx, caller.ID)
	return count, apperrors.MapError(err)
}

// MarkRead marks one of the caller's notifications read.
func (n *NotificationService) MarkRead(ctx context.Context, caller *domain.User, id string) error {
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	ok, err := n.notifications.MarkRead(ctx, id, caller.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewNotFound("notification", map[string]any{"notification_id": id})
	}
	return nil
}

// MarkAllRead marks every caller notification read and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, caller *domain.User) (int64, error) {
	if caller == nil {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	count, err := n.notifications.MarkAllRead(ctx, caller.ID)
	return count, apperrors.MapError(err)
}

func uniqueEmails(list []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(list))
	for _, e := range list {
		e = strings.TrimSpace(e)
		key := strings.ToLower(e)
		if e == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func humanStatus(s domain.TicketStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
