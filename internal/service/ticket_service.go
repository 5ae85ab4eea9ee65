package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/storage"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// ReminderScheduler keeps the per-ticket reminder chain in step with the
// ticket lifecycle.
type ReminderScheduler interface {
	Schedule(ctx context.Context, ticketID string) error
	Cancel(ctx context.Context, ticketID string) error
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.TicketCommentRepository
	history     repository.TicketHistoryRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	files       repository.FileRepository
	numbers     *Numberer
	reminders   ReminderScheduler
	storage     storage.Storage
	events      publisher
	logger      *zap.Logger
	now         Clock
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.TicketCommentRepository
	HistoryRepo    repository.TicketHistoryRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	FileRepo       repository.FileRepository
	Numberer       *Numberer
	Reminders      ReminderScheduler
	Storage        storage.Storage
	Publisher      events.Publisher
	Logger         *zap.Logger
	Clock          Clock
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title               string
	Description         string
	DepartmentName      string
	Contact             domain.TicketContact
	IncidentDate        *time.Time
	SupportingDocuments []string
}

// TicketListFilter describes listing filters shared by every ticket list.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := loggerOrNop(deps.Logger)
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		history:     deps.HistoryRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		files:       deps.FileRepo,
		numbers:     deps.Numberer,
		reminders:   deps.Reminders,
		storage:     deps.Storage,
		events:      publisher{pub: deps.Publisher, logger: logger},
		logger:      logger,
		now:         clockOrDefault(deps.Clock),
	}
}

// CreateTicket files a grievance. Anonymous callers are attached to a guest
// user keyed by contact email. An unknown department name leaves the ticket
// unrouted.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	details := map[string]any{}
	if title == "" {
		details["title"] = "is required"
	}
	if description == "" {
		details["description"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", details)
	}

	creator := caller
	if creator != nil {
		if _, err := policy.Authorize(creator, policy.TicketCreate, nil); err != nil {
			return nil, err
		}
	} else {
		guest, err := s.guestFor(ctx, input.Contact)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		creator = guest
	}

	dept, err := s.lookupDepartment(ctx, input.DepartmentName)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	number, err := s.numbers.TicketNumber(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		TicketNumber:        number,
		Title:               title,
		Description:         description,
		Status:              domain.TicketStatusOpen,
		CreatorID:           creator.ID,
		Contact:             trimContact(input.Contact),
		IncidentDate:        input.IncidentDate,
		SupportingDocuments: input.SupportingDocuments,
	}
	payload := events.TicketCreatedPayload{
		TicketNumber: number,
		Title:        title,
		ContactName:  ticket.Contact.Name,
		ContactEmail: ticket.Contact.Email,
	}
	if dept != nil {
		ticket.DepartmentID = &dept.ID
		payload.DepartmentID = &dept.ID
		payload.DepartmentName = dept.Name
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, conflictOr(err, "ticket number already issued", map[string]any{"ticket_number": number})
	}

	s.events.emit(ctx, events.EventTicketCreated, ticket.ID, caller, payload)
	if dept != nil {
		s.scheduleReminder(ctx, ticket.ID)
	}
	return ticket, nil
}

// GetTicket returns a ticket the caller may read.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.loadAuthorized(ctx, caller, policy.TicketRead, ticketID)
}

// GetTicketByNumber returns a ticket by its REP number.
func (s *TicketService) GetTicketByNumber(ctx context.Context, caller *domain.User, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_number": number})
	}
	if _, err := policy.Authorize(caller, policy.TicketRead, ticketResource(ticket)); err != nil {
		return nil, err
	}
	return ticket, nil
}

// TrackTicket looks up a ticket by number without authentication. Callers
// must only expose its public status fields.
func (s *TicketService) TrackTicket(ctx context.Context, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_number": number})
	}
	return ticket, nil
}

// ListMyTickets returns the caller's own tickets.
func (s *TicketService) ListMyTickets(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if _, err := policy.Authorize(caller, policy.TicketList, nil); err != nil {
		return nil, err
	}
	repoFilter := toRepoFilter(filter)
	repoFilter.CreatorID = &caller.ID
	return s.list(ctx, repoFilter)
}

// ListAllTickets is restricted to callers with an unrestricted list grant.
func (s *TicketService) ListAllTickets(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := policy.RequireAll(caller, policy.TicketList); err != nil {
		return nil, err
	}
	return s.list(ctx, toRepoFilter(filter))
}

// ListDepartmentTickets lists one department's tickets. Department-scoped
// callers are pinned to their own department.
func (s *TicketService) ListDepartmentTickets(ctx context.Context, caller *domain.User, departmentID *string, filter TicketListFilter) ([]domain.Ticket, error) {
	deptID, err := scopedDepartment(caller, policy.TicketList, departmentID)
	if err != nil {
		return nil, err
	}
	repoFilter := toRepoFilter(filter)
	repoFilter.DepartmentID = deptID
	return s.list(ctx, repoFilter)
}

// UpdateStatus moves a ticket to status. Resolved and closed require a
// resolution note. Concurrent updates are last-write-wins.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.User, ticketID string, status domain.TicketStatus, note string) (*domain.Ticket, error) {
	ticket, err := s.loadAuthorized(ctx, caller, policy.TicketUpdateStatus, ticketID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}
	note = strings.TrimSpace(note)
	if status.Terminal() && note == "" {
		return nil, apperrors.NewValidationError("resolution note is required", map[string]any{"resolution_note": "is required when resolving or closing"})
	}

	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = status
	if oldStatus == domain.TicketStatusOpen && status != domain.TicketStatusOpen && ticket.FirstResponseAt == nil {
		ticket.FirstResponseAt = &now
	}
	if status.Terminal() {
		ticket.ResolutionNote = &note
		ticket.ResolvedAt = &now
	} else {
		ticket.ResolvedAt = nil
		if note != "" {
			ticket.ResolutionNote = &note
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.recordHistory(ctx, caller, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": status, "note": note})

	s.events.emit(ctx, events.EventTicketStatusChanged, ticket.ID, caller, events.TicketStatusChangedPayload{
		TicketNumber: ticket.TicketNumber,
		Title:        ticket.Title,
		CreatorID:    ticket.CreatorID,
		ContactEmail: ticket.Contact.Email,
		OldStatus:    oldStatus,
		NewStatus:    status,
		Note:         note,
	})
	switch {
	case oldStatus == domain.TicketStatusOpen && status != domain.TicketStatusOpen:
		s.cancelReminder(ctx, ticket.ID)
	case oldStatus != domain.TicketStatusOpen && status == domain.TicketStatusOpen && ticket.DepartmentID != nil:
		s.scheduleReminder(ctx, ticket.ID)
	}
	return ticket, nil
}

// ReopenTicket returns a resolved or closed ticket to open. The resolution
// note and history are kept.
func (s *TicketService) ReopenTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadAuthorized(ctx, caller, policy.TicketReopen, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.Status.Terminal() {
		return nil, apperrors.NewConflict("only resolved or closed tickets can be reopened", map[string]any{"status": string(ticket.Status)})
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusOpen
	ticket.ResolvedAt = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.recordHistory(ctx, caller, ticket.ID, domain.ChangeTypeReopen,
		map[string]any{"status": oldStatus},
		map[string]any{"status": domain.TicketStatusOpen})

	s.events.emit(ctx, events.EventTicketReopened, ticket.ID, caller, events.TicketReopenedPayload{
		TicketNumber: ticket.TicketNumber,
		Title:        ticket.Title,
		DepartmentID: ticket.DepartmentID,
	})
	if ticket.DepartmentID != nil {
		s.scheduleReminder(ctx, ticket.ID)
	}
	return ticket, nil
}

// DeleteTicket hard-deletes a closed ticket with its comments, history and
// notifications. Deleting a missing ticket succeeds.
func (s *TicketService) DeleteTicket(ctx context.Context, caller *domain.User, ticketID string) error {
	if err := policy.RequireAll(caller, policy.TicketDelete); err != nil {
		return err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	if ticket.Status != domain.TicketStatusClosed {
		return apperrors.NewConflict("only closed tickets can be deleted", map[string]any{"status": string(ticket.Status)})
	}

	if _, err := s.tickets.DeleteCascade(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.cancelReminder(ctx, ticket.ID)
	s.removeDocuments(ctx, ticket.SupportingDocuments)
	s.logger.Info("ticket deleted",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("actor_id", caller.ID))
	return nil
}

// AddComment posts a comment and notifies the other side of the thread.
func (s *TicketService) AddComment(ctx context.Context, caller *domain.User, ticketID, body string) (*domain.TicketComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body is required", map[string]any{"body": "is required"})
	}
	ticket, err := s.loadAuthorized(ctx, caller, policy.TicketComment, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{TicketID: ticket.ID, AuthorID: caller.ID, Body: body}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.events.emit(ctx, events.EventTicketCommentAdded, ticket.ID, caller, events.TicketCommentAddedPayload{
		TicketNumber: ticket.TicketNumber,
		CommentID:    comment.ID,
		AuthorID:     caller.ID,
		CreatorID:    ticket.CreatorID,
		DepartmentID: ticket.DepartmentID,
		BodyPreview:  preview(body, 160),
	})
	return comment, nil
}

// ListComments returns the thread oldest first.
func (s *TicketService) ListComments(ctx context.Context, caller *domain.User, ticketID string) ([]domain.TicketComment, error) {
	ticket, err := s.loadAuthorized(ctx, caller, policy.TicketRead, ticketID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByTicket(ctx, ticket.ID)
}

// ListHistory returns the status and assignment audit trail.
func (s *TicketService) ListHistory(ctx context.Context, caller *domain.User, ticketID string) ([]domain.TicketHistory, error) {
	ticket, err := s.loadAuthorized(ctx, caller, policy.TicketRead, ticketID)
	if err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticket.ID)
}

func (s *TicketService) loadAuthorized(ctx context.Context, caller *domain.User, action policy.Action, ticketID string) (*domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if _, err := policy.Authorize(caller, action, ticketResource(ticket)); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) lookupDepartment(ctx context.Context, name string) (*domain.Department, error) {
	dept, err := activeDepartment(ctx, s.departments, name)
	if err == nil && dept == nil && strings.TrimSpace(name) != "" {
		s.logger.Info("ticket department not recognised", zap.String("department", name))
	}
	return dept, err
}

// guestFor reuses the guest account for the contact email or creates one.
func (s *TicketService) guestFor(ctx context.Context, contact domain.TicketContact) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(contact.Email))
	if email != "" {
		guest, err := s.users.GetGuestByEmail(ctx, email)
		if err == nil {
			return guest, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	guest := &domain.User{
		ExternalID: "guest:" + uuid.NewString(),
		Name:       strings.TrimSpace(contact.Name),
		Email:      email,
		Phone:      strings.TrimSpace(contact.Phone),
		State:      strings.TrimSpace(contact.State),
		Role:       domain.RoleUser,
		IsGuest:    true,
	}
	if err := s.users.Upsert(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

func (s *TicketService) recordHistory(ctx context.Context, caller *domain.User, ticketID string, change domain.TicketChangeType, oldValue, newValue map[string]any) {
	entry := &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: actorID(caller),
		ChangeType:  change,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("record ticket history failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *TicketService) scheduleReminder(ctx context.Context, ticketID string) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.Schedule(ctx, ticketID); err != nil {
		s.logger.Warn("schedule reminder failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *TicketService) cancelReminder(ctx context.Context, ticketID string) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.Cancel(ctx, ticketID); err != nil {
		s.logger.Warn("cancel reminder failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *TicketService) removeDocuments(ctx context.Context, keys []string) {
	for _, key := range keys {
		if s.storage != nil {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Warn("delete supporting document failed", zap.String("key", key), zap.Error(err))
				continue
			}
		}
		if s.files != nil {
			if _, err := s.files.DeleteByKey(ctx, key); err != nil {
				s.logger.Warn("delete file record failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

func ticketResource(t *domain.Ticket) *policy.Resource {
	return &policy.Resource{OwnerID: t.CreatorID, DepartmentID: t.DepartmentID}
}

// scopedDepartment resolves which department a list may cover. Callers with
// an unrestricted grant must name one; department-scoped callers get their own.
func scopedDepartment(caller *domain.User, action policy.Action, requested *string) (*string, error) {
	scope, err := policy.Authorize(caller, action, nil)
	if err != nil {
		return nil, err
	}
	requested = trimmedPtr(requested)
	switch {
	case scope.Has(policy.ScopeAll):
		if requested == nil {
			return nil, apperrors.NewValidationError("department is required", map[string]any{"department_id": "is required"})
		}
		return requested, nil
	case scope.Has(policy.ScopeDepartment) && caller.DepartmentID != nil:
		if requested != nil && *requested != *caller.DepartmentID {
			return nil, apperrors.NewForbidden("department outside caller scope")
		}
		return caller.DepartmentID, nil
	default:
		return nil, apperrors.NewForbidden("department access required")
	}
}

func toRepoFilter(f TicketListFilter) repository.TicketFilter {
	return repository.TicketFilter{
		Statuses:    f.Statuses,
		SearchTerm:  f.SearchTerm,
		CreatedFrom: f.CreatedFrom,
		CreatedTo:   f.CreatedTo,
		Limit:       f.Limit,
		Offset:      f.Offset,
	}
}

func trimContact(c domain.TicketContact) domain.TicketContact {
	return domain.TicketContact{
		Name:         strings.TrimSpace(c.Name),
		Email:        strings.TrimSpace(c.Email),
		Phone:        strings.TrimSpace(c.Phone),
		Address:      strings.TrimSpace(c.Address),
		State:        strings.TrimSpace(c.State),
		BusinessName: strings.TrimSpace(c.BusinessName),
	}
}
