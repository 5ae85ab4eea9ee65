package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// AssignmentService routes tickets to departments and agents.
type AssignmentService struct {
	tickets     repository.TicketRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	history     repository.TicketHistoryRepository
	reminders   ReminderScheduler
	events      publisher
	logger      *zap.Logger
	now         Clock
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	HistoryRepo    repository.TicketHistoryRepository
	Reminders      ReminderScheduler
	Publisher      events.Publisher
	Logger         *zap.Logger
	Clock          Clock
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := loggerOrNop(deps.Logger)
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		history:     deps.HistoryRepo,
		reminders:   deps.Reminders,
		events:      publisher{pub: deps.Publisher, logger: logger},
		logger:      logger,
		now:         clockOrDefault(deps.Clock),
	}
}

// AssignDepartment routes a ticket to the department named or identified by
// ref. Moving between departments restarts the SLA clock. Resolved tickets
// may be reassigned.
func (s *AssignmentService) AssignDepartment(ctx context.Context, caller *domain.User, ticketID, ref string) (*domain.Ticket, error) {
	if err := policy.RequireAll(caller, policy.TicketAssign); err != nil {
		return nil, err
	}
	dept, err := s.resolveDepartment(ctx, ref)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	oldDept := ticket.DepartmentID
	if oldDept != nil && *oldDept != dept.ID {
		now := s.now()
		ticket.ReassignedAt = &now
	}
	ticket.DepartmentID = &dept.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.recordChange(ctx, caller, ticket.ID, domain.ChangeTypeDepartment, "department_id", oldDept, ticket.DepartmentID)

	s.events.emit(ctx, events.EventTicketDepartmentAssigned, ticket.ID, caller, events.TicketDepartmentAssignedPayload{
		TicketNumber:   ticket.TicketNumber,
		Title:          ticket.Title,
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
	})

	if s.reminders != nil {
		var err error
		if ticket.Status == domain.TicketStatusOpen {
			err = s.reminders.Schedule(ctx, ticket.ID)
		} else {
			err = s.reminders.Cancel(ctx, ticket.ID)
		}
		if err != nil {
			s.logger.Warn("update reminder after assignment failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	return ticket, nil
}

// AssignAgent sets the handling agent. No notification is sent.
func (s *AssignmentService) AssignAgent(ctx context.Context, caller *domain.User, ticketID, agentID string) (*domain.Ticket, error) {
	if err := policy.RequireAll(caller, policy.TicketAssign); err != nil {
		return nil, err
	}
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": agentID})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	oldAgent := ticket.AssignedAgentID
	ticket.AssignedAgentID = &agent.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.recordChange(ctx, caller, ticket.ID, domain.ChangeTypeAgent, "agent_id", oldAgent, ticket.AssignedAgentID)
	return ticket, nil
}

func (s *AssignmentService) resolveDepartment(ctx context.Context, ref string) (*domain.Department, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.NewValidationError("department is required", map[string]any{"department": "is required"})
	}
	var (
		dept *domain.Department
		err  error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		dept, err = s.departments.GetByID(ctx, ref)
	} else {
		dept, err = s.departments.GetByName(ctx, ref)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("department", map[string]any{"department": ref})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

func (s *AssignmentService) recordChange(ctx context.Context, caller *domain.User, ticketID string, change domain.TicketChangeType, field string, oldValue, newValue *string) {
	entry := &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: actorID(caller),
		ChangeType:  change,
		OldValue:    map[string]any{field: oldValue},
		NewValue:    map[string]any{field: newValue},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("record ticket history failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}
