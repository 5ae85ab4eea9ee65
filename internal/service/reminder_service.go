package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/reminder"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
)

const reminderBatchSize = 100

// ReminderService nags departments about open tickets: first shortly after
// routing, then daily at a fixed UTC hour until the ticket leaves open.
type ReminderService struct {
	queue      reminder.Queue
	tickets    repository.TicketRepository
	events     publisher
	logger     *zap.Logger
	now        Clock
	firstDelay time.Duration
	dailyHour  int
}

// ReminderDependencies bundles collaborators.
type ReminderDependencies struct {
	Queue        reminder.Queue
	TicketRepo   repository.TicketRepository
	Publisher    events.Publisher
	Logger       *zap.Logger
	Clock        Clock
	FirstDelay   time.Duration
	DailyHourUTC int
}

// NewReminderService creates the service.
func NewReminderService(deps ReminderDependencies) *ReminderService {
	logger := loggerOrNop(deps.Logger)
	first := deps.FirstDelay
	if first <= 0 {
		first = 2 * time.Minute
	}
	return &ReminderService{
		queue:      deps.Queue,
		tickets:    deps.TicketRepo,
		events:     publisher{pub: deps.Publisher, logger: logger},
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
		firstDelay: first,
		dailyHour:  deps.DailyHourUTC,
	}
}

// Schedule starts or restarts the ticket's chain with the first reminder.
func (s *ReminderService) Schedule(ctx context.Context, ticketID string) error {
	return s.queue.Schedule(ctx, ticketID, s.now().Add(s.firstDelay))
}

// Cancel drops the ticket's pending reminder.
func (s *ReminderService) Cancel(ctx context.Context, ticketID string) error {
	return s.queue.Cancel(ctx, ticketID)
}

// ProcessDue sends every due reminder and returns how many were sent. A
// ticket no longer open or routed ends its chain.
func (s *ReminderService) ProcessDue(ctx context.Context) (int, error) {
	now := s.now()
	ids, err := s.queue.ClaimDue(ctx, now, reminderBatchSize)
	if err != nil && len(ids) == 0 {
		return 0, fmt.Errorf("claim reminders: %w", err)
	}

	sent := 0
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	for _, id := range ids {
		ticket, err := s.tickets.GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("load ticket %s: %w", id, err))
			// put it back so the next poll retries
			if err := s.queue.Schedule(ctx, id, now.Add(time.Minute)); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if ticket.Status != domain.TicketStatusOpen || ticket.DepartmentID == nil {
			continue
		}

		s.events.emit(ctx, events.EventTicketReminder, ticket.ID, nil, events.TicketReminderPayload{
			TicketNumber: ticket.TicketNumber,
			Title:        ticket.Title,
			DepartmentID: *ticket.DepartmentID,
			AgentID:      ticket.AssignedAgentID,
		})
		sent++
		if err := s.queue.Schedule(ctx, ticket.ID, reminder.NextDaily(now, s.dailyHour)); err != nil {
			errs = append(errs, fmt.Errorf("reschedule %s: %w", ticket.ID, err))
		}
	}
	if sent > 0 {
		s.logger.Info("ticket reminders sent", zap.Int("count", sent))
	}
	return sent, errors.Join(errs...)
}
