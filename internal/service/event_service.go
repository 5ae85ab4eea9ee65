package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/mailer"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// EventService runs public events and their registrations.
type EventService struct {
	events   repository.EventRepository
	numberer *Numberer
	notices  publisher
	logger   *zap.Logger
	now      Clock
}

// EventDependencies bundles collaborators.
type EventDependencies struct {
	EventRepo repository.EventRepository
	Numberer  *Numberer
	Publisher events.Publisher
	Logger    *zap.Logger
	Clock     Clock
}

// NewEventService builds the service.
func NewEventService(deps EventDependencies) *EventService {
	logger := loggerOrNop(deps.Logger)
	return &EventService{
		events:   deps.EventRepo,
		numberer: deps.Numberer,
		notices:  publisher{pub: deps.Publisher, logger: logger},
		logger:   logger,
		now:      clockOrDefault(deps.Clock),
	}
}

// EventInput describes a new event.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Capacity    int
}

// RegistrationInput is a public RSVP.
type RegistrationInput struct {
	Name         string
	Email        string
	Phone        string
	Organization string
}

// CreateEvent publishes an event. Capacity zero means unlimited.
func (s *EventService) CreateEvent(ctx context.Context, caller *domain.User, input EventInput) (*domain.Event, error) {
	if err := policy.RequireAll(caller, policy.EventManage); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "is required"
	}
	if input.StartsAt.IsZero() {
		details["starts_at"] = "is required"
	}
	if !input.EndsAt.IsZero() && input.EndsAt.Before(input.StartsAt) {
		details["ends_at"] = "must not be before starts_at"
	}
	if input.Capacity < 0 {
		details["capacity"] = "must not be negative"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid event", details)
	}
	endsAt := input.EndsAt
	if endsAt.IsZero() {
		endsAt = input.StartsAt
	}

	event := &domain.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      endsAt.UTC(),
		Capacity:    input.Capacity,
		CreatedBy:   caller.ID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

// ListEvents lists events; upcoming hides those that already ended.
func (s *EventService) ListEvents(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	var after *time.Time
	if upcoming {
		now := s.now().UTC()
		after = &now
	}
	list, err := s.events.List(ctx, after)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// GetEvent returns one event.
func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event", map[string]any{"event_id": id})
	}
	return event, nil
}

// Register books a seat and mails the registration number. caller may be nil.
func (s *EventService) Register(ctx context.Context, caller *domain.User, eventID string, input RegistrationInput) (*domain.EventRegistration, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "is required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details["email"] = "must be a valid email address"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.EndsAt.Before(s.now()) {
		return nil, apperrors.NewConflict("event has ended", map[string]any{"event_id": eventID})
	}

	number, err := s.numberer.RegistrationNumber(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	reg := &domain.EventRegistration{
		EventID:            event.ID,
		RegistrationNumber: number,
		Name:               strings.TrimSpace(input.Name),
		Email:              email,
		Phone:              strings.TrimSpace(input.Phone),
		Organization:       strings.TrimSpace(input.Organization),
		UserID:             actorID(caller),
	}
	switch err := s.events.Register(ctx, reg); {
	case errors.Is(err, repository.ErrCapacityReached):
		return nil, apperrors.NewConflict("event is full", map[string]any{"event_id": eventID, "capacity": event.Capacity})
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperrors.NewConflict("email already registered for this event", map[string]any{"email": email})
	case err != nil:
		return nil, notFoundOr(err, "event", map[string]any{"event_id": eventID})
	}

	fields := []mailer.Field{
		{Label: "Registration number", Value: reg.RegistrationNumber},
		{Label: "Event", Value: event.Title},
		{Label: "Location", Value: event.Location},
		{Label: "Starts", Value: event.StartsAt.Format(time.RFC1123)},
	}
	s.notices.notify(ctx, reg.ID, nil, events.NotifyPayload{
		Audience:   events.Audience{Emails: []string{reg.Email}},
		Type:       domain.NotificationEvent,
		Message:    "Registration confirmed: " + event.Title,
		HTML:       mailer.Render("You are registered", "Keep your registration number for check-in.", fields, ""),
		EntityType: "event",
		EntityID:   strPtr(event.ID),
	})
	return reg, nil
}

// ListRegistrations lists an event's RSVPs.
func (s *EventService) ListRegistrations(ctx context.Context, caller *domain.User, eventID string) ([]domain.EventRegistration, error) {
	if err := policy.RequireAll(caller, policy.EventManage); err != nil {
		return nil, err
	}
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.events.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return regs, nil
}

// CheckIn marks attendance by registration number, once.
func (s *EventService) CheckIn(ctx context.Context, caller *domain.User, number string) (*domain.EventRegistration, error) {
	if err := policy.RequireAll(caller, policy.EventManage); err != nil {
		return nil, err
	}
	number = strings.ToUpper(strings.TrimSpace(number))
	reg, err := s.events.GetRegistrationByNumber(ctx, number)
	if err != nil {
		return nil, notFoundOr(err, "registration", map[string]any{"registration_number": number})
	}
	now := s.now().UTC()
	ok, err := s.events.CheckIn(ctx, reg.ID, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewConflict("registration already checked in", map[string]any{
			"registration_number": number,
			"checked_in_at":       reg.CheckedInAt,
		})
	}
	reg.CheckedInAt = &now
	return reg, nil
}
