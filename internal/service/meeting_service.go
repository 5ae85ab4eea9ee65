package service

import (
	"context"
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

// MeetingService schedules meetings and tracks attendee responses.
type MeetingService struct {
	meetings repository.MeetingRepository
	users    repository.UserRepository
	events   publisher
	logger   *zap.Logger
	loc      *time.Location
}

// MeetingDependencies bundles collaborators.
type MeetingDependencies struct {
	MeetingRepo repository.MeetingRepository
	UserRepo    repository.UserRepository
	Publisher   events.Publisher
	Logger      *zap.Logger
	Location    *time.Location
}

// NewMeetingService builds the service.
func NewMeetingService(deps MeetingDependencies) *MeetingService {
	logger := loggerOrNop(deps.Logger)
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &MeetingService{
		meetings: deps.MeetingRepo,
		users:    deps.UserRepo,
		events:   publisher{pub: deps.Publisher, logger: logger},
		logger:   logger,
		loc:      loc,
	}
}

// MeetingInput describes a meeting to schedule.
type MeetingInput struct {
	Title     string
	Agenda    string
	Location  string
	StartsAt  time.Time
	EndsAt    time.Time
	Attendees []string
}

// Schedule creates a meeting and invites the attendees.
func (s *MeetingService) Schedule(ctx context.Context, caller *domain.User, input MeetingInput) (*domain.Meeting, error) {
	if _, err := policy.Authorize(caller, policy.MeetingSchedule, nil); err != nil {
		return nil, err
	}
	attendees := uniqueIDs(input.Attendees, caller.ID)
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "is required"
	}
	if len(attendees) == 0 {
		details["attendees"] = "at least one attendee is required"
	}
	validateWindow(input.StartsAt, input.EndsAt, details)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid meeting", details)
	}
	for _, id := range attendees {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return nil, notFoundOr(err, "user", map[string]any{"user_id": id})
		}
	}

	m := &domain.Meeting{
		Title:       strings.TrimSpace(input.Title),
		Agenda:      strings.TrimSpace(input.Agenda),
		Location:    strings.TrimSpace(input.Location),
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      input.EndsAt.UTC(),
		OrganizerID: caller.ID,
		Attendees:   attendees,
		Accepted:    []string{},
		Declined:    []string{},
		Status:      domain.MeetingScheduled,
	}
	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.tellAttendees(ctx, caller, m, "Meeting invitation: "+m.Title, "You have been invited to a meeting.")
	return m, nil
}

// Respond records an attendee's accept or decline and tells the organizer.
func (s *MeetingService) Respond(ctx context.Context, caller *domain.User, id string, accept bool) (*domain.Meeting, error) {
	if _, err := policy.Authorize(caller, policy.MeetingRespond, nil); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsAttendee(caller.ID) {
		return nil, apperrors.NewForbidden("only invited attendees can respond")
	}
	if m.Status == domain.MeetingCancelled {
		return nil, apperrors.NewConflict("meeting is cancelled", map[string]any{"meeting_id": id})
	}
	m.Respond(caller.ID, accept)
	if err := s.meetings.Update(ctx, m); err != nil {
		return nil, notFoundOr(err, "meeting", map[string]any{"meeting_id": id})
	}

	verb := "declined"
	if accept {
		verb = "accepted"
	}
	s.events.notify(ctx, m.ID, caller, events.NotifyPayload{
		Audience:   events.Audience{UserIDs: []string{m.OrganizerID}},
		Type:       domain.NotificationMeeting,
		Message:    caller.Name + " " + verb + " " + m.Title,
		EntityType: "meeting",
		EntityID:   strPtr(m.ID),
	})
	return m, nil
}

// Reschedule moves a meeting and clears every response.
func (s *MeetingService) Reschedule(ctx context.Context, caller *domain.User, id string, startsAt, endsAt time.Time) (*domain.Meeting, error) {
	details := map[string]any{}
	validateWindow(startsAt, endsAt, details)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid meeting time", details)
	}
	m, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if m.Status == domain.MeetingCancelled {
		return nil, apperrors.NewConflict("meeting is cancelled", map[string]any{"meeting_id": id})
	}
	m.StartsAt = startsAt.UTC()
	m.EndsAt = endsAt.UTC()
	m.Accepted = []string{}
	m.Declined = []string{}
	m.Status = domain.MeetingRescheduled
	if err := s.meetings.Update(ctx, m); err != nil {
		return nil, notFoundOr(err, "meeting", map[string]any{"meeting_id": id})
	}
	s.tellAttendees(ctx, caller, m, "Meeting rescheduled: "+m.Title, "A meeting you were invited to has moved. Please respond again.")
	return m, nil
}

// Cancel cancels a meeting. Cancelling twice is a no-op.
func (s *MeetingService) Cancel(ctx context.Context, caller *domain.User, id string) (*domain.Meeting, error) {
	m, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if m.Status == domain.MeetingCancelled {
		return m, nil
	}
	m.Status = domain.MeetingCancelled
	if err := s.meetings.Update(ctx, m); err != nil {
		return nil, notFoundOr(err, "meeting", map[string]any{"meeting_id": id})
	}
	s.tellAttendees(ctx, caller, m, "Meeting cancelled: "+m.Title, "A meeting you were invited to was cancelled.")
	return m, nil
}

// ListMine lists meetings the caller organizes or attends.
func (s *MeetingService) ListMine(ctx context.Context, caller *domain.User) ([]domain.Meeting, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	list, err := s.meetings.ListForUser(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *MeetingService) load(ctx context.Context, id string) (*domain.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "meeting", map[string]any{"meeting_id": id})
	}
	return m, nil
}

func (s *MeetingService) loadManaged(ctx context.Context, caller *domain.User, id string) (*domain.Meeting, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := policy.Authorize(caller, policy.MeetingManage, &policy.Resource{OwnerID: m.OrganizerID}); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MeetingService) tellAttendees(ctx context.Context, caller *domain.User, m *domain.Meeting, message, intro string) {
	fields := []mailer.Field{
		{Label: "Meeting", Value: m.Title},
		{Label: "When", Value: m.StartsAt.In(s.loc).Format("Mon 2 Jan 2006 15:04 MST")},
		{Label: "Where", Value: m.Location},
		{Label: "Agenda", Value: m.Agenda},
	}
	s.events.notify(ctx, m.ID, caller, events.NotifyPayload{
		Audience:   events.Audience{UserIDs: m.Attendees},
		Type:       domain.NotificationMeeting,
		Message:    message,
		HTML:       mailer.Render(message, intro, fields, ""),
		EntityType: "meeting",
		EntityID:   strPtr(m.ID),
	})
}

func validateWindow(start, end time.Time, details map[string]any) {
	if start.IsZero() {
		details["starts_at"] = "is required"
	}
	if end.IsZero() {
		details["ends_at"] = "is required"
	} else if !end.After(start) {
		details["ends_at"] = "must be after starts_at"
	}
}

// uniqueIDs trims, dedups and drops blanks and the excluded id.
func uniqueIDs(ids []string, exclude string) []string {
	seen := map[string]bool{exclude: true, "": true}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
