package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/mailer"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// LetterService handles business correspondence addressed to PEBEC or an MDA.
type LetterService struct {
	letters     repository.LetterRepository
	departments repository.DepartmentRepository
	events      publisher
	logger      *zap.Logger
}

// LetterDependencies bundles collaborators.
type LetterDependencies struct {
	LetterRepo     repository.LetterRepository
	DepartmentRepo repository.DepartmentRepository
	Publisher      events.Publisher
	Logger         *zap.Logger
}

// NewLetterService builds the service.
func NewLetterService(deps LetterDependencies) *LetterService {
	logger := loggerOrNop(deps.Logger)
	return &LetterService{
		letters:     deps.LetterRepo,
		departments: deps.DepartmentRepo,
		events:      publisher{pub: deps.Publisher, logger: logger},
		logger:      logger,
	}
}

// LetterInput is a submitted letter.
type LetterInput struct {
	Title          string
	Body           string
	CompanyName    string
	ContactEmail   string
	DepartmentName string
	Attachments    []string
}

// LetterListFilter narrows listings.
type LetterListFilter struct {
	DepartmentID *string
	Status       *domain.LetterStatus
	Limit        int
	Offset       int
}

// Submit stores a letter and alerts admins plus the addressed department.
func (s *LetterService) Submit(ctx context.Context, caller *domain.User, input LetterInput) (*domain.Letter, error) {
	if _, err := policy.Authorize(caller, policy.LetterCreate, nil); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "is required"
	}
	if strings.TrimSpace(input.Body) == "" {
		details["body"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid letter", details)
	}

	dept, err := activeDepartment(ctx, s.departments, input.DepartmentName)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	email := strings.TrimSpace(input.ContactEmail)
	if email == "" {
		email = caller.Email
	}

	letter := &domain.Letter{
		SenderID:     caller.ID,
		Title:        strings.TrimSpace(input.Title),
		Body:         strings.TrimSpace(input.Body),
		CompanyName:  strings.TrimSpace(input.CompanyName),
		ContactEmail: email,
		Attachments:  input.Attachments,
		Status:       domain.LetterStatusPending,
	}
	audience := events.Audience{Roles: []domain.Role{domain.RoleAdmin}}
	fields := []mailer.Field{{Label: "Title", Value: letter.Title}, {Label: "Company", Value: letter.CompanyName}}
	if dept != nil {
		letter.DepartmentID = &dept.ID
		audience.DepartmentID = &dept.ID
		fields = append(fields, mailer.Field{Label: "Department", Value: dept.Name})
	}
	if err := s.letters.Create(ctx, letter); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.events.notify(ctx, letter.ID, caller, events.NotifyPayload{
		Audience:   audience,
		Type:       domain.NotificationLetter,
		Message:    "New letter: " + letter.Title,
		HTML:       mailer.Render("New letter received", "A business letter was submitted on the portal.", fields, ""),
		EntityType: "letter",
		EntityID:   strPtr(letter.ID),
	})
	return letter, nil
}

// Get returns a letter the caller may read.
func (s *LetterService) Get(ctx context.Context, caller *domain.User, id string) (*domain.Letter, error) {
	return s.loadAuthorized(ctx, caller, policy.LetterRead, id)
}

// List returns every letter for admins, the department's for MDA users and
// the caller's own otherwise.
func (s *LetterService) List(ctx context.Context, caller *domain.User, filter LetterListFilter) ([]domain.Letter, error) {
	scope, err := policy.Authorize(caller, policy.LetterRead, nil)
	if err != nil {
		return nil, err
	}
	repoFilter := repository.LetterFilter{Status: filter.Status, Limit: filter.Limit, Offset: filter.Offset}
	switch {
	case scope.Has(policy.ScopeAll):
		repoFilter.DepartmentID = trimmedPtr(filter.DepartmentID)
	case scope.Has(policy.ScopeDepartment) && caller.DepartmentID != nil:
		repoFilter.DepartmentID = caller.DepartmentID
	default:
		repoFilter.SenderID = &caller.ID
	}
	letters, err := s.letters.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return letters, nil
}

// UpdateStatus moves a letter forward. Responding requires a note.
func (s *LetterService) UpdateStatus(ctx context.Context, caller *domain.User, id string, status domain.LetterStatus, note string) (*domain.Letter, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}
	note = strings.TrimSpace(note)
	if status == domain.LetterStatusResponded && note == "" {
		return nil, apperrors.NewValidationError("response note is required", map[string]any{"response_note": "is required when responding"})
	}
	letter, err := s.loadAuthorized(ctx, caller, policy.LetterUpdateStatus, id)
	if err != nil {
		return nil, err
	}
	if letterRank(status) <= letterRank(letter.Status) {
		return nil, apperrors.NewConflict("letter status can only move forward", map[string]any{
			"from": string(letter.Status),
			"to":   string(status),
		})
	}

	letter.Status = status
	if note != "" {
		letter.ResponseNote = &note
	}
	if err := s.letters.UpdateStatus(ctx, letter); err != nil {
		return nil, notFoundOr(err, "letter", map[string]any{"letter_id": id})
	}

	fields := []mailer.Field{{Label: "Letter", Value: letter.Title}, {Label: "Status", Value: string(status)}, {Label: "Response", Value: note}}
	s.events.notify(ctx, letter.ID, caller, events.NotifyPayload{
		Audience:   events.Audience{UserIDs: []string{letter.SenderID}, Emails: []string{letter.ContactEmail}},
		Type:       domain.NotificationLetter,
		Message:    "Your letter \"" + letter.Title + "\" is now " + string(status),
		HTML:       mailer.Render("Letter update", "Your letter has been updated.", fields, ""),
		EntityType: "letter",
		EntityID:   strPtr(letter.ID),
	})
	return letter, nil
}

func (s *LetterService) loadAuthorized(ctx context.Context, caller *domain.User, action policy.Action, id string) (*domain.Letter, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	letter, err := s.letters.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "letter", map[string]any{"letter_id": id})
	}
	if _, err := policy.Authorize(caller, action, &policy.Resource{OwnerID: letter.SenderID, DepartmentID: letter.DepartmentID}); err != nil {
		return nil, err
	}
	return letter, nil
}

func letterRank(s domain.LetterStatus) int {
	switch s {
	case domain.LetterStatusAcknowledged:
		return 1
	case domain.LetterStatusResponded:
		return 2
	}
	return 0
}
