package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// ReportService handles report templates and submissions.
type ReportService struct {
	reports repository.ReportRepository
	events  publisher
	logger  *zap.Logger
	now     Clock
}

// ReportDependencies bundles collaborators.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	Publisher  events.Publisher
	Logger     *zap.Logger
	Clock      Clock
}

// NewReportService builds the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := loggerOrNop(deps.Logger)
	return &ReportService{
		reports: deps.ReportRepo,
		events:  publisher{pub: deps.Publisher, logger: logger},
		logger:  logger,
		now:     clockOrDefault(deps.Clock),
	}
}

// CreateTemplate defines a report form.
func (s *ReportService) CreateTemplate(ctx context.Context, caller *domain.User, name, description string, fields []domain.ReportField) (*domain.ReportTemplate, error) {
	if err := policy.RequireAll(caller, policy.ReportTemplateManage); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"name": "is required"})
	}
	seen := map[string]bool{}
	clean := make([]domain.ReportField, 0, len(fields))
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, apperrors.NewValidationError("field name is required", map[string]any{"field_index": i})
		}
		if seen[f.Name] {
			return nil, apperrors.NewValidationError("duplicate field name", map[string]any{"field": f.Name})
		}
		seen[f.Name] = true
		if strings.TrimSpace(f.Label) == "" {
			f.Label = f.Name
		}
		clean = append(clean, f)
	}

	tpl := &domain.ReportTemplate{
		Name:        name,
		Description: strings.TrimSpace(description),
		Fields:      clean,
		CreatedBy:   caller.ID,
	}
	if err := s.reports.CreateTemplate(ctx, tpl); err != nil {
		return nil, conflictOr(err, "report template already exists", map[string]any{"name": name})
	}
	return tpl, nil
}

// ListTemplates lists report templates for any signed-in user.
func (s *ReportService) ListTemplates(ctx context.Context, caller *domain.User) ([]domain.ReportTemplate, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	list, err := s.reports.ListTemplates(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// SubmitReport files values against a template. Every required field must
// carry a non-blank value.
func (s *ReportService) SubmitReport(ctx context.Context, caller *domain.User, templateID string, values map[string]string) (*domain.SubmittedReport, error) {
	if _, err := policy.Authorize(caller, policy.ReportSubmit, nil); err != nil {
		return nil, err
	}
	tpl, err := s.reports.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, notFoundOr(err, "report template", map[string]any{"template_id": templateID})
	}
	if missing := MissingReportFields(tpl.Fields, values); len(missing) > 0 {
		return nil, apperrors.NewValidationError("required fields missing", map[string]any{"missing_fields": missing})
	}

	known := make(map[string]bool, len(tpl.Fields))
	for _, f := range tpl.Fields {
		known[f.Name] = true
	}
	kept := make(map[string]string, len(values))
	for k, v := range values {
		if known[k] {
			kept[k] = strings.TrimSpace(v)
		}
	}

	rep := &domain.SubmittedReport{
		TemplateID:  tpl.ID,
		SubmittedBy: caller.ID,
		Values:      kept,
		Status:      domain.ReportSubmitted,
	}
	if err := s.reports.CreateSubmission(ctx, rep); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.events.notify(ctx, rep.ID, caller, events.NotifyPayload{
		Audience:   events.Audience{Roles: []domain.Role{domain.RoleAdmin}},
		Type:       domain.NotificationReport,
		Message:    caller.Name + " submitted " + tpl.Name,
		EntityType: "report",
		EntityID:   strPtr(rep.ID),
	})
	return rep, nil
}

// MissingReportFields lists required fields without a value, sorted.
func MissingReportFields(fields []domain.ReportField, values map[string]string) []string {
	var missing []string
	for _, f := range fields {
		if f.Required && strings.TrimSpace(values[f.Name]) == "" {
			missing = append(missing, f.Name)
		}
	}
	sort.Strings(missing)
	return missing
}

// ListSubmissions returns all submissions to admins and the caller's own otherwise.
func (s *ReportService) ListSubmissions(ctx context.Context, caller *domain.User, filter repository.ReportFilter) ([]domain.SubmittedReport, error) {
	scope, err := policy.Authorize(caller, policy.ReportRead, nil)
	if err != nil {
		return nil, err
	}
	if !scope.Has(policy.ScopeAll) {
		filter.SubmittedBy = &caller.ID
	}
	list, err := s.reports.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// ReviewSubmission approves or rejects a submission and tells the submitter.
func (s *ReportService) ReviewSubmission(ctx context.Context, caller *domain.User, id string, status domain.ReportStatus, note string) (*domain.SubmittedReport, error) {
	if err := policy.RequireAll(caller, policy.ReportReview); err != nil {
		return nil, err
	}
	if status != domain.ReportApproved && status != domain.ReportRejected {
		return nil, apperrors.NewValidationError("invalid review status", map[string]any{"status": string(status)})
	}
	rep, err := s.reports.GetSubmission(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "report", map[string]any{"report_id": id})
	}

	now := s.now().UTC()
	rep.Status = status
	rep.ReviewNote = trimmedPtr(&note)
	rep.ReviewedBy = &caller.ID
	rep.ReviewedAt = &now
	if err := s.reports.Review(ctx, rep); err != nil {
		return nil, notFoundOr(err, "report", map[string]any{"report_id": id})
	}
	s.events.notify(ctx, rep.ID, caller, events.NotifyPayload{
		Audience:   events.Audience{UserIDs: []string{rep.SubmittedBy}},
		Type:       domain.NotificationReport,
		Message:    "Your report was " + string(status),
		EntityType: "report",
		EntityID:   strPtr(rep.ID),
	})
	return rep, nil
}
