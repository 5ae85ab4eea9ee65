package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// SaberService covers SABER programme materials, DLI progress and BERAP documents.
type SaberService struct {
	saber  repository.SaberRepository
	events publisher
	logger *zap.Logger
	now    Clock
}

// SaberDependencies bundles collaborators.
type SaberDependencies struct {
	SaberRepo repository.SaberRepository
	Publisher events.Publisher
	Logger    *zap.Logger
	Clock     Clock
}

// NewSaberService builds the service.
func NewSaberService(deps SaberDependencies) *SaberService {
	logger := loggerOrNop(deps.Logger)
	return &SaberService{
		saber:  deps.SaberRepo,
		events: publisher{pub: deps.Publisher, logger: logger},
		logger: logger,
		now:    clockOrDefault(deps.Clock),
	}
}

// MaterialInput describes an uploaded programme document.
type MaterialInput struct {
	Title        string
	Description  string
	FileKey      string
	VisibleRoles []domain.Role
}

// CreateMaterial records a document. No roles means visible to everyone.
func (s *SaberService) CreateMaterial(ctx context.Context, caller *domain.User, input MaterialInput) (*domain.SaberMaterial, error) {
	if err := policy.RequireAll(caller, policy.SaberMaterialManage); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "is required"
	}
	if strings.TrimSpace(input.FileKey) == "" {
		details["file_key"] = "is required"
	}
	for _, r := range input.VisibleRoles {
		if !r.Valid() {
			details["visible_roles"] = fmt.Sprintf("unknown role %q", r)
		}
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid material", details)
	}
	m := &domain.SaberMaterial{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		FileKey:      strings.TrimSpace(input.FileKey),
		VisibleRoles: input.VisibleRoles,
		UploadedBy:   caller.ID,
	}
	if err := s.saber.CreateMaterial(ctx, m); err != nil {
		return nil, apperrors.MapError(err)
	}
	return m, nil
}

// ListMaterials returns what the caller's role may see; admins see everything.
func (s *SaberService) ListMaterials(ctx context.Context, caller *domain.User) ([]domain.SaberMaterial, error) {
	if _, err := policy.Authorize(caller, policy.SaberMaterialRead, nil); err != nil {
		return nil, err
	}
	all, err := s.saber.ListMaterials(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if policy.Can(caller, policy.SaberMaterialManage, nil) {
		return all, nil
	}
	visible := make([]domain.SaberMaterial, 0, len(all))
	for i := range all {
		if all[i].VisibleTo(caller.Role) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// CreateDLI starts tracking one indicator for one state.
func (s *SaberService) CreateDLI(ctx context.Context, caller *domain.User, state, code, title string, steps []string) (*domain.DLIProgress, error) {
	if err := policy.RequireAll(caller, policy.DLIManage); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(state) == "" {
		details["state"] = "is required"
	}
	if strings.TrimSpace(code) == "" {
		details["dli_code"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid DLI", details)
	}
	d := &domain.DLIProgress{
		State:   strings.TrimSpace(state),
		DLICode: strings.TrimSpace(code),
		Title:   strings.TrimSpace(title),
		Steps:   newSteps(steps),
	}
	if err := s.saber.CreateDLI(ctx, d); err != nil {
		return nil, conflictOr(err, "DLI already tracked for state", map[string]any{"state": d.State, "dli_code": d.DLICode})
	}
	return d, nil
}

// CompleteDLIStep ticks one step. Completing a done step is a no-op.
func (s *SaberService) CompleteDLIStep(ctx context.Context, caller *domain.User, id string, index int) (*domain.DLIProgress, error) {
	if _, err := policy.Authorize(caller, policy.DLIUpdate, nil); err != nil {
		return nil, err
	}
	d, err := s.saber.GetDLI(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "dli", map[string]any{"dli_id": id})
	}
	changed, err := completeStep(d.Steps, index, caller.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		return d, nil
	}
	d.UpdatedBy = &caller.ID
	if err := s.saber.UpdateDLISteps(ctx, d); err != nil {
		return nil, notFoundOr(err, "dli", map[string]any{"dli_id": id})
	}
	s.events.notify(ctx, d.ID, caller, events.NotifyPayload{
		Audience:   events.Audience{Roles: []domain.Role{domain.RoleAdmin}},
		Type:       domain.NotificationSaber,
		Message:    fmt.Sprintf("%s %s is %d%% complete", d.State, d.DLICode, d.Percent()),
		EntityType: "dli",
		EntityID:   strPtr(d.ID),
	})
	return d, nil
}

// ListDLI lists progress, optionally for one state.
func (s *SaberService) ListDLI(ctx context.Context, caller *domain.User, state *string) ([]domain.DLIProgress, error) {
	if _, err := policy.Authorize(caller, policy.DLIRead, nil); err != nil {
		return nil, err
	}
	list, err := s.saber.ListDLI(ctx, trimmedPtr(state))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// UpsertBerap stores the action plan for a year, replacing any earlier upload.
func (s *SaberService) UpsertBerap(ctx context.Context, caller *domain.User, year int, title, fileKey, summary string) (*domain.BerapDocument, error) {
	if err := policy.RequireAll(caller, policy.BerapManage); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if year < 2000 || year > 2100 {
		details["year"] = "is out of range"
	}
	if strings.TrimSpace(fileKey) == "" {
		details["file_key"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid BERAP document", details)
	}
	b := &domain.BerapDocument{
		Year:      year,
		Title:     strings.TrimSpace(title),
		FileKey:   strings.TrimSpace(fileKey),
		Summary:   strings.TrimSpace(summary),
		UpdatedBy: caller.ID,
	}
	if err := s.saber.UpsertBerap(ctx, b); err != nil {
		return nil, apperrors.MapError(err)
	}
	return b, nil
}

// GetBerap returns one year's plan.
func (s *SaberService) GetBerap(ctx context.Context, caller *domain.User, year int) (*domain.BerapDocument, error) {
	if _, err := policy.Authorize(caller, policy.BerapRead, nil); err != nil {
		return nil, err
	}
	b, err := s.saber.GetBerapByYear(ctx, year)
	if err != nil {
		return nil, notFoundOr(err, "berap", map[string]any{"year": year})
	}
	return b, nil
}

// ListBerap lists every year's plan.
func (s *SaberService) ListBerap(ctx context.Context, caller *domain.User) ([]domain.BerapDocument, error) {
	if _, err := policy.Authorize(caller, policy.BerapRead, nil); err != nil {
		return nil, err
	}
	list, err := s.saber.ListBerap(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func newSteps(titles []string) []domain.ProgressStep {
	steps := make([]domain.ProgressStep, 0, len(titles))
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			steps = append(steps, domain.ProgressStep{Title: t})
		}
	}
	return steps
}

// completeStep marks steps[index] done and reports whether anything changed.
func completeStep(steps []domain.ProgressStep, index int, userID string, at time.Time) (bool, error) {
	if index < 0 || index >= len(steps) {
		return false, apperrors.NewValidationError("step index out of range", map[string]any{"step": index, "steps": len(steps)})
	}
	if steps[index].Completed {
		return false, nil
	}
	steps[index].Completed = true
	steps[index].CompletedAt = &at
	steps[index].CompletedBy = &userID
	return true, nil
}
