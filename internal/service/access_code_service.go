package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/auth"
	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/mailer"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// AccessCodeService rotates and checks role access codes.
type AccessCodeService struct {
	codes      repository.AccessCodeRepository
	events     publisher
	logger     *zap.Logger
	bcryptCost int
}

// AccessCodeDependencies bundles collaborators.
type AccessCodeDependencies struct {
	AccessCodeRepo repository.AccessCodeRepository
	Publisher      events.Publisher
	Logger         *zap.Logger
	BcryptCost     int
}

// NewAccessCodeService builds the service.
func NewAccessCodeService(deps AccessCodeDependencies) *AccessCodeService {
	logger := loggerOrNop(deps.Logger)
	return &AccessCodeService{
		codes:      deps.AccessCodeRepo,
		events:     publisher{pub: deps.Publisher, logger: logger},
		logger:     logger,
		bcryptCost: deps.BcryptCost,
	}
}

// Rotate issues a new code for every gated role and mails them to the
// administrators. A nil caller is the monthly scheduled run.
func (s *AccessCodeService) Rotate(ctx context.Context, caller *domain.User) (map[domain.Role]string, error) {
	if caller != nil {
		if err := policy.RequireAll(caller, policy.AccessCodeRotate); err != nil {
			return nil, err
		}
	}

	issued := make(map[domain.Role]string, len(domain.GatedRoles))
	fields := make([]mailer.Field, 0, len(domain.GatedRoles))
	for _, role := range domain.GatedRoles {
		code, err := auth.GenerateCode()
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		hash, err := auth.HashCode(code, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if _, err := s.codes.Replace(ctx, role, hash); err != nil {
			return nil, apperrors.MapError(err)
		}
		issued[role] = code
		fields = append(fields, mailer.Field{Label: string(role), Value: code})
	}

	// Every admin needs the codes, including the one who rotated them.
	s.events.notify(ctx, "access_codes", nil, events.NotifyPayload{
		Audience:   events.Audience{Roles: []domain.Role{domain.RoleAdmin}},
		Type:       domain.NotificationAccessCode,
		Message:    "Role access codes were rotated",
		Subject:    "New PEBEC role access codes",
		HTML:       mailer.Render("New role access codes", "The access codes below replace all previous codes.", fields, ""),
		EntityType: "access_code",
	})
	s.logger.Info("access codes rotated", zap.Int("roles", len(issued)))
	return issued, nil
}

// Verify reports whether code matches an active code for role.
func (s *AccessCodeService) Verify(ctx context.Context, role domain.Role, code string) (bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return false, nil
	}
	active, err := s.codes.ListActiveByRole(ctx, role)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	for _, c := range active {
		if auth.CompareCode(c.CodeHash, code) == nil {
			return true, nil
		}
	}
	return false, nil
}
