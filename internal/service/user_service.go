package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// Identity provider webhook event types.
const (
	IdentityUserCreated = "user.created"
	IdentityUserUpdated = "user.updated"
	IdentityUserDeleted = "user.deleted"
)

// IdentityEvent is a user sync event from the identity provider.
type IdentityEvent struct {
	Type string       `json:"type"`
	Data IdentityUser `json:"data"`
}

// IdentityUser is the provider's view of an account.
type IdentityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	State string `json:"state"`
	Role  string `json:"role"`
}

// UserService mirrors identity accounts and manages portal roles.
type UserService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	codes       *AccessCodeService
	logger      *zap.Logger
}

// UserDependencies bundles collaborators.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	AccessCodes    *AccessCodeService
	Logger         *zap.Logger
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		codes:       deps.AccessCodes,
		logger:      loggerOrNop(deps.Logger),
	}
}

// SyncIdentity applies a provider webhook. Profile fields always follow the
// provider; the role only when the provider sends a known one.
func (s *UserService) SyncIdentity(ctx context.Context, event IdentityEvent) error {
	externalID := strings.TrimSpace(event.Data.ID)
	if externalID == "" {
		return apperrors.NewValidationError("missing user id", map[string]any{"data.id": "is required"})
	}

	switch event.Type {
	case IdentityUserCreated, IdentityUserUpdated:
		user := &domain.User{
			ExternalID: externalID,
			Name:       strings.TrimSpace(event.Data.Name),
			Email:      strings.ToLower(strings.TrimSpace(event.Data.Email)),
			Phone:      strings.TrimSpace(event.Data.Phone),
			State:      strings.TrimSpace(event.Data.State),
		}
		if role := domain.Role(event.Data.Role); role.Valid() {
			user.Role = role
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			return apperrors.MapError(err)
		}
		s.logger.Info("identity synced", zap.String("type", event.Type), zap.String("user_id", user.ID))
		return nil
	case IdentityUserDeleted:
		deleted, err := s.users.DeleteByExternalID(ctx, externalID)
		if err != nil {
			return apperrors.MapError(err)
		}
		s.logger.Info("identity deleted", zap.String("external_id", externalID), zap.Bool("found", deleted))
		return nil
	default:
		return apperrors.NewValidationError("unsupported event type", map[string]any{"type": event.Type})
	}
}

// Me returns the caller.
func (s *UserService) Me(_ context.Context, caller *domain.User) (*domain.User, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return caller, nil
}

// ListUsers lists portal users for administrators.
func (s *UserService) ListUsers(ctx context.Context, caller *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := policy.RequireAll(caller, policy.UserList); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// AssignRole sets a user's role and department in one statement.
func (s *UserService) AssignRole(ctx context.Context, caller *domain.User, userID string, role domain.Role, departmentID *string) (*domain.User, error) {
	if err := policy.RequireAll(caller, policy.UserAssignRole); err != nil {
		return nil, err
	}
	return s.assign(ctx, userID, role, departmentID)
}

// ElevateWithAccessCode lets a signed-in user claim a gated role with the
// current access code for that role.
func (s *UserService) ElevateWithAccessCode(ctx context.Context, caller *domain.User, role domain.Role, code string, departmentID *string) (*domain.User, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !isGated(role) {
		return nil, apperrors.NewValidationError("role cannot be claimed with an access code", map[string]any{"role": string(role)})
	}
	ok, err := s.codes.Verify(ctx, role, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewForbidden("invalid access code")
	}
	return s.assign(ctx, caller.ID, role, departmentID)
}

func (s *UserService) assign(ctx context.Context, userID string, role domain.Role, departmentID *string) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(role)})
	}
	departmentID = trimmedPtr(departmentID)
	if departmentID != nil {
		if _, err := s.departments.GetByID(ctx, *departmentID); err != nil {
			return nil, notFoundOr(err, "department", map[string]any{"department_id": *departmentID})
		}
	}
	if role == domain.RoleMDA && departmentID == nil {
		return nil, apperrors.NewValidationError("department is required for MDA users", map[string]any{"department_id": "is required"})
	}
	user, err := s.users.AssignRole(ctx, userID, role, departmentID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	s.logger.Info("role assigned", zap.String("user_id", userID), zap.String("role", string(role)))
	return user, nil
}

func isGated(role domain.Role) bool {
	for _, r := range domain.GatedRoles {
		if r == role {
			return true
		}
	}
	return false
}
