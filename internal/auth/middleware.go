package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

const userKey = "auth_user"

// AuthMiddleware validates bearer tokens and loads the mirrored user.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	user, err := m.resolve(c, header)
	if err != nil {
		return err
	}
	c.Locals(userKey, user)
	return c.Next()
}

// Optional attaches the caller when a valid token is present and lets
// anonymous requests through. A malformed or expired token is still rejected.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return c.Next()
	}
	user, err := m.resolve(c, header)
	if err != nil {
		return err
	}
	c.Locals(userKey, user)
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx, header string) (*domain.User, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByExternalID(c.UserContext(), claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	// The sync webhook can lag the first sign-in; mirror the account from
	// the token claims with the default role.
	user = &domain.User{
		ExternalID: claims.Subject,
		Name:       claims.Name,
		Email:      claims.Email,
		Phone:      claims.Phone,
	}
	if err := m.users.Upsert(c.UserContext(), user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UserFromContext returns the authenticated user, or nil for anonymous calls.
func UserFromContext(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(userKey).(*domain.User)
	return user
}
