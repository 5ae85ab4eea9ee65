package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/auth"
	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// UsersHandler serves profile, role and identity sync endpoints.
type UsersHandler struct {
	users         *service.UserService
	codes         *service.AccessCodeService
	webhookSecret string
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, codes *service.AccessCodeService, webhookSecret string) *UsersHandler {
	return &UsersHandler{users: users, codes: codes, webhookSecret: webhookSecret}
}

// Me GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	me, err := h.users.Me(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, dto.NewUserResponse(me))
}

// List GET /users?role=&department_id=&q=.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	filter := repository.UserFilter{
		DepartmentID: optionalQuery(c, "department_id"),
		SearchTerm:   optionalQuery(c, "q"),
	}
	if role := optionalQuery(c, "role"); role != nil {
		r := domain.Role(*role)
		filter.Role = &r
	}
	filter.Limit, filter.Offset = paging(c)
	list, err := h.users.ListUsers(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return data(c, dto.NewUserResponses(list))
}

// AssignRole PATCH /users/:id/role.
func (h *UsersHandler) AssignRole(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.AssignRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.users.AssignRole(c.UserContext(), user, c.Params("id"), req.Role, req.DepartmentID)
	if err != nil {
		return err
	}
	return data(c, dto.NewUserResponse(updated))
}

// Elevate POST /users/me/elevate.
func (h *UsersHandler) Elevate(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ElevateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.users.ElevateWithAccessCode(c.UserContext(), user, req.Role, req.Code, req.DepartmentID)
	if err != nil {
		return err
	}
	return data(c, dto.NewUserResponse(updated))
}

// RotateAccessCodes POST /access-codes/rotate. The plaintext codes are
// returned once and mailed to every administrator.
func (h *UsersHandler) RotateAccessCodes(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	codes, err := h.codes.Rotate(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, codes)
}

// IdentityWebhook POST /webhooks/identity. The raw body must carry a valid
// HMAC signature.
func (h *UsersHandler) IdentityWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if !auth.VerifySignature(h.webhookSecret, body, strings.TrimSpace(c.Get(auth.SignatureHeader))) {
		return apperrors.NewUnauthorized("invalid webhook signature")
	}
	var event service.IdentityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.users.SyncIdentity(c.UserContext(), event); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"received": true}})
}
