package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/auth"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// DepartmentsHandler serves the MDA directory.
type DepartmentsHandler struct {
	departments *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departments *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments}
}

// List GET /departments?all=true. Inactive entries are for administrators only.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	list, err := h.departments.List(c.UserContext(), auth.UserFromContext(c), c.QueryBool("all"))
	if err != nil {
		return err
	}
	return data(c, dto.NewDepartmentResponses(list))
}

// Create POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	dept, err := h.departments.Create(c.UserContext(), user, service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewDepartmentResponse(dept))
}

// Update PATCH /departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	dept, err := h.departments.Update(c.UserContext(), user, c.Params("id"), service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return data(c, dto.NewDepartmentResponse(dept))
}
