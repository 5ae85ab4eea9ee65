package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// LettersHandler serves business letters.
type LettersHandler struct {
	letters *service.LetterService
}

// NewLettersHandler constructs handler.
func NewLettersHandler(letters *service.LetterService) *LettersHandler {
	return &LettersHandler{letters: letters}
}

// Submit POST /letters.
func (h *LettersHandler) Submit(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.LetterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	letter, err := h.letters.Submit(c.UserContext(), user, service.LetterInput{
		Title:          req.Title,
		Body:           req.Body,
		CompanyName:    req.CompanyName,
		ContactEmail:   req.ContactEmail,
		DepartmentName: req.Department,
		Attachments:    req.Attachments,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewLetterResponse(letter))
}

// List GET /letters?status=&department_id=.
func (h *LettersHandler) List(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	filter := service.LetterListFilter{DepartmentID: optionalQuery(c, "department_id")}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.LetterStatus(*status)
		filter.Status = &s
	}
	filter.Limit, filter.Offset = paging(c)
	list, err := h.letters.List(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return data(c, dto.NewLetterResponses(list))
}

// Get GET /letters/:id.
func (h *LettersHandler) Get(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	letter, err := h.letters.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewLetterResponse(letter))
}

// UpdateStatus PATCH /letters/:id/status.
func (h *LettersHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.LetterStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	letter, err := h.letters.UpdateStatus(c.UserContext(), user, c.Params("id"), req.Status, req.ResponseNote)
	if err != nil {
		return err
	}
	return data(c, dto.NewLetterResponse(letter))
}
