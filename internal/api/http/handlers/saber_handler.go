package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// SaberHandler serves SABER materials, DLI progress and BERAP documents.
type SaberHandler struct {
	saber *service.SaberService
}

// NewSaberHandler constructs handler.
func NewSaberHandler(saber *service.SaberService) *SaberHandler {
	return &SaberHandler{saber: saber}
}

func (h *SaberHandler) CreateMaterial(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.MaterialRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.saber.CreateMaterial(c.UserContext(), user, service.MaterialInput{
		Title:        req.Title,
		Description:  req.Description,
		FileKey:      req.FileKey,
		VisibleRoles: req.VisibleRoles,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewMaterialResponse(m))
}

func (h *SaberHandler) ListMaterials(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.saber.ListMaterials(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, dto.NewMaterialResponses(list))
}

func (h *SaberHandler) CreateDLI(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.DLIRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	dli, err := h.saber.CreateDLI(c.UserContext(), user, req.State, req.DLICode, req.Title, req.Steps)
	if err != nil {
		return err
	}
	return created(c, dto.NewDLIResponse(dli))
}

// CompleteDLIStep POST /saber/dli/:id/steps.
func (h *SaberHandler) CompleteDLIStep(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.StepRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	dli, err := h.saber.CompleteDLIStep(c.UserContext(), user, c.Params("id"), req.Index)
	if err != nil {
		return err
	}
	return data(c, dto.NewDLIResponse(dli))
}

// ListDLI GET /saber/dli?state=.
func (h *SaberHandler) ListDLI(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.saber.ListDLI(c.UserContext(), user, optionalQuery(c, "state"))
	if err != nil {
		return err
	}
	return data(c, dto.NewDLIResponses(list))
}

// UpsertBerap PUT /berap/:year.
func (h *SaberHandler) UpsertBerap(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	year, err := pathInt(c, "year")
	if err != nil {
		return err
	}
	var req dto.BerapRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	doc, err := h.saber.UpsertBerap(c.UserContext(), user, year, req.Title, req.FileKey, req.Summary)
	if err != nil {
		return err
	}
	return data(c, dto.NewBerapResponse(doc))
}

func (h *SaberHandler) GetBerap(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	year, err := pathInt(c, "year")
	if err != nil {
		return err
	}
	doc, err := h.saber.GetBerap(c.UserContext(), user, year)
	if err != nil {
		return err
	}
	return data(c, dto.NewBerapResponse(doc))
}

func (h *SaberHandler) ListBerap(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.saber.ListBerap(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, dto.NewBerapResponses(list))
}
