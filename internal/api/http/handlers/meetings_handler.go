package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// MeetingsHandler serves internal meeting scheduling.
type MeetingsHandler struct {
	meetings *service.MeetingService
}

// NewMeetingsHandler constructs handler.
func NewMeetingsHandler(meetings *service.MeetingService) *MeetingsHandler {
	return &MeetingsHandler{meetings: meetings}
}

// Schedule POST /meetings.
func (h *MeetingsHandler) Schedule(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.MeetingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.meetings.Schedule(c.UserContext(), user, service.MeetingInput{
		Title:     req.Title,
		Agenda:    req.Agenda,
		Location:  req.Location,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Attendees: req.Attendees,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewMeetingResponse(m))
}

// ListMine GET /meetings returns meetings the caller organizes or attends.
func (h *MeetingsHandler) ListMine(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.meetings.ListMine(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, dto.NewMeetingResponses(list))
}

// Respond POST /meetings/:id/respond.
func (h *MeetingsHandler) Respond(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.RespondRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.meetings.Respond(c.UserContext(), user, c.Params("id"), req.Accept)
	if err != nil {
		return err
	}
	return data(c, dto.NewMeetingResponse(m))
}

// Reschedule PATCH /meetings/:id/schedule.
func (h *MeetingsHandler) Reschedule(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.RescheduleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.meetings.Reschedule(c.UserContext(), user, c.Params("id"), req.StartsAt, req.EndsAt)
	if err != nil {
		return err
	}
	return data(c, dto.NewMeetingResponse(m))
}

// Cancel POST /meetings/:id/cancel.
func (h *MeetingsHandler) Cancel(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	m, err := h.meetings.Cancel(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewMeetingResponse(m))
}
