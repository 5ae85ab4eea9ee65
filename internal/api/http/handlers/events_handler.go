package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/auth"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// EventsHandler serves public events and the newsletter list.
type EventsHandler struct {
	events      *service.EventService
	newsletters *service.NewsletterService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(events *service.EventService, newsletters *service.NewsletterService) *EventsHandler {
	return &EventsHandler{events: events, newsletters: newsletters}
}

// List GET /events?upcoming=true.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	list, err := h.events.ListEvents(c.UserContext(), c.QueryBool("upcoming"))
	if err != nil {
		return err
	}
	return data(c, dto.NewEventResponses(list))
}

// Get GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.events.GetEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewEventResponse(event))
}

// Create POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.events.CreateEvent(c.UserContext(), user, service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewEventResponse(event))
}

// Register POST /events/:id/registrations. Open to anonymous visitors.
func (h *EventsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegistrationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reg, err := h.events.Register(c.UserContext(), auth.UserFromContext(c), c.Params("id"), service.RegistrationInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewRegistrationResponse(reg))
}

// Registrations GET /events/:id/registrations.
func (h *EventsHandler) Registrations(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.events.ListRegistrations(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewRegistrationResponses(list))
}

// CheckIn POST /events/check-in.
func (h *EventsHandler) CheckIn(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CheckInRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reg, err := h.events.CheckIn(c.UserContext(), user, req.RegistrationNumber)
	if err != nil {
		return err
	}
	return data(c, dto.NewRegistrationResponse(reg))
}

// Subscribe POST /newsletters/subscribe.
func (h *EventsHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.newsletters.Subscribe(c.UserContext(), req.Email, req.Name)
	if err != nil {
		return err
	}
	return data(c, fiber.Map{"email": sub.Email, "active": sub.Active})
}

// Unsubscribe POST /newsletters/unsubscribe.
func (h *EventsHandler) Unsubscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.newsletters.Unsubscribe(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateNewsletter POST /newsletters.
func (h *EventsHandler) CreateNewsletter(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.NewsletterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	n, err := h.newsletters.CreateNewsletter(c.UserContext(), user, req.Subject, req.HTMLBody)
	if err != nil {
		return err
	}
	return created(c, dto.NewNewsletterResponse(n))
}

// ListNewsletters GET /newsletters.
func (h *EventsHandler) ListNewsletters(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.newsletters.ListNewsletters(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, dto.NewNewsletterResponses(list))
}

// SendNewsletter POST /newsletters/:id/send.
func (h *EventsHandler) SendNewsletter(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.newsletters.SendNewsletter(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewNewsletterResponse(n))
}
