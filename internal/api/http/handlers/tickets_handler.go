package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/auth"
	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// TicketsHandler serves grievance endpoints.
type TicketsHandler struct {
	tickets    *service.TicketService
	assignment *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignment *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignment: assignment}
}

// Create POST /tickets. Anonymous submissions are accepted.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), auth.UserFromContext(c), service.TicketCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		DepartmentName: req.Department,
		Contact:        domain.TicketContact{
			Name:         req.Contact.Name,
			Email:        req.Contact.Email,
			Phone:        req.Contact.Phone,
			Address:      req.Contact.Address,
			State:        req.Contact.State,
			BusinessName: req.Contact.BusinessName,
		},
		IncidentDate:        req.IncidentDate,
		SupportingDocuments: req.SupportingDocuments,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewTicketResponse(ticket))
}

// Track GET /tickets/track/:number.
func (h *TicketsHandler) Track(c *fiber.Ctx) error {
	ticket, err := h.tickets.TrackTicket(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketTrackResponse(ticket))
}

// ListMine GET /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.tickets.ListMyTickets(c.UserContext(), user, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponses(list))
}

// ListAll GET /tickets.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.tickets.ListAllTickets(c.UserContext(), user, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponses(list))
}

// ListDepartment GET /tickets/department?department_id=.
func (h *TicketsHandler) ListDepartment(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.tickets.ListDepartmentTickets(c.UserContext(), user, optionalQuery(c, "department_id"), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponses(list))
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponse(ticket))
}

// GetByNumber GET /tickets/number/:number.
func (h *TicketsHandler) GetByNumber(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicketByNumber(c.UserContext(), user, c.Params("number"))
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponse(ticket))
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), user, c.Params("id"), req.Status, req.ResolutionNote)
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponse(ticket))
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ReopenTicket(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponse(ticket))
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignDepartment PATCH /tickets/:id/department.
func (h *TicketsHandler) AssignDepartment(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.AssignDepartmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.assignment.AssignDepartment(c.UserContext(), user, c.Params("id"), req.Department)
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponse(ticket))
}

// AssignAgent PATCH /tickets/:id/agent.
func (h *TicketsHandler) AssignAgent(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.AssignAgentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.assignment.AssignAgent(c.UserContext(), user, c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return data(c, dto.NewTicketResponse(ticket))
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.tickets.AddComment(c.UserContext(), user, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return created(c, dto.NewCommentResponse(comment))
}

// ListComments GET /tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	comments, err := h.tickets.ListComments(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.NewCommentResponse(&comments[i]))
	}
	return data(c, out)
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	entries, err := h.tickets.ListHistory(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, dto.NewHistoryResponses(entries))
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	filter.SearchTerm = optionalQuery(c, "q")
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))
	filter.Limit, filter.Offset = paging(c)
	return filter
}
