package dto

import (
	"time"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// ContactRequest carries the submitter's contact block.
type ContactRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"max=40"`
	Address      string `json:"address" validate:"max=500"`
	State        string `json:"state" validate:"max=100"`
	BusinessName string `json:"business_name" validate:"max=200"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title               string         `json:"title" validate:"required,max=300"`
	Description         string         `json:"description" validate:"required"`
	Department          string         `json:"department" validate:"max=200"`
	Contact             ContactRequest `json:"contact"`
	IncidentDate        *time.Time     `json:"incident_date"`
	SupportingDocuments []string       `json:"supporting_documents" validate:"max=10,dive,required"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status         domain.TicketStatus `json:"status" validate:"required,oneof=open in_progress resolved closed"`
	ResolutionNote string              `json:"resolution_note"`
}

// AssignDepartmentRequest accepts a department id or name.
type AssignDepartmentRequest struct {
	Department string `json:"department" validate:"required"`
}

// AssignAgentRequest payload.
type AssignAgentRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
}

// CommentRequest payload.
type CommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID                  string              `json:"id"`
	TicketNumber        string              `json:"ticket_number"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Status              domain.TicketStatus `json:"status"`
	CreatorID           string              `json:"creator_id"`
	DepartmentID        *string             `json:"department_id"`
	AssignedAgentID     *string             `json:"assigned_agent_id"`
	Contact             ContactResponse     `json:"contact"`
	IncidentDate        *time.Time          `json:"incident_date"`
	SupportingDocuments []string            `json:"supporting_documents"`
	ResolutionNote      *string             `json:"resolution_note"`
	FirstResponseAt     *time.Time          `json:"first_response_at"`
	ReassignedAt        *time.Time          `json:"reassigned_at"`
	ResolvedAt          *time.Time          `json:"resolved_at"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// ContactResponse mirrors ContactRequest.
type ContactResponse struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	State        string `json:"state"`
	BusinessName string `json:"business_name"`
}

// TicketTrackResponse is the public tracking view.
type TicketTrackResponse struct {
	TicketNumber string              `json:"ticket_number"`
	Title        string              `json:"title"`
	Status       domain.TicketStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	ResolvedAt   *time.Time          `json:"resolved_at"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	ChangedByID *string                 `json:"changed_by_id"`
	ChangedBy   *string                 `json:"changed_by,omitempty"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	docs := t.SupportingDocuments
	if docs == nil {
		docs = []string{}
	}
	return TicketResponse{
		ID:              t.ID,
		TicketNumber:    t.TicketNumber,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		CreatorID:       t.CreatorID,
		DepartmentID:    t.DepartmentID,
		AssignedAgentID: t.AssignedAgentID,
		Contact:         ContactResponse{
			Name:         t.Contact.Name,
			Email:        t.Contact.Email,
			Phone:        t.Contact.Phone,
			Address:      t.Contact.Address,
			State:        t.Contact.State,
			BusinessName: t.Contact.BusinessName,
		},
		IncidentDate:        t.IncidentDate,
		SupportingDocuments: docs,
		ResolutionNote:      t.ResolutionNote,
		FirstResponseAt:     t.FirstResponseAt,
		ReassignedAt:        t.ReassignedAt,
		ResolvedAt:          t.ResolvedAt,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// NewTicketResponses maps a list.
func NewTicketResponses(list []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(list))
	for i := range list {
		out = append(out, NewTicketResponse(&list[i]))
	}
	return out
}

// NewTicketTrackResponse maps the reduced public view.
func NewTicketTrackResponse(t *domain.Ticket) TicketTrackResponse {
	return TicketTrackResponse{
		TicketNumber: t.TicketNumber,
		Title:        t.Title,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		ResolvedAt:   t.ResolvedAt,
	}
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.TicketComment) CommentResponse {
	return CommentResponse{ID: c.ID, TicketID: c.TicketID, AuthorID: c.AuthorID, Body: c.Body, CreatedAt: c.CreatedAt}
}

// NewHistoryResponses maps the audit trail.
func NewHistoryResponses(entries []domain.TicketHistory) []TicketHistoryResponse {
	out := make([]TicketHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TicketHistoryResponse{
			ID:          e.ID,
			ChangeType:  e.ChangeType,
			ChangedByID: e.ChangedByID,
			ChangedBy:   e.ChangedByName,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
