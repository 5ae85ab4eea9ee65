package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated            EventType = "ticket.created"
	EventTicketStatusChanged      EventType = "ticket.status_changed"
	EventTicketReopened           EventType = "ticket.reopened"
	EventTicketDepartmentAssigned EventType = "ticket.department_assigned"
	EventTicketCommentAdded       EventType = "ticket.comment_added"
	EventTicketReminder           EventType = "ticket.reminder"
	EventNotify                   EventType = "notify"
)

// Event represents a domain event emitted by services. Payload holds the
// JSON form of one of the payload structs below.
type Event struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	ActorID     *string         `json:"actor_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// New builds an event with a fresh id and the marshalled payload.
func New(eventType EventType, aggregateID string, actorID *string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actorID,
		Timestamp:   time.Now().UTC(),
		Payload:     raw,
	}, nil
}

// Decode unmarshals the payload into dst.
func (e Event) Decode(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber   string  `json:"ticket_number"`
	Title          string  `json:"title"`
	DepartmentID   *string `json:"department_id,omitempty"`
	DepartmentName string  `json:"department_name,omitempty"`
	ContactName    string  `json:"contact_name"`
	ContactEmail   string  `json:"contact_email"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketNumber string              `json:"ticket_number"`
	Title        string              `json:"title"`
	CreatorID    string              `json:"creator_id"`
	ContactEmail string              `json:"contact_email"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	Note         string              `json:"note,omitempty"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	TicketNumber string  `json:"ticket_number"`
	Title        string  `json:"title"`
	DepartmentID *string `json:"department_id,omitempty"`
}

// TicketDepartmentAssignedPayload payload.
type TicketDepartmentAssignedPayload struct {
	TicketNumber   string `json:"ticket_number"`
	Title          string `json:"title"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	TicketNumber string  `json:"ticket_number"`
	CommentID    string  `json:"comment_id"`
	AuthorID     string  `json:"author_id"`
	CreatorID    string  `json:"creator_id"`
	DepartmentID *string `json:"department_id,omitempty"`
	BodyPreview  string  `json:"body_preview"`
}

// TicketReminderPayload payload.
type TicketReminderPayload struct {
	TicketNumber string  `json:"ticket_number"`
	Title        string  `json:"title"`
	DepartmentID string  `json:"department_id"`
	AgentID      *string `json:"agent_id,omitempty"`
}

// Audience names notification recipients. Roles and DepartmentID expand to
// every matching user at delivery time; Emails receive mail only.
type Audience struct {
	UserIDs      []string      `json:"user_ids,omitempty"`
	Roles        []domain.Role `json:"roles,omitempty"`
	DepartmentID *string       `json:"department_id,omitempty"`
	Emails       []string      `json:"emails,omitempty"`
}

// Empty reports whether the audience names nobody.
func (a Audience) Empty() bool {
	return len(a.UserIDs) == 0 && len(a.Roles) == 0 && a.DepartmentID == nil && len(a.Emails) == 0
}

// NotifyPayload is a ready-made fan-out used by the secondary workflows.
type NotifyPayload struct {
	Audience   Audience                `json:"audience"`
	Type       domain.NotificationType `json:"type"`
	Message    string                  `json:"message"`
	Subject    string                  `json:"subject,omitempty"`
	HTML       string                  `json:"html,omitempty"`
	EntityType string                  `json:"entity_type,omitempty"`
	EntityID   *string                 `json:"entity_id,omitempty"`
}
