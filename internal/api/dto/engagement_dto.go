package dto

import (
	"time"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// LetterRequest payload.
type LetterRequest struct {
	Title        string   `json:"title" validate:"required,max=300"`
	Body         string   `json:"body" validate:"required"`
	CompanyName  string   `json:"company_name" validate:"max=200"`
	ContactEmail string   `json:"contact_email" validate:"omitempty,email"`
	Department   string   `json:"department" validate:"max=200"`
	Attachments  []string `json:"attachments" validate:"max=10,dive,required"`
}

// LetterStatusRequest payload.
type LetterStatusRequest struct {
	Status       domain.LetterStatus `json:"status" validate:"required,oneof=pending acknowledged responded"`
	ResponseNote string              `json:"response_note"`
}

// LetterResponse view.
type LetterResponse struct {
	ID           string              `json:"id"`
	SenderID     string              `json:"sender_id"`
	Title        string              `json:"title"`
	Body         string              `json:"body"`
	CompanyName  string              `json:"company_name"`
	ContactEmail string              `json:"contact_email"`
	DepartmentID *string             `json:"department_id"`
	Attachments  []string            `json:"attachments"`
	Status       domain.LetterStatus `json:"status"`
	ResponseNote *string             `json:"response_note"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// EventRequest payload.
type EventRequest struct {
	Title       string    `json:"title" validate:"required,max=300"`
	Description string    `json:"description"`
	Location    string    `json:"location" validate:"max=300"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
}

// RegistrationRequest is a public RSVP.
type RegistrationRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"max=40"`
	Organization string `json:"organization" validate:"max=200"`
}

// CheckInRequest payload.
type CheckInRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required"`
}

// EventResponse view.
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegistrationResponse view.
type RegistrationResponse struct {
	ID                 string     `json:"id"`
	EventID            string     `json:"event_id"`
	RegistrationNumber string     `json:"registration_number"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	Organization       string     `json:"organization,omitempty"`
	CheckedInAt        *time.Time `json:"checked_in_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

// SubscribeRequest payload.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=200"`
}

// NewsletterRequest payload.
type NewsletterRequest struct {
	Subject  string `json:"subject" validate:"required,max=300"`
	HTMLBody string `json:"html_body" validate:"required"`
}

// NewsletterResponse view.
type NewsletterResponse struct {
	ID        string                  `json:"id"`
	Subject   string                  `json:"subject"`
	HTMLBody  string                  `json:"html_body"`
	Status    domain.NewsletterStatus `json:"status"`
	SentAt    *time.Time              `json:"sent_at"`
	SentCount int                     `json:"sent_count"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewLetterResponse maps a letter.
func NewLetterResponse(l *domain.Letter) LetterResponse {
	attachments := l.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return LetterResponse{
		ID:           l.ID,
		SenderID:     l.SenderID,
		Title:        l.Title,
		Body:         l.Body,
		CompanyName:  l.CompanyName,
		ContactEmail: l.ContactEmail,
		DepartmentID: l.DepartmentID,
		Attachments:  attachments,
		Status:       l.Status,
		ResponseNote: l.ResponseNote,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// NewLetterResponses maps a list.
func NewLetterResponses(list []domain.Letter) []LetterResponse {
	out := make([]LetterResponse, 0, len(list))
	for i := range list {
		out = append(out, NewLetterResponse(&list[i]))
	}
	return out
}

// NewEventResponse maps an event.
func NewEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Capacity:    e.Capacity,
		CreatedAt:   e.CreatedAt,
	}
}

// NewEventResponses maps a list.
func NewEventResponses(list []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(list))
	for i := range list {
		out = append(out, NewEventResponse(&list[i]))
	}
	return out
}

// NewRegistrationResponse maps an RSVP.
func NewRegistrationResponse(r *domain.EventRegistration) RegistrationResponse {
	return RegistrationResponse{
		ID:                 r.ID,
		EventID:            r.EventID,
		RegistrationNumber: r.RegistrationNumber,
		Name:               r.Name,
		Email:              r.Email,
		Phone:              r.Phone,
		Organization:       r.Organization,
		CheckedInAt:        r.CheckedInAt,
		CreatedAt:          r.CreatedAt,
	}
}

// NewRegistrationResponses maps a list.
func NewRegistrationResponses(list []domain.EventRegistration) []RegistrationResponse {
	out := make([]RegistrationResponse, 0, len(list))
	for i := range list {
		out = append(out, NewRegistrationResponse(&list[i]))
	}
	return out
}

// NewNewsletterResponse maps a newsletter.
func NewNewsletterResponse(n *domain.Newsletter) NewsletterResponse {
	return NewsletterResponse{
		ID:        n.ID,
		Subject:   n.Subject,
		HTMLBody:  n.HTMLBody,
		Status:    n.Status,
		SentAt:    n.SentAt,
		SentCount: n.SentCount,
		CreatedAt: n.CreatedAt,
	}
}

// NewNewsletterResponses maps a list.
func NewNewsletterResponses(list []domain.Newsletter) []NewsletterResponse {
	out := make([]NewsletterResponse, 0, len(list))
	for i := range list {
		out = append(out, NewNewsletterResponse(&list[i]))
	}
	return out
}
