package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether s ends the SLA clock.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketContact holds the submitter's contact details as typed on the form.
type TicketContact struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	State        string
	BusinessName string
}

// Ticket is a citizen grievance routed to an MDA.
type Ticket struct {
	ID                  string
	TicketNumber        string
	Title               string
	Description         string
	Status              TicketStatus
	CreatorID           string
	DepartmentID        *string
	AssignedAgentID     *string
	Contact             TicketContact
	IncidentDate        *time.Time
	SupportingDocuments []string
	ResolutionNote      *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	FirstResponseAt     *time.Time
	ReassignedAt        *time.Time
	ResolvedAt          *time.Time
}

// SLAStart is the moment the resolution clock starts.
func (t *Ticket) SLAStart() time.Time {
	if t.ReassignedAt != nil && t.ReassignedAt.After(t.CreatedAt) {
		return *t.ReassignedAt
	}
	return t.CreatedAt
}
