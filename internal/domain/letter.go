package domain

import "time"

// LetterStatus tracks correspondence handling.
type LetterStatus string

const (
	LetterStatusPending      LetterStatus = "pending"
	LetterStatusAcknowledged LetterStatus = "acknowledged"
	LetterStatusResponded    LetterStatus = "responded"
)

// Valid reports whether s is a known letter status.
func (s LetterStatus) Valid() bool {
	switch s {
	case LetterStatusPending, LetterStatusAcknowledged, LetterStatusResponded:
		return true
	}
	return false
}

// Letter is a business letter addressed to PEBEC or an MDA.
type Letter struct {
	ID           string
	SenderID     string
	Title        string
	Body         string
	CompanyName  string
	ContactEmail string
	DepartmentID *string
	Attachments  []string
	Status       LetterStatus
	ResponseNote *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
