package domain

import "time"

// Event is a PEBEC event citizens can register for.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Capacity    int
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventRegistration is an RSVP with an issued registration number.
type EventRegistration struct {
	ID                 string
	EventID            string
	RegistrationNumber string
	Name               string
	Email              string
	Phone              string
	Organization       string
	UserID             *string
	CheckedInAt        *time.Time
	CreatedAt          time.Time
}
