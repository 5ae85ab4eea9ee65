package domain

import "time"

// MeetingStatus enumerates meeting states.
type MeetingStatus string

const (
	MeetingScheduled   MeetingStatus = "scheduled"
	MeetingRescheduled MeetingStatus = "rescheduled"
	MeetingCancelled   MeetingStatus = "cancelled"
)

// Meeting is an invitation with accept/decline tracking.
type Meeting struct {
	ID          string
	Title       string
	Agenda      string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	OrganizerID string
	Attendees   []string
	Accepted    []string
	Declined    []string
	Status      MeetingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAttendee reports whether userID was invited.
func (m *Meeting) IsAttendee(userID string) bool {
	return containsString(m.Attendees, userID)
}

// Respond moves userID into the accepted or declined set, removing it from the other.
func (m *Meeting) Respond(userID string, accept bool) {
	m.Accepted = removeString(m.Accepted, userID)
	m.Declined = removeString(m.Declined, userID)
	if accept {
		m.Accepted = append(m.Accepted, userID)
	} else {
		m.Declined = append(m.Declined, userID)
	}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
