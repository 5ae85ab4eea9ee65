package domain

import "time"

// NewsletterStatus moves from draft to sent exactly once.
type NewsletterStatus string

const (
	NewsletterDraft NewsletterStatus = "draft"
	NewsletterSent  NewsletterStatus = "sent"
)

// Newsletter is an HTML bulletin mailed to subscribers.
type Newsletter struct {
	ID        string
	Subject   string
	HTMLBody  string
	Status    NewsletterStatus
	CreatedBy string
	SentAt    *time.Time
	SentCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscriber is a newsletter mailing-list entry.
type Subscriber struct {
	ID             string
	Email          string
	Name           string
	Active         bool
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
}
