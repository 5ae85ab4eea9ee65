package domain

import "time"

// NotificationType selects the client-side icon; it carries no behavior.
type NotificationType string

const (
	NotificationTicketCreated  NotificationType = "ticket_created"
	NotificationTicketAssigned NotificationType = "ticket_assigned"
	NotificationTicketStatus   NotificationType = "ticket_status"
	NotificationTicketReopened NotificationType = "ticket_reopened"
	NotificationTicketComment  NotificationType = "ticket_comment"
	NotificationTicketReminder NotificationType = "ticket_reminder"
	NotificationLetter         NotificationType = "letter"
	NotificationEvent          NotificationType = "event"
	NotificationMeeting        NotificationType = "meeting"
	NotificationReport         NotificationType = "report"
	NotificationTask           NotificationType = "task"
	NotificationAccessCode     NotificationType = "access_code"
	NotificationNewsletter     NotificationType = "newsletter"
	NotificationSaber          NotificationType = "saber"
	NotificationGeneral        NotificationType = "general"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID         string
	UserID     string
	EventID    string
	Type       NotificationType
	Message    string
	EntityType string
	EntityID   *string
	Read       bool
	CreatedAt  time.Time
}

// OutboxStatus tracks delivery of a stored domain event.
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxDelivered  OutboxStatus = "delivered"
	OutboxFailed     OutboxStatus = "failed"
)

// OutboxEvent is a persisted domain event awaiting side-effect delivery.
type OutboxEvent struct {
	ID            string
	EventType     string
	AggregateID   string
	Payload       []byte
	Status        OutboxStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     *string
	CreatedAt     time.Time
	DeliveredAt   *time.Time
}

// AccessCode gates self-service elevation into a role.
type AccessCode struct {
	ID        string
	Role      Role
	CodeHash  string
	Active    bool
	CreatedAt time.Time
}

// UploadedFile records a blob stored on behalf of a user.
type UploadedFile struct {
	ID          string
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedBy  string
	CreatedAt   time.Time
}
