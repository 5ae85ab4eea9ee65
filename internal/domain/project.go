package domain

import "time"

// Project groups tasks under an owner.
type Project struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskStatus enumerates task states.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task is a unit of project work tracked by steps.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string
	DueDate     *time.Time
	Steps       []ProgressStep
	Status      TaskStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Percent is the share of completed steps.
func (t *Task) Percent() int {
	return PercentComplete(t.Steps)
}
