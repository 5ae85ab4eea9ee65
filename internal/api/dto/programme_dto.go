package dto

import (
	"time"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// ReportTemplateRequest payload.
type ReportTemplateRequest struct {
	Name        string               `json:"name" validate:"required,max=200"`
	Description string               `json:"description"`
	Fields      []domain.ReportField `json:"fields" validate:"required,min=1"`
}

// ReportSubmitRequest payload.
type ReportSubmitRequest struct {
	TemplateID string            `json:"template_id" validate:"required"`
	Values     map[string]string `json:"values"`
}

// ReportReviewRequest payload.
type ReportReviewRequest struct {
	Status domain.ReportStatus `json:"status" validate:"required,oneof=approved rejected"`
	Note   string              `json:"note"`
}

// ReportTemplateResponse view.
type ReportTemplateResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Fields      []domain.ReportField `json:"fields"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ReportResponse view.
type ReportResponse struct {
	ID          string              `json:"id"`
	TemplateID  string              `json:"template_id"`
	SubmittedBy string              `json:"submitted_by"`
	Values      map[string]string   `json:"values"`
	Status      domain.ReportStatus `json:"status"`
	ReviewNote  *string             `json:"review_note"`
	ReviewedBy  *string             `json:"reviewed_by"`
	ReviewedAt  *time.Time          `json:"reviewed_at"`
	CreatedAt   time.Time           `json:"created_at"`
}

// MaterialRequest payload.
type MaterialRequest struct {
	Title        string        `json:"title" validate:"required,max=300"`
	Description  string        `json:"description"`
	FileKey      string        `json:"file_key" validate:"required"`
	VisibleRoles []domain.Role `json:"visible_roles"`
}

// MaterialResponse view.
type MaterialResponse struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	FileKey      string        `json:"file_key"`
	VisibleRoles []domain.Role `json:"visible_roles"`
	CreatedAt    time.Time     `json:"created_at"`
}

// DLIRequest payload.
type DLIRequest struct {
	State   string   `json:"state" validate:"required,max=100"`
	DLICode string   `json:"dli_code" validate:"required,max=50"`
	Title   string   `json:"title" validate:"max=300"`
	Steps   []string `json:"steps" validate:"required,min=1"`
}

// StepRequest marks one checklist step complete.
type StepRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

// DLIResponse view.
type DLIResponse struct {
	ID        string                `json:"id"`
	State     string                `json:"state"`
	DLICode   string                `json:"dli_code"`
	Title     string                `json:"title"`
	Steps     []domain.ProgressStep `json:"steps"`
	Percent   int                   `json:"percent"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// BerapRequest payload.
type BerapRequest struct {
	Title   string `json:"title" validate:"max=300"`
	FileKey string `json:"file_key" validate:"required"`
	Summary string `json:"summary"`
}

// BerapResponse view.
type BerapResponse struct {
	Year      int       `json:"year"`
	Title     string    `json:"title"`
	FileKey   string    `json:"file_key"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MeetingRequest payload.
type MeetingRequest struct {
	Title     string    `json:"title" validate:"required,max=300"`
	Agenda    string    `json:"agenda"`
	Location  string    `json:"location" validate:"max=300"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Attendees []string  `json:"attendees" validate:"required,min=1"`
}

// RescheduleRequest payload.
type RescheduleRequest struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// RespondRequest payload.
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// MeetingResponse view.
type MeetingResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Agenda      string               `json:"agenda"`
	Location    string               `json:"location"`
	StartsAt    time.Time            `json:"starts_at"`
	EndsAt      time.Time            `json:"ends_at"`
	OrganizerID string               `json:"organizer_id"`
	Attendees   []string             `json:"attendees"`
	Accepted    []string             `json:"accepted"`
	Declined    []string             `json:"declined"`
	Status      domain.MeetingStatus `json:"status"`
}

// ProjectRequest payload.
type ProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

// ProjectResponse view.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskRequest payload.
type TaskRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	Steps       []string   `json:"steps" validate:"required,min=1"`
}

// TaskResponse view.
type TaskResponse struct {
	ID          string                `json:"id"`
	ProjectID   string                `json:"project_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	AssigneeID  string                `json:"assignee_id"`
	DueDate     *time.Time            `json:"due_date"`
	Steps       []domain.ProgressStep `json:"steps"`
	Percent     int                   `json:"percent"`
	Status      domain.TaskStatus     `json:"status"`
	CompletedAt *time.Time            `json:"completed_at"`
}

// NewReportTemplateResponses maps templates.
func NewReportTemplateResponses(list []domain.ReportTemplate) []ReportTemplateResponse {
	out := make([]ReportTemplateResponse, 0, len(list))
	for i := range list {
		out = append(out, NewReportTemplateResponse(&list[i]))
	}
	return out
}

// NewReportTemplateResponse maps a template.
func NewReportTemplateResponse(t *domain.ReportTemplate) ReportTemplateResponse {
	return ReportTemplateResponse{ID: t.ID, Name: t.Name, Description: t.Description, Fields: t.Fields, CreatedAt: t.CreatedAt}
}

// NewReportResponse maps a submission.
func NewReportResponse(r *domain.SubmittedReport) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		TemplateID:  r.TemplateID,
		SubmittedBy: r.SubmittedBy,
		Values:      r.Values,
		Status:      r.Status,
		ReviewNote:  r.ReviewNote,
		ReviewedBy:  r.ReviewedBy,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// NewReportResponses maps submissions.
func NewReportResponses(list []domain.SubmittedReport) []ReportResponse {
	out := make([]ReportResponse, 0, len(list))
	for i := range list {
		out = append(out, NewReportResponse(&list[i]))
	}
	return out
}

// NewMaterialResponse maps a material.
func NewMaterialResponse(m *domain.SaberMaterial) MaterialResponse {
	roles := m.VisibleRoles
	if roles == nil {
		roles = []domain.Role{}
	}
	return MaterialResponse{ID: m.ID, Title: m.Title, Description: m.Description, FileKey: m.FileKey, VisibleRoles: roles, CreatedAt: m.CreatedAt}
}

// NewMaterialResponses maps materials.
func NewMaterialResponses(list []domain.SaberMaterial) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(list))
	for i := range list {
		out = append(out, NewMaterialResponse(&list[i]))
	}
	return out
}

// NewDLIResponse maps DLI progress.
func NewDLIResponse(d *domain.DLIProgress) DLIResponse {
	return DLIResponse{ID: d.ID, State: d.State, DLICode: d.DLICode, Title: d.Title, Steps: d.Steps, Percent: d.Percent(), UpdatedAt: d.UpdatedAt}
}

// NewDLIResponses maps a list.
func NewDLIResponses(list []domain.DLIProgress) []DLIResponse {
	out := make([]DLIResponse, 0, len(list))
	for i := range list {
		out = append(out, NewDLIResponse(&list[i]))
	}
	return out
}

// NewBerapResponse maps a plan.
func NewBerapResponse(b *domain.BerapDocument) BerapResponse {
	return BerapResponse{Year: b.Year, Title: b.Title, FileKey: b.FileKey, Summary: b.Summary, UpdatedAt: b.UpdatedAt}
}

// NewBerapResponses maps a list.
func NewBerapResponses(list []domain.BerapDocument) []BerapResponse {
	out := make([]BerapResponse, 0, len(list))
	for i := range list {
		out = append(out, NewBerapResponse(&list[i]))
	}
	return out
}

// NewMeetingResponse maps a meeting.
func NewMeetingResponse(m *domain.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:          m.ID,
		Title:       m.Title,
		Agenda:      m.Agenda,
		Location:    m.Location,
		StartsAt:    m.StartsAt,
		EndsAt:      m.EndsAt,
		OrganizerID: m.OrganizerID,
		Attendees:   m.Attendees,
		Accepted:    m.Accepted,
		Declined:    m.Declined,
		Status:      m.Status,
	}
}

// NewMeetingResponses maps a list.
func NewMeetingResponses(list []domain.Meeting) []MeetingResponse {
	out := make([]MeetingResponse, 0, len(list))
	for i := range list {
		out = append(out, NewMeetingResponse(&list[i]))
	}
	return out
}

// NewProjectResponse maps a project.
func NewProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{ID: p.ID, Name: p.Name, Description: p.Description, OwnerID: p.OwnerID, CreatedAt: p.CreatedAt}
}

// NewProjectResponses maps projects.
func NewProjectResponses(list []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(list))
	for i := range list {
		out = append(out, NewProjectResponse(&list[i]))
	}
	return out
}

// NewTaskResponse maps a task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		Steps:       t.Steps,
		Percent:     domain.PercentComplete(t.Steps),
		Status:      t.Status,
		CompletedAt: t.CompletedAt,
	}
}

// NewTaskResponses maps a list.
func NewTaskResponses(list []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(list))
	for i := range list {
		out = append(out, NewTaskResponse(&list[i]))
	}
	return out
}
