package domain

import "time"

// ReportField is one input declared by a report template.
type ReportField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// ReportTemplate defines the shape of a periodic report.
type ReportTemplate struct {
	ID          string
	Name        string
	Description string
	Fields      []ReportField
	CreatedBy   string
	CreatedAt   time.Time
}

// ReportStatus tracks review of a submission.
type ReportStatus string

const (
	ReportSubmitted ReportStatus = "submitted"
	ReportApproved  ReportStatus = "approved"
	ReportRejected  ReportStatus = "rejected"
)

// SubmittedReport is a filled-in template.
type SubmittedReport struct {
	ID          string
	TemplateID  string
	SubmittedBy string
	Values      map[string]string
	Status      ReportStatus
	ReviewNote  *string
	ReviewedBy  *string
	CreatedAt   time.Time
	ReviewedAt  *time.Time
}
