package domain

import "time"

// SaberMaterial is a SABER programme document with role-gated visibility.
type SaberMaterial struct {
	ID           string
	Title        string
	Description  string
	FileKey      string
	VisibleRoles []Role
	UploadedBy   string
	CreatedAt    time.Time
}

// VisibleTo reports whether role may see the material. An empty set means everyone.
func (m *SaberMaterial) VisibleTo(role Role) bool {
	if len(m.VisibleRoles) == 0 {
		return true
	}
	for _, r := range m.VisibleRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ProgressStep is one checklist item on a DLI or task.
type ProgressStep struct {
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *string    `json:"completed_by,omitempty"`
}

// CountCompleted returns how many steps are done.
func CountCompleted(steps []ProgressStep) int {
	n := 0
	for _, s := range steps {
		if s.Completed {
			n++
		}
	}
	return n
}

// PercentComplete rounds down to a whole percentage; no steps is 0.
func PercentComplete(steps []ProgressStep) int {
	if len(steps) == 0 {
		return 0
	}
	return CountCompleted(steps) * 100 / len(steps)
}

// DLIProgress tracks a state's progress on a disbursement-linked indicator.
type DLIProgress struct {
	ID        string
	State     string
	DLICode   string
	Title     string
	Steps     []ProgressStep
	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Percent is the share of completed steps.
func (d *DLIProgress) Percent() int {
	return PercentComplete(d.Steps)
}

// BerapDocument is the Business Environment Reform Action Plan for a year.
type BerapDocument struct {
	ID        string
	Year      int
	Title     string
	FileKey   string
	Summary   string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
