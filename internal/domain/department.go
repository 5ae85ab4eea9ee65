package domain

import "time"

// Department is an MDA (ministry, department or agency) tickets and letters are routed to.
type Department struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
