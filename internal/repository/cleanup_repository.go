package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CleanupResult counts rows touched by one orphan sweep.
type CleanupResult struct {
	Notifications      int64 `json:"notifications"`
	TicketNotices      int64 `json:"ticket_notifications"`
	AgentAssignments   int64 `json:"agent_assignments"`
	TicketDepartments  int64 `json:"ticket_departments"`
	UserDepartments    int64 `json:"user_departments"`
	LetterDepartments  int64 `json:"letter_departments"`
	Comments           int64 `json:"comments"`
	History            int64 `json:"history"`
	EventRegistrations int64 `json:"event_registrations"`
	SubmittedReports   int64 `json:"submitted_reports"`
	Tasks              int64 `json:"tasks"`
}

// Total sums every counter.
func (r CleanupResult) Total() int64 {
	return r.Notifications + r.TicketNotices + r.AgentAssignments + r.TicketDepartments + r.UserDepartments +
		r.LetterDepartments + r.Comments + r.History + r.EventRegistrations + r.SubmittedReports + r.Tasks
}

// CleanupRepository removes or clears references whose target is gone.
type CleanupRepository interface {
	SweepOrphans(ctx context.Context) (CleanupResult, error)
}

type cleanupRepository struct {
	pool *pgxpool.Pool
}

// NewCleanupRepository builds repository.
func NewCleanupRepository(pool *pgxpool.Pool) CleanupRepository {
	return &cleanupRepository{pool: pool}
}

func (r *cleanupRepository) SweepOrphans(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult
	steps := []struct {
		query string
		dest  *int64
	}{
		{`DELETE FROM notifications n WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.id = n.user_id)`, &res.Notifications},
		{`DELETE FROM notifications n WHERE n.entity_type = 'ticket'
          AND NOT EXISTS (SELECT 1 FROM tickets t WHERE t.id::text = n.entity_id)`, &res.TicketNotices},
		{`UPDATE tickets t SET assigned_agent_id = NULL, updated_at = NOW()
          WHERE assigned_agent_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM users u WHERE u.id = t.assigned_agent_id)`, &res.AgentAssignments},
		{`UPDATE tickets t SET department_id = NULL, updated_at = NOW()
          WHERE department_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM departments d WHERE d.id = t.department_id)`, &res.TicketDepartments},
		{`UPDATE users u SET department_id = NULL, updated_at = NOW()
          WHERE department_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM departments d WHERE d.id = u.department_id)`, &res.UserDepartments},
		{`UPDATE letters l SET department_id = NULL, updated_at = NOW()
          WHERE department_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM departments d WHERE d.id = l.department_id)`, &res.LetterDepartments},
		{`DELETE FROM ticket_comments c WHERE NOT EXISTS (SELECT 1 FROM tickets t WHERE t.id = c.ticket_id)`, &res.Comments},
		{`DELETE FROM ticket_history h WHERE NOT EXISTS (SELECT 1 FROM tickets t WHERE t.id = h.ticket_id)`, &res.History},
		{`DELETE FROM event_registrations er WHERE NOT EXISTS (SELECT 1 FROM events e WHERE e.id = er.event_id)`, &res.EventRegistrations},
		{`DELETE FROM submitted_reports s WHERE NOT EXISTS (SELECT 1 FROM report_templates rt WHERE rt.id = s.template_id)`, &res.SubmittedReports},
		{`DELETE FROM tasks tk WHERE NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = tk.project_id)`, &res.Tasks},
	}
	for _, step := range steps {
		cmd, err := r.pool.Exec(ctx, step.query)
		if err != nil {
			return res, err
		}
		*step.dest = cmd.RowsAffected()
	}
	return res, nil
}
