package service

import (
	"context"
	"sort"
	"time"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/sla"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// StatsFilter bounds the ticket set by creation time (both ends inclusive)
// and optionally a department.
type StatsFilter struct {
	From         *time.Time
	To           *time.Time
	DepartmentID *string
}

// TicketStats aggregates ticket handling. Hours are weekday hours.
type TicketStats struct {
	Total                     int                         `json:"total_tickets"`
	ByStatus                  map[domain.TicketStatus]int `json:"by_status"`
	ResolvedWithinSLA         int                         `json:"resolved_within_sla"`
	Overdue                   int                         `json:"overdue"`
	AverageResolutionHours    float64                     `json:"average_resolution_hours"`
	AverageFirstResponseHours float64                     `json:"average_first_response_hours"`
}

// DepartmentPerformance is one department's line in the ranking.
type DepartmentPerformance struct {
	DepartmentID           string  `json:"department_id"`
	DepartmentName         string  `json:"department_name"`
	Total                  int     `json:"total_tickets"`
	Resolved               int     `json:"resolved"`
	Overdue                int     `json:"overdue"`
	AverageResolutionHours float64 `json:"average_resolution_hours"`
}

// PerformanceReport ranks departments.
type PerformanceReport struct {
	Departments []DepartmentPerformance `json:"departments"`
	Top         []DepartmentPerformance `json:"top"`
	Bottom      []DepartmentPerformance `json:"bottom"`
}

const rankSize = 3

// StatsService computes SLA statistics in memory over the matching tickets.
type StatsService struct {
	tickets     repository.TicketRepository
	departments repository.DepartmentRepository
	loc         *time.Location
	now         Clock
}

// StatsDependencies bundles repositories.
type StatsDependencies struct {
	TicketRepo     repository.TicketRepository
	DepartmentRepo repository.DepartmentRepository
	Location       *time.Location
	Clock          Clock
}

// NewStatsService creates the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	loc := deps.Location
	if loc == nil {
		loc = sla.LoadLocation(sla.PortalZone)
	}
	return &StatsService{
		tickets:     deps.TicketRepo,
		departments: deps.DepartmentRepo,
		loc:         loc,
		now:         clockOrDefault(deps.Clock),
	}
}

// GetTicketStats aggregates the tickets created within the filter window.
// Department-scoped callers only see their own department.
func (s *StatsService) GetTicketStats(ctx context.Context, caller *domain.User, filter StatsFilter) (*TicketStats, error) {
	scope, err := policy.Authorize(caller, policy.TicketStats, nil)
	if err != nil {
		return nil, err
	}
	deptID := trimmedPtr(filter.DepartmentID)
	if !scope.Has(policy.ScopeAll) {
		if caller.DepartmentID == nil || (deptID != nil && *deptID != *caller.DepartmentID) {
			return nil, apperrors.NewForbidden("department outside caller scope")
		}
		deptID = caller.DepartmentID
	}

	tickets, err := s.load(ctx, filter.From, filter.To, deptID)
	if err != nil {
		return nil, err
	}
	stats := s.aggregate(tickets)
	return &stats, nil
}

// GetDepartmentPerformance ranks every department by resolved count, then
// by faster average resolution. Bottom lists the worst first.
func (s *StatsService) GetDepartmentPerformance(ctx context.Context, caller *domain.User, filter StatsFilter) (*PerformanceReport, error) {
	if err := policy.RequireAll(caller, policy.TicketStats); err != nil {
		return nil, err
	}
	departments, err := s.departments.List(ctx, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tickets, err := s.load(ctx, filter.From, filter.To, nil)
	if err != nil {
		return nil, err
	}

	byDept := make(map[string][]domain.Ticket, len(departments))
	for _, t := range tickets {
		if t.DepartmentID != nil {
			byDept[*t.DepartmentID] = append(byDept[*t.DepartmentID], t)
		}
	}

	rows := make([]DepartmentPerformance, 0, len(departments))
	for _, d := range departments {
		agg := s.aggregate(byDept[d.ID])
		rows = append(rows, DepartmentPerformance{
			DepartmentID:           d.ID,
			DepartmentName:         d.Name,
			Total:                  agg.Total,
			Resolved:               agg.ByStatus[domain.TicketStatusResolved] + agg.ByStatus[domain.TicketStatusClosed],
			Overdue:                agg.Overdue,
			AverageResolutionHours: agg.AverageResolutionHours,
		})
	}
	RankDepartments(rows)

	report := &PerformanceReport{Departments: rows}
	report.Top = append([]DepartmentPerformance{}, rows[:min(rankSize, len(rows))]...)
	bottom := rows[len(rows)-min(rankSize, len(rows)):]
	report.Bottom = make([]DepartmentPerformance, 0, len(bottom))
	for i := len(bottom) - 1; i >= 0; i-- {
		report.Bottom = append(report.Bottom, bottom[i])
	}
	return report, nil
}

// RankDepartments sorts best first: more resolved, then lower average hours,
// then name for a stable order.
func RankDepartments(rows []DepartmentPerformance) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Resolved != b.Resolved {
			return a.Resolved > b.Resolved
		}
		if a.AverageResolutionHours != b.AverageResolutionHours {
			return a.AverageResolutionHours < b.AverageResolutionHours
		}
		return a.DepartmentName < b.DepartmentName
	})
}

func (s *StatsService) load(ctx context.Context, from, to *time.Time, deptID *string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		DepartmentID: deptID,
		CreatedFrom:  from,
		CreatedTo:    to,
		Unbounded:    true,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *StatsService) aggregate(tickets []domain.Ticket) TicketStats {
	stats := TicketStats{
		Total:    len(tickets),
		ByStatus: map[domain.TicketStatus]int{
			domain.TicketStatusOpen:       0,
			domain.TicketStatusInProgress: 0,
			domain.TicketStatusResolved:   0,
			domain.TicketStatusClosed:     0,
		},
	}
	now := s.now()
	var resolutionHours, responseHours float64
	var resolvedCount, respondedCount int

	for i := range tickets {
		t := &tickets[i]
		stats.ByStatus[t.Status]++
		start := t.SLAStart()

		if t.Status.Terminal() {
			end := t.UpdatedAt
			if t.ResolvedAt != nil {
				end = *t.ResolvedAt
			}
			hours := sla.WeekdayHours(start, end, s.loc)
			resolutionHours += hours
			resolvedCount++
			if !sla.Breached(hours) {
				stats.ResolvedWithinSLA++
			}
		} else if sla.Breached(sla.WeekdayHours(start, now, s.loc)) {
			stats.Overdue++
		}

		if t.FirstResponseAt != nil {
			responseHours += sla.WeekdayHours(t.CreatedAt, *t.FirstResponseAt, s.loc)
			respondedCount++
		}
	}
	if resolvedCount > 0 {
		stats.AverageResolutionHours = roundHours(resolutionHours / float64(resolvedCount))
	}
	if respondedCount > 0 {
		stats.AverageFirstResponseHours = roundHours(responseHours / float64(respondedCount))
	}
	return stats
}

func roundHours(h float64) float64 {
	return float64(int64(h*100+0.5)) / 100
}
