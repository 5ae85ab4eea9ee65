package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/service"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

// StatsHandler serves SLA statistics.
type StatsHandler struct {
	stats *service.StatsService
	loc   *time.Location
}

// NewStatsHandler constructs handler. Date-only bounds are read in loc.
func NewStatsHandler(stats *service.StatsService, loc *time.Location) *StatsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsHandler{stats: stats, loc: loc}
}

// Tickets GET /stats/tickets?from=&to=&department_id=.
func (h *StatsHandler) Tickets(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	filter, err := h.parseFilter(c)
	if err != nil {
		return err
	}
	stats, err := h.stats.GetTicketStats(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return data(c, stats)
}

// Departments GET /stats/departments?from=&to=.
func (h *StatsHandler) Departments(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	filter, err := h.parseFilter(c)
	if err != nil {
		return err
	}
	report, err := h.stats.GetDepartmentPerformance(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return data(c, report)
}

func (h *StatsHandler) parseFilter(c *fiber.Ctx) (service.StatsFilter, error) {
	from, err := h.parseBound(c.Query("from"), false)
	if err != nil {
		return service.StatsFilter{}, apperrors.NewValidationError("invalid from", map[string]any{"from": err.Error()})
	}
	to, err := h.parseBound(c.Query("to"), true)
	if err != nil {
		return service.StatsFilter{}, apperrors.NewValidationError("invalid to", map[string]any{"to": err.Error()})
	}
	if from != nil && to != nil && to.Before(*from) {
		return service.StatsFilter{}, apperrors.NewValidationError("invalid range", map[string]any{"to": "must not be before from"})
	}
	return service.StatsFilter{From: from, To: to, DepartmentID: optionalQuery(c, "department_id")}, nil
}

// parseBound accepts RFC3339 or a bare date. A bare upper bound covers
// the whole local day.
func (h *StatsHandler) parseBound(val string, upper bool) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t, nil
	}
	day, err := time.ParseInLocation(dateLayout, val, h.loc)
	if err != nil {
		return nil, err
	}
	if upper {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, nil
}
