package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

func utc(month time.Month, day, hour int) time.Time {
	return time.Date(2025, month, day, hour, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

type statsFixture struct {
	svc         *StatsService
	departments *fakeDepartments
	alpha       *domain.Department
	bravo       *domain.Department
	admin       *domain.User
	mda         *domain.User
}

func newStatsFixture() *statsFixture {
	tickets := newFakeTickets()
	departments := &fakeDepartments{}
	users := &fakeUsers{}
	f := &statsFixture{departments: departments}

	f.alpha = departments.add("Alpha", true)
	f.bravo = departments.add("Bravo", true)
	departments.add("Charlie", true)
	departments.add("Delta", false)
	f.admin = users.add("Admin", domain.RoleAdmin, nil)
	f.mda = users.add("Desk", domain.RoleMDA, &f.alpha.ID)

	add := func(status domain.TicketStatus, dept *string, created time.Time, resolved, firstResponse *time.Time) {
		t := &domain.Ticket{
			TicketNumber:    "REP-" + created.Format("020106150405") + string(status),
			Status:          status,
			DepartmentID:    dept,
			CreatedAt:       created,
			ResolvedAt:      resolved,
			FirstResponseAt: firstResponse,
		}
		_ = tickets.Create(context.Background(), t)
	}
	// Monday 3 March 2025.
	add(domain.TicketStatusResolved, &f.alpha.ID, utc(3, 3, 9), timePtr(utc(3, 3, 19)), timePtr(utc(3, 3, 11)))
	add(domain.TicketStatusClosed, &f.alpha.ID, utc(3, 3, 9), timePtr(utc(3, 7, 9)), nil)
	add(domain.TicketStatusOpen, &f.bravo.ID, utc(3, 4, 9), nil, nil)
	add(domain.TicketStatusInProgress, &f.bravo.ID, utc(3, 12, 9), nil, nil)
	add(domain.TicketStatusOpen, nil, utc(2, 1, 9), nil, nil)

	f.svc = NewStatsService(StatsDependencies{
		TicketRepo:     tickets,
		DepartmentRepo: departments,
		Location:       time.FixedZone("WAT", 3600),
		Clock:          fixedClock(),
	})
	return f
}

func TestGetTicketStatsInterval(t *testing.T) {
	f := newStatsFixture()

	stats, err := f.svc.GetTicketStats(context.Background(), f.admin, StatsFilter{
		From: timePtr(utc(3, 1, 0)),
		To:   timePtr(utc(3, 31, 23)),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[domain.TicketStatus]int{
		domain.TicketStatusOpen:       1,
		domain.TicketStatusInProgress: 1,
		domain.TicketStatusResolved:   1,
		domain.TicketStatusClosed:     1,
	}, stats.ByStatus)
	assert.Equal(t, 1, stats.ResolvedWithinSLA)
	assert.Equal(t, 1, stats.Overdue)
	assert.InDelta(t, 53.0, stats.AverageResolutionHours, 0.001)
	assert.InDelta(t, 2.0, stats.AverageFirstResponseHours, 0.001)

	all, err := f.svc.GetTicketStats(context.Background(), f.admin, StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)
}

func TestGetTicketStatsDepartmentScope(t *testing.T) {
	f := newStatsFixture()

	stats, err := f.svc.GetTicketStats(context.Background(), f.mda, StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)

	_, err = f.svc.GetTicketStats(context.Background(), f.mda, StatsFilter{DepartmentID: &f.bravo.ID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	citizen := &domain.User{ID: "u1", Role: domain.RoleUser}
	_, err = f.svc.GetTicketStats(context.Background(), citizen, StatsFilter{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestGetDepartmentPerformance(t *testing.T) {
	f := newStatsFixture()

	report, err := f.svc.GetDepartmentPerformance(context.Background(), f.admin, StatsFilter{})
	require.NoError(t, err)
	require.Len(t, report.Departments, 4)

	names := func(rows []DepartmentPerformance) []string {
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.DepartmentName)
		}
		return out
	}
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, names(report.Top))
	assert.Equal(t, []string{"Delta", "Charlie", "Bravo"}, names(report.Bottom))
	assert.Equal(t, 2, report.Top[0].Resolved)
	assert.Equal(t, 1, report.Top[1].Overdue)

	_, err = f.svc.GetDepartmentPerformance(context.Background(), f.mda, StatsFilter{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	federal := &domain.User{ID: "fed", Role: domain.RoleFederal}
	_, err = f.svc.GetDepartmentPerformance(context.Background(), federal, StatsFilter{})
	assert.NoError(t, err)
}

func TestRankDepartmentsTieBreaks(t *testing.T) {
	rows := []DepartmentPerformance{
		{DepartmentName: "Slow", Resolved: 3, AverageResolutionHours: 40},
		{DepartmentName: "Fast", Resolved: 3, AverageResolutionHours: 10},
		{DepartmentName: "Busy", Resolved: 5, AverageResolutionHours: 70},
		{DepartmentName: "B-Idle", Resolved: 0},
		{DepartmentName: "A-Idle", Resolved: 0},
	}
	RankDepartments(rows)

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.DepartmentName)
	}
	assert.Equal(t, []string{"Busy", "Fast", "Slow", "A-Idle", "B-Idle"}, got)
}
