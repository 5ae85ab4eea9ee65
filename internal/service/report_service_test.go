package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

func TestMissingReportFields(t *testing.T) {
	fields := []domain.ReportField{
		{Name: "summary", Required: true},
		{Name: "budget", Required: true},
		{Name: "remarks"},
	}
	assert.Equal(t, []string{"budget", "summary"}, MissingReportFields(fields, map[string]string{"summary": "  "}))
	assert.Empty(t, MissingReportFields(fields, map[string]string{"summary": "ok", "budget": "12"}))
}

func TestReportLifecycle(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewReportService(ReportDependencies{ReportRepo: newFakeReports(), Publisher: pub, Clock: fixedClock()})
	ctx := context.Background()
	admin := &domain.User{ID: "admin-1", Name: "Admin", Role: domain.RoleAdmin}
	champion := &domain.User{ID: "rc-1", Name: "Champion", Role: domain.RoleReformChampion}
	other := &domain.User{ID: "rc-2", Name: "Other", Role: domain.RoleReformChampion}

	_, err := svc.CreateTemplate(ctx, admin, "Quarterly", "", []domain.ReportField{{Name: "a"}, {Name: " a "}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	tpl, err := svc.CreateTemplate(ctx, admin, "Quarterly", "Reform progress", []domain.ReportField{
		{Name: "summary", Required: true},
		{Name: "budget", Label: "Budget (NGN)", Required: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "summary", tpl.Fields[0].Label)

	_, err = svc.SubmitReport(ctx, champion, tpl.ID, map[string]string{"summary": "done"})
	require.Error(t, err)
	assert.Equal(t, []string{"budget"}, apperrors.ToDomainError(err).Details["missing_fields"])

	rep, err := svc.SubmitReport(ctx, champion, tpl.ID, map[string]string{"summary": " done ", "budget": "10", "extra": "dropped"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"summary": "done", "budget": "10"}, rep.Values)
	_, err = svc.SubmitReport(ctx, other, tpl.ID, map[string]string{"summary": "x", "budget": "1"})
	require.NoError(t, err)

	mine, err := svc.ListSubmissions(ctx, champion, repository.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, rep.ID, mine[0].ID)

	all, err := svc.ListSubmissions(ctx, admin, repository.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ReviewSubmission(ctx, admin, rep.ID, domain.ReportSubmitted, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = svc.ReviewSubmission(ctx, champion, rep.ID, domain.ReportApproved, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	reviewed, err := svc.ReviewSubmission(ctx, admin, rep.ID, domain.ReportApproved, " good work ")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportApproved, reviewed.Status)
	assert.Equal(t, "good work", *reviewed.ReviewNote)
	assert.Equal(t, fixedNow, *reviewed.ReviewedAt)

	notices := pub.notices()
	require.Len(t, notices, 3)
	assert.Equal(t, []domain.Role{domain.RoleAdmin}, notices[0].Audience.Roles)
	assert.Equal(t, []string{champion.ID}, notices[2].Audience.UserIDs)
}
