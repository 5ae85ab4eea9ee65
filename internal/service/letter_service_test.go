package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

func TestLetterFlow(t *testing.T) {
	depts := &fakeDepartments{}
	trade := depts.add("Trade", true)
	users := &fakeUsers{}
	sender := users.add("Sender", domain.RoleUser, nil)
	desk := users.add("Desk", domain.RoleMDA, &trade.ID)
	otherDesk := users.add("Elsewhere", domain.RoleMDA, strPtr("other-dept"))
	admin := users.add("Admin", domain.RoleAdmin, nil)

	pub := &recordingPublisher{}
	svc := NewLetterService(LetterDependencies{LetterRepo: newFakeLetters(), DepartmentRepo: depts, Publisher: pub})
	ctx := context.Background()

	_, err := svc.Submit(ctx, nil, LetterInput{Title: "t", Body: "b"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	letter, err := svc.Submit(ctx, sender, LetterInput{
		Title:          "Port delays",
		Body:           "Clearing takes three weeks.",
		CompanyName:    "Acme Ltd",
		DepartmentName: "trade",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LetterStatusPending, letter.Status)
	assert.Equal(t, sender.Email, letter.ContactEmail)
	require.NotNil(t, letter.DepartmentID)
	assert.Equal(t, trade.ID, *letter.DepartmentID)

	unrouted, err := svc.Submit(ctx, sender, LetterInput{Title: "General", Body: "Hello", DepartmentName: "Ministry of Magic"})
	require.NoError(t, err)
	assert.Nil(t, unrouted.DepartmentID)

	_, err = svc.Get(ctx, otherDesk, letter.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	deskList, err := svc.List(ctx, desk, LetterListFilter{})
	require.NoError(t, err)
	assert.Len(t, deskList, 1)

	adminList, err := svc.List(ctx, admin, LetterListFilter{})
	require.NoError(t, err)
	assert.Len(t, adminList, 2)

	_, err = svc.UpdateStatus(ctx, desk, letter.ID, domain.LetterStatusResponded, " ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.UpdateStatus(ctx, sender, letter.ID, domain.LetterStatusAcknowledged, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	acked, err := svc.UpdateStatus(ctx, desk, letter.ID, domain.LetterStatusAcknowledged, "")
	require.NoError(t, err)
	assert.Equal(t, domain.LetterStatusAcknowledged, acked.Status)

	_, err = svc.UpdateStatus(ctx, desk, letter.ID, domain.LetterStatusPending, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	responded, err := svc.UpdateStatus(ctx, desk, letter.ID, domain.LetterStatusResponded, "Escalated to customs")
	require.NoError(t, err)
	assert.Equal(t, "Escalated to customs", *responded.ResponseNote)

	notices := pub.notices()
	require.Len(t, notices, 4)
	assert.Equal(t, &trade.ID, notices[0].Audience.DepartmentID)
	assert.Nil(t, notices[1].Audience.DepartmentID)
	assert.Equal(t, []string{sender.ID}, notices[3].Audience.UserIDs)
	assert.Equal(t, []string{sender.Email}, notices[3].Audience.Emails)
}
