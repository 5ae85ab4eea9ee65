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

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, uniqueIDs([]string{" a", "b", "", "b ", "c"}, "a"))
}

func TestMeetingResponsesAndReschedule(t *testing.T) {
	users := &fakeUsers{}
	organizer := users.add("Organizer", domain.RoleStaff, nil)
	ada := users.add("Ada", domain.RoleUser, nil)
	bayo := users.add("Bayo", domain.RoleUser, nil)
	outsider := users.add("Outsider", domain.RoleUser, nil)

	pub := &recordingPublisher{}
	svc := NewMeetingService(MeetingDependencies{MeetingRepo: newFakeMeetings(), UserRepo: users, Publisher: pub})
	ctx := context.Background()
	start := fixedNow.Add(24 * time.Hour)

	_, err := svc.Schedule(ctx, ada, MeetingInput{Title: "x", StartsAt: start, EndsAt: start.Add(time.Hour), Attendees: []string{bayo.ID}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.Schedule(ctx, organizer, MeetingInput{Title: "Review", StartsAt: start, EndsAt: start, Attendees: []string{organizer.ID}})
	require.Error(t, err)
	details := apperrors.ToDomainError(err).Details
	assert.Contains(t, details, "ends_at")
	assert.Contains(t, details, "attendees")

	m, err := svc.Schedule(ctx, organizer, MeetingInput{
		Title:     "Reform review",
		Location:  "State House",
		StartsAt:  start,
		EndsAt:    start.Add(time.Hour),
		Attendees: []string{ada.ID, bayo.ID, organizer.ID, ada.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ada.ID, bayo.ID}, m.Attendees)

	_, err = svc.Respond(ctx, outsider, m.ID, true)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.Respond(ctx, ada, m.ID, false)
	require.NoError(t, err)
	m, err = svc.Respond(ctx, ada, m.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{ada.ID}, m.Accepted)
	assert.Empty(t, m.Declined)

	_, err = svc.Reschedule(ctx, ada, m.ID, start.Add(time.Hour), start.Add(2*time.Hour))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	m, err = svc.Reschedule(ctx, organizer, m.ID, start.Add(time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingRescheduled, m.Status)
	assert.Empty(t, m.Accepted)

	m, err = svc.Cancel(ctx, organizer, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingCancelled, m.Status)
	_, err = svc.Cancel(ctx, organizer, m.ID)
	require.NoError(t, err)

	_, err = svc.Respond(ctx, bayo, m.ID, true)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	notices := pub.notices()
	// invite, two responses, reschedule, one cancellation
	require.Len(t, notices, 5)
	assert.Equal(t, []string{organizer.ID}, notices[1].Audience.UserIDs)
	assert.ElementsMatch(t, []string{ada.ID, bayo.ID}, notices[3].Audience.UserIDs)

	mine, err := svc.ListMine(ctx, bayo)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
