package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicketSLAStart(t *testing.T) {
	created := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	ticket := &Ticket{CreatedAt: created}
	assert.Equal(t, created, ticket.SLAStart())

	reassigned := created.Add(5 * time.Hour)
	ticket.ReassignedAt = &reassigned
	assert.Equal(t, reassigned, ticket.SLAStart())

	earlier := created.Add(-time.Hour)
	ticket.ReassignedAt = &earlier
	assert.Equal(t, created, ticket.SLAStart())
}

func TestMeetingRespond(t *testing.T) {
	m := &Meeting{Attendees: []string{"a", "b"}}
	m.Respond("a", true)
	m.Respond("b", false)
	assert.Equal(t, []string{"a"}, m.Accepted)
	assert.Equal(t, []string{"b"}, m.Declined)

	m.Respond("a", false)
	assert.Empty(t, m.Accepted)
	assert.ElementsMatch(t, []string{"a", "b"}, m.Declined)
	assert.True(t, m.IsAttendee("b"))
	assert.False(t, m.IsAttendee("c"))
}

func TestPercentComplete(t *testing.T) {
	assert.Equal(t, 0, PercentComplete(nil))
	steps := []ProgressStep{{Completed: true}, {Completed: false}, {Completed: true}}
	assert.Equal(t, 66, PercentComplete(steps))
	assert.Equal(t, 2, CountCompleted(steps))
}

func TestSaberMaterialVisibleTo(t *testing.T) {
	open := &SaberMaterial{}
	assert.True(t, open.VisibleTo(RoleUser))

	gated := &SaberMaterial{VisibleRoles: []Role{RoleSaberAgent}}
	assert.True(t, gated.VisibleTo(RoleSaberAgent))
	assert.False(t, gated.VisibleTo(RoleMDA))
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, TicketStatusResolved.Terminal())
	assert.False(t, TicketStatusInProgress.Terminal())
	assert.False(t, TicketStatus("pending").Valid())
	assert.True(t, RoleReformChampion.Valid())
	assert.True(t, LetterStatusAcknowledged.Valid())
}
