package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pebecgov/pebec-app-sub000/internal/repository"
)

const (
	ticketNumberPrefix       = "REP"
	registrationNumberPrefix = "EVT"
)

// Numberer issues human-readable PREFIX-DDMMYY-NNN identifiers from a per-day
// counter. Days roll over at UTC midnight regardless of the portal time zone.
type Numberer struct {
	seq repository.SequenceRepository
	now Clock
}

func NewNumberer(seq repository.SequenceRepository, now Clock) *Numberer {
	return &Numberer{seq: seq, now: clockOrDefault(now)}
}

// TicketNumber returns the next REP number.
func (n *Numberer) TicketNumber(ctx context.Context) (string, error) {
	return n.next(ctx, ticketNumberPrefix)
}

// RegistrationNumber returns the next EVT number.
func (n *Numberer) RegistrationNumber(ctx context.Context) (string, error) {
	return n.next(ctx, registrationNumberPrefix)
}

func (n *Numberer) next(ctx context.Context, prefix string) (string, error) {
	now := n.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	value, err := n.seq.Next(ctx, prefix, day)
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", prefix, err)
	}
	return FormatNumber(prefix, day, value), nil
}

// FormatNumber renders prefix, day and counter; counters past 999 widen.
func FormatNumber(prefix string, day time.Time, value int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, day.Format("020106"), value)
}
