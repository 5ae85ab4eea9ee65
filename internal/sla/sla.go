// Package sla measures ticket handling time in weekday hours.
package sla

import (
	"time"
	_ "time/tzdata"
)

// TargetHours is the resolution window for a ticket.
const TargetHours = 72.0

// PortalZone is the portal's civil time zone.
const PortalZone = "Africa/Lagos"

// LoadLocation resolves name, falling back to West Africa Time when the
// host has no zoneinfo database.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = PortalZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WAT", 3600)
	}
	return loc
}

// WeekdayHours walks [start, end) an hour at a time and sums every slice
// whose start falls on Monday through Friday in loc. The last slice may be
// shorter than an hour.
func WeekdayHours(start, end time.Time, loc *time.Location) float64 {
	if !end.After(start) {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}
	var total time.Duration
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		slice := time.Hour
		if rest := end.Sub(t); rest < slice {
			slice = rest
		}
		switch t.In(loc).Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		total += slice
	}
	return total.Hours()
}

// Breached reports whether hours exceed the target window.
func Breached(hours float64) bool {
	return hours > TargetHours
}
