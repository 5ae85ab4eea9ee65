package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(day, hour, minute int) time.Time {
	// 2024-06-03 is a Monday.
	return time.Date(2024, time.June, day, hour, minute, 0, 0, time.UTC)
}

func TestWeekdayHours(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  float64
	}{
		{name: "empty interval", start: at(3, 9, 0), end: at(3, 9, 0), want: 0},
		{name: "reversed interval", start: at(4, 9, 0), end: at(3, 9, 0), want: 0},
		{name: "within monday", start: at(3, 9, 0), end: at(3, 17, 0), want: 8},
		{name: "partial final slice", start: at(3, 9, 0), end: at(3, 10, 30), want: 1.5},
		{name: "within saturday", start: at(8, 1, 0), end: at(8, 23, 0), want: 0},
		{name: "saturday into sunday", start: at(8, 0, 0), end: at(9, 23, 59), want: 0},
		{name: "friday noon to monday noon", start: at(7, 12, 0), end: at(10, 12, 0), want: 24},
		{name: "full weekday", start: at(4, 0, 0), end: at(5, 0, 0), want: 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WeekdayHours(tt.start, tt.end, time.UTC), 1e-9)
		})
	}
}

func TestWeekdayHours_SevenDaysExcludeOneWeekend(t *testing.T) {
	starts := []time.Time{
		at(3, 0, 0),
		at(5, 10, 30),
		at(7, 23, 15),
		at(6, 13, 59),
	}
	for _, start := range starts {
		end := start.Add(7 * 24 * time.Hour)
		got := WeekdayHours(start, end, time.UTC)
		assert.InDelta(t, 7*24-48, got, 1e-9, start.String())
	}
}

func TestWeekdayHours_UsesLocation(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	// 23:30 UTC Friday is 00:30 Saturday in Lagos.
	start := time.Date(2024, time.June, 7, 23, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	assert.InDelta(t, 1.0, WeekdayHours(start, end, time.UTC), 1e-9)
	assert.InDelta(t, 0.0, WeekdayHours(start, end, lagos), 1e-9)
}

func TestLoadLocation_Fallback(t *testing.T) {
	loc := LoadLocation("Nowhere/Invalid")
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 3600, offset)
}

func TestLoadLocation_EmbeddedZoneinfo(t *testing.T) {
	loc := LoadLocation(PortalZone)
	assert.Equal(t, PortalZone, loc.String())

	loc = LoadLocation("")
	assert.Equal(t, PortalZone, loc.String())
}

func TestBreached(t *testing.T) {
	assert.False(t, Breached(72))
	assert.True(t, Breached(72.01))
}
