package scheduling

import (
	"fmt"
	"time"
)

// TimeOfDay is a naive wall-clock time expressed as minutes since midnight.
// Slots start on a 15-minute grid inside the facility operating window.
type TimeOfDay int

const (
	// SlotInterval is the booking grid resolution in minutes.
	SlotInterval = 15

	// OpeningTime and ClosingTime bound the facility operating window.
	// A slot may start at any grid point in [OpeningTime, ClosingTime).
	OpeningTime TimeOfDay = 8 * 60
	ClosingTime TimeOfDay = 18 * 60
)

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Bookable reports whether t is a valid slot start: on the grid and
// inside the operating window (end-exclusive).
func (t TimeOfDay) Bookable() bool {
	return t%SlotInterval == 0 && t >= OpeningTime && t < ClosingTime
}

// DateOnly truncates t to midnight UTC so calendar dates compare by day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date.
func Today() time.Time {
	return DateOnly(time.Now())
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
