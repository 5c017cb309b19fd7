package domain

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// Overlaps reports whether half-open intervals [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ComputeEnd returns the end of a slot that starts at start and lasts durationMinutes.
// All appointment end-time arithmetic goes through this function.
func ComputeEnd(start time.Time, durationMinutes int) time.Time {
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}

// CombineDateTime builds an aware timestamp from a calendar date and a wall-clock time in loc.
// Only the year, month and day of date are used.
func CombineDateTime(date time.Time, t types.TimeString, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// DateOnly strips the time of day, keeping the calendar date in UTC (storage representation of DATE columns).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayIndex returns the weekday with Monday = 0 ... Sunday = 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// LoadLocation resolves an IANA zone name, falling back to fallback when name is empty or unknown.
func LoadLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
