package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// SalonStatus represents the lifecycle state of a salon account
type SalonStatus string

const (
	SalonStatusActive   SalonStatus = "active"
	SalonStatusInactive SalonStatus = "inactive"
)

// DayHours is an open/close pair for one weekday group. A nil bound means closed.
type DayHours struct {
	Open  *types.TimeString
	Close *types.TimeString
}

// CancellationPolicy describes when a late cancellation is charged
type CancellationPolicy struct {
	Enabled        bool
	FeePercentage  decimal.Decimal // 0-100
	HoursThreshold int             // > 0
}

// Salon represents a tenant of the platform
type Salon struct {
	ID       int64
	OwnerID  int64
	Name     string
	Timezone string // IANA zone, empty = service default
	Status   SalonStatus

	Weekdays DayHours // Monday-Friday
	Saturday DayHours
	Sunday   DayHours

	IsTemporarilyClosed bool
	ClosedUntil         *time.Time
	ClosureNote         *string

	CancellationPolicy CancellationPolicy

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkingHours returns the open/close pair for weekdayIndex (Monday = 0).
// ok is false when the salon does not work that day.
func (s *Salon) WorkingHours(weekdayIndex int) (open, close types.TimeString, ok bool) {
	var hours DayHours
	switch {
	case weekdayIndex >= 0 && weekdayIndex <= 4:
		hours = s.Weekdays
	case weekdayIndex == 5:
		hours = s.Saturday
	case weekdayIndex == 6:
		hours = s.Sunday
	default:
		return "", "", false
	}

	if hours.Open == nil || hours.Close == nil {
		return "", "", false
	}
	return *hours.Open, *hours.Close, true
}

// ClosedAt reports whether a temporary closure covers the instant start.
// A closure whose ClosedUntil is not after start is treated as lifted.
func (s *Salon) ClosedAt(start time.Time) (bool, string) {
	if !s.IsTemporarilyClosed {
		return false, ""
	}

	if s.ClosedUntil != nil {
		if !start.Before(*s.ClosedUntil) {
			return false, ""
		}
		if s.ClosureNote != nil && *s.ClosureNote != "" {
			return true, fmt.Sprintf("salon is temporarily closed: %s", *s.ClosureNote)
		}
		return true, fmt.Sprintf("salon is closed until %s", s.ClosedUntil.In(start.Location()).Format(DisplayDateFormat))
	}

	if s.ClosureNote != nil && *s.ClosureNote != "" {
		return true, fmt.Sprintf("salon is temporarily closed: %s", *s.ClosureNote)
	}
	return true, "salon is temporarily closed"
}

// WithinHours reports whether [start, end) lies inside the working hours of start's weekday.
// start and end must already be expressed in the salon's location.
func (s *Salon) WithinHours(start, end time.Time) (bool, string) {
	open, close, ok := s.WorkingHours(WeekdayIndex(start))
	if !ok {
		return false, "salon does not work on this day of the week"
	}

	openAt := CombineDateTime(start, open, start.Location())
	closeAt := CombineDateTime(start, close, start.Location())

	if start.Before(openAt) {
		return false, fmt.Sprintf("salon opens at %s", open)
	}
	if end.After(closeAt) {
		return false, fmt.Sprintf("appointment goes past closing time (%s)", close)
	}
	return true, ""
}

// IsOpenFor is the pure business-hours predicate for the span [start, end).
// It never mutates the salon: an expired closure is reported as open and
// the flag reset is left to NeedsReopen and the storage maintenance step.
func (s *Salon) IsOpenFor(start, end time.Time) (bool, string) {
	if closed, reason := s.ClosedAt(start); closed {
		return false, reason
	}
	return s.WithinHours(start, end)
}

// NeedsReopen returns true when a temporary closure has expired at now and the flag should be cleared.
func (s *Salon) NeedsReopen(now time.Time) bool {
	return s.IsTemporarilyClosed && s.ClosedUntil != nil && !now.Before(*s.ClosedUntil)
}

// Location returns the salon's time zone, or fallback when it has none or it is unknown.
func (s *Salon) Location(fallback *time.Location) *time.Location {
	return LoadLocation(s.Timezone, fallback)
}

// IsOwnedBy returns true if userID owns the salon
func (s *Salon) IsOwnedBy(userID int64) bool {
	return s.OwnerID == userID
}
