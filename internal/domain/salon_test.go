package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

func hours(open, close string) DayHours {
	o, c := types.TimeString(open), types.TimeString(close)
	return DayHours{Open: &o, Close: &c}
}

func testSalon() *Salon {
	return &Salon{
		ID:       1,
		OwnerID:  10,
		Weekdays: hours("09:00", "18:00"),
		Saturday: hours("09:00", "13:00"),
	}
}

func TestSalon_WorkingHours(t *testing.T) {
	s := testSalon()

	open, close, ok := s.WorkingHours(3)
	assert.True(t, ok)
	assert.Equal(t, types.TimeString("09:00"), open)
	assert.Equal(t, types.TimeString("18:00"), close)

	_, close, ok = s.WorkingHours(5)
	assert.True(t, ok)
	assert.Equal(t, types.TimeString("13:00"), close)

	_, _, ok = s.WorkingHours(6)
	assert.False(t, ok, "sunday closed")

	_, _, ok = s.WorkingHours(7)
	assert.False(t, ok)
}

func TestSalon_WorkingHours_HalfOpenPairIsClosed(t *testing.T) {
	s := testSalon()
	s.Sunday = DayHours{Open: ptr.Ptr(types.TimeString("10:00"))}

	_, _, ok := s.WorkingHours(6)
	assert.False(t, ok)
}

func TestSalon_IsOpenFor_Hours(t *testing.T) {
	s := testSalon()

	cases := []struct {
		name   string
		start  time.Time
		end    time.Time
		ok     bool
		reason string
	}{
		{"inside", at(2, 10, 0), at(2, 11, 0), true, ""},
		{"ends exactly at close", at(2, 17, 30), at(2, 18, 0), true, ""},
		{"before open", at(2, 8, 30), at(2, 9, 30), false, "salon opens at 09:00"},
		{"overhangs close", at(2, 17, 30), at(2, 18, 30), false, "appointment goes past closing time (18:00)"},
		{"sunday", at(8, 10, 0), at(8, 11, 0), false, "salon does not work on this day of the week"},
		{"saturday short day", at(7, 12, 30), at(7, 13, 30), false, "appointment goes past closing time (13:00)"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := s.IsOpenFor(tt.start, tt.end)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestSalon_IsOpenFor_TemporaryClosure(t *testing.T) {
	t.Run("closed until with note", func(t *testing.T) {
		s := testSalon()
		s.IsTemporarilyClosed = true
		s.ClosedUntil = ptr.Ptr(at(4, 12, 0))
		s.ClosureNote = ptr.Ptr("renovation")

		ok, reason := s.IsOpenFor(at(3, 10, 0), at(3, 11, 0))
		assert.False(t, ok)
		assert.Equal(t, "salon is temporarily closed: renovation", reason)
	})

	t.Run("closed until without note", func(t *testing.T) {
		s := testSalon()
		s.IsTemporarilyClosed = true
		s.ClosedUntil = ptr.Ptr(at(4, 12, 0))

		ok, reason := s.IsOpenFor(at(3, 10, 0), at(3, 11, 0))
		assert.False(t, ok)
		assert.Equal(t, "salon is closed until 04/03/2026 12:00", reason)
	})

	t.Run("closure expired before start", func(t *testing.T) {
		s := testSalon()
		s.IsTemporarilyClosed = true
		s.ClosedUntil = ptr.Ptr(at(4, 12, 0))

		ok, _ := s.IsOpenFor(at(4, 14, 0), at(4, 15, 0))
		assert.True(t, ok)
		assert.True(t, s.IsTemporarilyClosed, "predicate must not mutate")
	})

	t.Run("indefinite", func(t *testing.T) {
		s := testSalon()
		s.IsTemporarilyClosed = true

		ok, reason := s.IsOpenFor(at(3, 10, 0), at(3, 11, 0))
		assert.False(t, ok)
		assert.Equal(t, "salon is temporarily closed", reason)
	})
}

func TestSalon_NeedsReopen(t *testing.T) {
	s := testSalon()
	assert.False(t, s.NeedsReopen(at(3, 10, 0)))

	s.IsTemporarilyClosed = true
	assert.False(t, s.NeedsReopen(at(3, 10, 0)), "indefinite closure never auto-reopens")

	s.ClosedUntil = ptr.Ptr(at(4, 12, 0))
	assert.False(t, s.NeedsReopen(at(4, 11, 59)))
	assert.True(t, s.NeedsReopen(at(4, 12, 0)))
}
