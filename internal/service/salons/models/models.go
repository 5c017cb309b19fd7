package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// UpdateStatusRequest закрытие или открытие салона владельцем.
// ClosedUntil и Note учитываются только при Closed=true.
type UpdateStatusRequest struct {
	UserID      int64
	SalonID     int64
	Closed      bool       `json:"closed"`
	ClosedUntil *time.Time `json:"closedUntil,omitempty"`
	Note        *string    `json:"note,omitempty"`
}

// DayHoursResponse часы работы группы дней, nil = выходной
type DayHoursResponse struct {
	Open  *string `json:"open"`
	Close *string `json:"close"`
}

// SalonStatusResponse публичный статус салона
type SalonStatusResponse struct {
	ID                  int64            `json:"id"`
	Name                string           `json:"name"`
	Timezone            string           `json:"timezone"`
	IsTemporarilyClosed bool             `json:"isTemporarilyClosed"`
	ClosedUntil         *time.Time       `json:"closedUntil,omitempty"`
	ClosureNote         *string          `json:"closureNote,omitempty"`
	Weekdays            DayHoursResponse `json:"weekdays"`
	Saturday            DayHoursResponse `json:"saturday"`
	Sunday              DayHoursResponse `json:"sunday"`
}

// FromDomainSalon конвертирует салон в DTO. Истекшее закрытие показывается как открытый салон.
func FromDomainSalon(s *domain.Salon, tz string, now time.Time) *SalonStatusResponse {
	resp := &SalonStatusResponse{
		ID:                  s.ID,
		Name:                s.Name,
		Timezone:            tz,
		IsTemporarilyClosed: s.IsTemporarilyClosed,
		ClosedUntil:         s.ClosedUntil,
		ClosureNote:         s.ClosureNote,
		Weekdays:            fromDayHours(s.Weekdays),
		Saturday:            fromDayHours(s.Saturday),
		Sunday:              fromDayHours(s.Sunday),
	}

	if s.NeedsReopen(now) {
		resp.IsTemporarilyClosed = false
		resp.ClosedUntil = nil
		resp.ClosureNote = nil
	}

	return resp
}

func fromDayHours(h domain.DayHours) DayHoursResponse {
	var resp DayHoursResponse
	if h.Open != nil {
		open := h.Open.String()
		resp.Open = &open
	}
	if h.Close != nil {
		close := h.Close.String()
		resp.Close = &close
	}
	return resp
}
