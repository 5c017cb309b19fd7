package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSourceLive marks amounts taken from the current service price rather than a booking-time snapshot
const PriceSourceLive = "live"

// CompletionEvent is emitted to the financial ledger when an appointment is completed
type CompletionEvent struct {
	AppointmentID    int64
	SalonID          int64
	ServicePrice     decimal.Decimal
	EmployeeID       *int64
	CommissionAmount *decimal.Decimal
	ReferenceMonth   int
	ReferenceYear    int
	PriceSource      string
}

// NewCompletionEvent builds the ledger event for a completed appointment.
// employee may be nil; commission is set only for percentage-paid employees.
func NewCompletionEvent(appt *Appointment, price decimal.Decimal, employee *Employee, now time.Time) CompletionEvent {
	event := CompletionEvent{
		AppointmentID:  appt.ID,
		SalonID:        appt.SalonID,
		ServicePrice:   price,
		ReferenceMonth: int(now.Month()),
		ReferenceYear:  now.Year(),
		PriceSource:    PriceSourceLive,
	}
	if employee != nil {
		id := employee.ID
		event.EmployeeID = &id
		event.CommissionAmount = employee.Commission(price)
	}
	return event
}
