package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CancellationFee records a late-cancellation charge for a confirmed appointment
type CancellationFee struct {
	ID                     int64
	AppointmentID          int64
	SalonID                int64
	ClientID               int64
	Amount                 decimal.Decimal
	FeePercentage          decimal.Decimal
	ServicePrice           decimal.Decimal
	HoursBeforeAppointment decimal.Decimal
	CancelledAt            time.Time
	CancelledByEmployeeID  *int64 // employee the appointment was with
	IsPaid                 bool
	PaidAt                 *time.Time
	Notes                  *string
	CreatedAt              time.Time
}

var hundred = decimal.NewFromInt(100)

// ComputeCancellationFee returns the fee owed when appt (still in its pre-cancel status)
// is cancelled at now, or nil when no fee applies.
// A fee applies only to confirmed appointments, with the policy enabled, strictly inside (0, threshold) hours before start.
func ComputeCancellationFee(appt *Appointment, policy CancellationPolicy, price decimal.Decimal, start, now time.Time) *CancellationFee {
	if appt.Status != StatusConfirmed || !policy.Enabled || policy.HoursThreshold <= 0 {
		return nil
	}

	hoursBefore := start.Sub(now).Hours()
	if hoursBefore <= 0 || hoursBefore >= float64(policy.HoursThreshold) {
		return nil
	}

	note := fmt.Sprintf("late cancellation - less than %dh before the appointment", policy.HoursThreshold)

	return &CancellationFee{
		AppointmentID:          appt.ID,
		SalonID:                appt.SalonID,
		ClientID:               appt.ClientID,
		Amount:                 price.Mul(policy.FeePercentage).Div(hundred).Round(2),
		FeePercentage:          policy.FeePercentage,
		ServicePrice:           price,
		HoursBeforeAppointment: decimal.NewFromFloat(hoursBefore).Round(2),
		CancelledAt:            now,
		CancelledByEmployeeID:  appt.EmployeeID,
		Notes:                  &note,
	}
}

// MarkPaid marks the fee as paid at now
func (f *CancellationFee) MarkPaid(now time.Time) error {
	if f.IsPaid {
		return ErrFeeAlreadyPaid
	}
	f.IsPaid = true
	f.PaidAt = &now
	return nil
}
