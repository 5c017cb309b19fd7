package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompletionEvent начисление за выполненную запись (выручка и комиссия сотрудника)
type CompletionEvent struct {
	AppointmentID    int64            `json:"appointment_id"`
	SalonID          int64            `json:"salon_id"`
	ServicePrice     decimal.Decimal  `json:"service_price"`
	EmployeeID       *int64           `json:"employee_id,omitempty"`
	CommissionAmount *decimal.Decimal `json:"commission_amount,omitempty"`
	ReferenceMonth   int              `json:"reference_month"`
	ReferenceYear    int              `json:"reference_year"`
	PriceSource      string           `json:"price_source"`
}

// CancellationFeeRecord штраф за позднюю отмену
type CancellationFeeRecord struct {
	FeeID                  int64           `json:"fee_id"`
	AppointmentID          int64           `json:"appointment_id"`
	SalonID                int64           `json:"salon_id"`
	ClientID               int64           `json:"client_id"`
	Amount                 decimal.Decimal `json:"amount"`
	FeePercentage          decimal.Decimal `json:"fee_percentage"`
	ServicePrice           decimal.Decimal `json:"service_price"`
	HoursBeforeAppointment decimal.Decimal `json:"hours_before_appointment"`
	CancelledAt            time.Time       `json:"cancelled_at"`
	IsPaid                 bool            `json:"is_paid"`
	PaidAt                 *time.Time      `json:"paid_at,omitempty"`
}
