package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is an offering of a salon
type Service struct {
	ID              int64
	SalonID         int64
	Name            string
	DurationMinutes int
	Price           decimal.Decimal
	IsActive        bool
}

// PaymentType defines how an employee is paid
type PaymentType string

const (
	PaymentMonthly    PaymentType = "monthly"
	PaymentWeekly     PaymentType = "weekly"
	PaymentDaily      PaymentType = "daily"
	PaymentPercentage PaymentType = "percentage"
)

// Employee is a staff member of a salon
type Employee struct {
	ID                   int64
	SalonID              int64
	UserID               *int64 // аккаунт сотрудника, если есть
	Name                 string
	IsActive             bool
	PaymentType          PaymentType
	CommissionPercentage decimal.Decimal
	ServiceIDs           []int64 // услуги, которые может выполнять сотрудник

	CreatedAt time.Time
}

// CanPerform returns true if the employee is active and qualified for serviceID
func (e *Employee) CanPerform(serviceID int64) bool {
	return e.IsActive && e.IsQualified(serviceID)
}

// IsQualified returns true if serviceID is in the employee's skill set
func (e *Employee) IsQualified(serviceID int64) bool {
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// Commission returns the commission owed for a service price, or nil when the employee is not paid by percentage
func (e *Employee) Commission(price decimal.Decimal) *decimal.Decimal {
	if e.PaymentType != PaymentPercentage || e.CommissionPercentage.IsZero() {
		return nil
	}
	amount := price.Mul(e.CommissionPercentage).Div(decimal.NewFromInt(100)).Round(2)
	return &amount
}
