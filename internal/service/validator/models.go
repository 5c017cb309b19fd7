package validator

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// Request предлагаемая запись для проверки
type Request struct {
	Salon    *domain.Salon
	Service  *domain.Service
	ClientID int64
	Start    time.Time // начало слота в часовом поясе салона

	// Employee явно выбранный сотрудник, nil = подобрать свободного
	Employee *domain.Employee

	// ExcludeAppointmentID запись, которую переносим (не конфликтует сама с собой)
	ExcludeAppointmentID *int64

	// Scope транзакция с блокировками. nil = рекомендательная проверка без блокировок.
	Scope *txmanager.Scope
}

// End конец слота
func (r Request) End() time.Time {
	return domain.ComputeEnd(r.Start, r.Service.DurationMinutes)
}

// Result типизированный результат проверки
type Result struct {
	OK       bool
	Reason   string
	Code     domain.RejectionCode
	Employee *domain.Employee // назначенный сотрудник при OK
}

func reject(code domain.RejectionCode, reason string) Result {
	return Result{Code: code, Reason: reason}
}

func accept(employee *domain.Employee) Result {
	return Result{OK: true, Employee: employee}
}
