package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// Contact контактные данные клиента, пришедшего по ссылке
type Contact struct {
	Name  *string
	Phone *string
	Email *string
}

// Request модель запроса на создание записи.
// Клиент задается либо ClientID (зарегистрированный пользователь), либо LinkToken.
type Request struct {
	ClientID  int64
	LinkToken *uuid.UUID
	Contact   Contact // используется только при первой записи по ссылке

	SalonID    int64 // при записи по ссылке берется из ссылки
	ServiceID  int64
	EmployeeID *int64 // nil = назначить свободного сотрудника
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	Notes      *string
}

// Rejection ожидаемый отказ в записи с причиной для показа пользователю
type Rejection struct {
	Code   domain.RejectionCode
	Reason string
}

// Response результат: создана запись либо отказ
type Response struct {
	Appointment *domain.Appointment
	Rejection   *Rejection
}

// Created возвращает true, если запись создана
func (r *Response) Created() bool {
	return r.Appointment != nil
}

// parsedRequest проверенные и разобранные поля запроса
type parsedRequest struct {
	date time.Time
	time types.TimeString
}
