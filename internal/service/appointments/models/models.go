package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Actor кто выполняет действие: пользователь (X-User-ID) или клиент по ссылке
type Actor struct {
	UserID    int64
	LinkToken *uuid.UUID
}

// Request модели

// UpdateStatusRequest смена статуса сотрудником: confirmed, completed, no_show
type UpdateStatusRequest struct {
	Actor  Actor
	Status string `json:"status"`
}

// RescheduleRequest предложение переноса от сотрудника
type RescheduleRequest struct {
	Actor  Actor
	Date   string  `json:"date"` // "2026-03-02"
	Time   string  `json:"time"` // "10:00"
	Reason *string `json:"reason,omitempty"`
}

// RescheduleDecisionRequest ответ клиента на предложение переноса
type RescheduleDecisionRequest struct {
	Actor  Actor
	Accept bool
}

// CancelRequest отмена записи клиентом или сотрудником
type CancelRequest struct {
	Actor Actor
}

// ListSalonAppointmentsRequest запрос записей салона
type ListSalonAppointmentsRequest struct {
	UserID     int64
	SalonID    int64
	EmployeeID *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *string
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListSalonAppointmentsRequest) ToDomainFilter() (domain.SalonAppointmentsFilter, error) {
	filter := domain.SalonAppointmentsFilter{
		SalonID:    r.SalonID,
		EmployeeID: r.EmployeeID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID               int64   `json:"id"`
	ClientID         int64   `json:"clientId"`
	SalonID          int64   `json:"salonId"`
	ServiceID        int64   `json:"serviceId"`
	EmployeeID       *int64  `json:"employeeId,omitempty"`
	Date             string  `json:"date"` // "2026-03-02"
	Time             string  `json:"time"` // "10:00"
	DurationMinutes  int     `json:"durationMinutes"`
	Status           string  `json:"status"`
	Notes            *string `json:"notes,omitempty"`
	RescheduledDate  *string `json:"rescheduledDate,omitempty"`
	RescheduledTime  *string `json:"rescheduledTime,omitempty"`
	RescheduleReason *string `json:"rescheduleReason,omitempty"`
	BookingLinkID    *int64  `json:"bookingLinkId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Rejection ожидаемый отказ с причиной для показа пользователю
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionResponse результат действия, которое может быть отклонено проверкой слота
type ActionResponse struct {
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
	Rejection   *Rejection           `json:"rejection,omitempty"`
}

// FeeResponse штраф за позднюю отмену
type FeeResponse struct {
	ID                     int64           `json:"id"`
	AppointmentID          int64           `json:"appointmentId"`
	SalonID                int64           `json:"salonId"`
	ClientID               int64           `json:"clientId"`
	Amount                 decimal.Decimal `json:"amount"`
	FeePercentage          decimal.Decimal `json:"feePercentage"`
	ServicePrice           decimal.Decimal `json:"servicePrice"`
	HoursBeforeAppointment decimal.Decimal `json:"hoursBeforeAppointment"`
	CancelledAt            time.Time       `json:"cancelledAt"`
	IsPaid                 bool            `json:"isPaid"`
	PaidAt                 *time.Time      `json:"paidAt,omitempty"`
	Notes                  *string         `json:"notes,omitempty"`
}

// CancelResponse отмененная запись и штраф, если он начислен
type CancelResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
	Fee         *FeeResponse         `json:"fee,omitempty"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:               a.ID,
		ClientID:         a.ClientID,
		SalonID:          a.SalonID,
		ServiceID:        a.ServiceID,
		EmployeeID:       a.EmployeeID,
		Date:             a.Date.Format(domain.DateFormat),
		Time:             a.Time.String(),
		DurationMinutes:  a.ServiceDuration,
		Status:           string(a.Status),
		Notes:            a.Notes,
		RescheduleReason: a.RescheduleReason,
		BookingLinkID:    a.BookingLinkID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}

	if a.RescheduledDate != nil {
		d := a.RescheduledDate.Format(domain.DateFormat)
		resp.RescheduledDate = &d
	}
	if a.RescheduledTime != nil {
		t := a.RescheduledTime.String()
		resp.RescheduledTime = &t
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	result := &AppointmentListResponse{Appointments: make([]AppointmentResponse, 0, len(list))}
	for _, a := range list {
		result.Appointments = append(result.Appointments, *FromDomainAppointment(a))
	}
	return result
}

// FromDomainFee конвертирует штраф в DTO
func FromDomainFee(f *domain.CancellationFee) *FeeResponse {
	if f == nil {
		return nil
	}

	return &FeeResponse{
		ID:                     f.ID,
		AppointmentID:          f.AppointmentID,
		SalonID:                f.SalonID,
		ClientID:               f.ClientID,
		Amount:                 f.Amount,
		FeePercentage:          f.FeePercentage,
		ServicePrice:           f.ServicePrice,
		HoursBeforeAppointment: f.HoursBeforeAppointment,
		CancelledAt:            f.CancelledAt,
		IsPaid:                 f.IsPaid,
		PaidAt:                 f.PaidAt,
		Notes:                  f.Notes,
	}
}

// ToDomainStatus конвертирует строку в статус записи
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
