package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SalonID    int64   `json:"salonId"`
	ServiceID  int64   `json:"serviceId"`
	EmployeeID *int64  `json:"employeeId,omitempty"`
	Date       string  `json:"date"` // "2026-03-02"
	Time       string  `json:"time"` // "10:00"
	Notes      *string `json:"notes,omitempty"`
}

// LinkBookingRequest запись по ссылке: салон берется из ссылки, контакты нужны при первой записи
type LinkBookingRequest struct {
	ServiceID  int64   `json:"serviceId"`
	EmployeeID *int64  `json:"employeeId,omitempty"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Notes      *string `json:"notes,omitempty"`
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"clientId"`
	SalonID         int64     `json:"salonId"`
	ServiceID       int64     `json:"serviceId"`
	EmployeeID      *int64    `json:"employeeId,omitempty"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	BookingLinkID   *int64    `json:"bookingLinkId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Формат даты и времени проверяет use case.
func (r *CreateBookingRequest) ToUseCaseRequest(clientID int64) *createBooking.Request {
	return &createBooking.Request{
		ClientID:   clientID,
		SalonID:    r.SalonID,
		ServiceID:  r.ServiceID,
		EmployeeID: r.EmployeeID,
		Date:       r.Date,
		Time:       r.Time,
		Notes:      r.Notes,
	}
}

// ToUseCaseRequest конвертирует запрос по ссылке в модель use case
func (r *LinkBookingRequest) ToUseCaseRequest(token uuid.UUID) *createBooking.Request {
	return &createBooking.Request{
		LinkToken:  &token,
		Contact:    createBooking.Contact{Name: r.Name, Phone: r.Phone, Email: r.Email},
		ServiceID:  r.ServiceID,
		EmployeeID: r.EmployeeID,
		Date:       r.Date,
		Time:       r.Time,
		Notes:      r.Notes,
	}
}

// FromDomainAppointment конвертирует созданную запись в HTTP response
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              a.ID,
		ClientID:        a.ClientID,
		SalonID:         a.SalonID,
		ServiceID:       a.ServiceID,
		EmployeeID:      a.EmployeeID,
		Date:            a.Date.Format(domain.DateFormat),
		Time:            a.Time.String(),
		DurationMinutes: a.ServiceDuration,
		Status:          string(a.Status),
		Notes:           a.Notes,
		BookingLinkID:   a.BookingLinkID,
		CreatedAt:       a.CreatedAt,
	}
}
