package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date       string   `json:"date"`
	SalonID    int64    `json:"salonId"`
	ServiceID  int64    `json:"serviceId"`
	EmployeeID *int64   `json:"employeeId,omitempty"`
	Slots      []string `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		Date:       resp.Date.Format(domain.DateFormat),
		SalonID:    resp.SalonID,
		ServiceID:  resp.ServiceID,
		EmployeeID: resp.EmployeeID,
		Slots:      slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(salonID, serviceID int64, employeeID *int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		SalonID:    salonID,
		ServiceID:  serviceID,
		EmployeeID: employeeID,
		Date:       date,
	}, nil
}
