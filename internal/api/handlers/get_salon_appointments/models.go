package get_salon_appointments

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// date задает один день, startDate/endDate диапазон.
func ToServiceRequest(salonID, userID int64, employeeIDStr, statusStr, dateStr, startDateStr, endDateStr string) (*models.ListSalonAppointmentsRequest, error) {
	req := &models.ListSalonAppointmentsRequest{
		UserID:  userID,
		SalonID: salonID,
	}

	if employeeIDStr != "" {
		employeeID, err := strconv.ParseInt(employeeIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.EmployeeID = &employeeID
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if dateStr != "" {
		startDateStr, endDateStr = dateStr, dateStr
	}

	if startDateStr != "" {
		date, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
	}

	if endDateStr != "" {
		date, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &date
	}

	return req, nil
}
