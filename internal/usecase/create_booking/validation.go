package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// validateRequest валидирует входные данные до любых обращений к хранилищу
func validateRequest(req *Request) (*parsedRequest, error) {
	if req.LinkToken == nil {
		if req.ClientID <= 0 {
			return nil, fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
		}
		if req.SalonID <= 0 {
			return nil, fmt.Errorf("%w: salonID must be positive", ErrInvalidInput)
		}
	}

	if req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employeeID must be positive", ErrInvalidInput)
	}

	if req.Date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD: %v", ErrInvalidInput, err)
	}

	if req.Time == "" {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if _, err := time.Parse(domain.TimeFormat, req.Time); err != nil {
		return nil, fmt.Errorf("%w: invalid time format, expected HH:MM: %v", ErrInvalidInput, err)
	}
	startTime, err := types.NewTimeStringFromString(req.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time: %v", ErrInvalidInput, err)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return &parsedRequest{date: date, time: startTime}, nil
}
