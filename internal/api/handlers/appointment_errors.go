package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments"
)

var appointmentErrors = []struct {
	err     error
	status  int
	message string
}{
	{appointments.ErrAppointmentNotFound, http.StatusNotFound, "appointment not found"},
	{appointments.ErrSalonNotFound, http.StatusNotFound, "salon not found"},
	{appointments.ErrFeeNotFound, http.StatusNotFound, "cancellation fee not found"},
	{appointments.ErrLinkNotFound, http.StatusNotFound, "booking link not found"},
	{appointments.ErrLinkInactive, http.StatusForbidden, "booking link is inactive"},
	{appointments.ErrAccessDenied, http.StatusForbidden, "access denied"},
	{appointments.ErrInvalidTransition, http.StatusConflict, "action is not allowed in the current status"},
	{appointments.ErrNoProposal, http.StatusConflict, "appointment has no reschedule proposal"},
	{appointments.ErrAlreadyStarted, http.StatusConflict, "appointment has already started"},
	{appointments.ErrFeeAlreadyPaid, http.StatusConflict, "cancellation fee already paid"},
}

// AppointmentErrorStatus HTTP статус и сообщение для ошибки сервиса записей.
// ok=false означает внутреннюю ошибку.
func AppointmentErrorStatus(err error) (status int, message string, ok bool) {
	if errors.Is(err, appointments.ErrInvalidInput) {
		return http.StatusBadRequest, err.Error(), true
	}
	for _, e := range appointmentErrors {
		if errors.Is(err, e.err) {
			return e.status, e.message, true
		}
	}
	return http.StatusInternalServerError, msgInternalError, false
}
