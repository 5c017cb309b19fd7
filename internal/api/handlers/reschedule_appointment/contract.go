package reschedule_appointment

import (
	"context"

	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
)

type AppointmentService interface {
	ProposeReschedule(ctx context.Context, id int64, req *models.RescheduleRequest) (*models.ActionResponse, error)
	RespondToReschedule(ctx context.Context, id int64, req *models.RescheduleDecisionRequest) (*models.ActionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
