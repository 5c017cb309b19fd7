package salon_status

import (
	"context"

	"github.com/m04kA/SMC-SalonBooking/internal/service/salons/models"
)

type SalonService interface {
	GetStatus(ctx context.Context, salonID int64) (*models.SalonStatusResponse, error)
	UpdateStatus(ctx context.Context, req *models.UpdateStatusRequest) (*models.SalonStatusResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
