package booking_links

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/service/bookinglinks/models"
)

type LinkService interface {
	Create(ctx context.Context, req *models.CreateLinkRequest) (*models.LinkResponse, error)
	Toggle(ctx context.Context, salonID, linkID, userID int64) (*models.LinkResponse, error)
	Resolve(ctx context.Context, token uuid.UUID) (*models.PublicLinkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
