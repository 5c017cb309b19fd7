package get_salon_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
)

const (
	msgInvalidSalonID = "invalid salon ID"
	msgMissingUserID  = "missing user ID"
	msgInvalidParams  = "invalid query parameters"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{salonId}/appointments
// Query params: employeeId, status, date или startDate/endDate (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("GET /salons/{id}/appointments - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /salons/{id}/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	q := r.URL.Query()
	serviceReq, err := ToServiceRequest(salonID, userID, q.Get("employeeId"), q.Get("status"), q.Get("date"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.logger.Warn("GET /salons/{id}/appointments - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ListBySalon(r.Context(), serviceReq)
	if err != nil {
		status, message, known := handlers.AppointmentErrorStatus(err)
		if !known {
			h.logger.Error("GET /salons/{id}/appointments - Failed to list appointments: salon_id=%d, error=%v", salonID, err)
		} else {
			h.logger.Warn("GET /salons/{id}/appointments - salon_id=%d, user_id=%d: %v", salonID, userID, err)
		}
		handlers.RespondError(w, status, message)
		return
	}

	h.logger.Info("GET /salons/{id}/appointments - Appointments retrieved successfully: salon_id=%d, count=%d",
		salonID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
