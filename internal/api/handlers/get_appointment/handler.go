package get_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "invalid appointment ID"
	msgInvalidToken         = "invalid booking link token"
	msgMissingUserID        = "missing user ID"
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

// Handle GET /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /appointments/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	h.get(w, r, "GET /appointments/{id}", models.Actor{UserID: userID})
}

// HandleLink GET /api/v1/booking-links/{token}/appointments/{appointmentId}
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	token, err := handlers.PathToken(r)
	if err != nil {
		h.logger.Warn("GET /booking-links/{token}/appointments/{id} - Invalid token: %v", err)
		handlers.RespondBadRequest(w, msgInvalidToken)
		return
	}

	h.get(w, r, "GET /booking-links/{token}/appointments/{id}", models.Actor{LinkToken: &token})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, route string, actor models.Actor) {
	appointmentID, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("%s - Invalid appointment ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	appointment, err := h.service.GetByID(r.Context(), appointmentID, actor)
	if err != nil {
		status, message, known := handlers.AppointmentErrorStatus(err)
		if !known {
			h.logger.Error("%s - Failed to get appointment: appointment_id=%d, error=%v", route, appointmentID, err)
		} else {
			h.logger.Warn("%s - appointment_id=%d: %v", route, appointmentID, err)
		}
		handlers.RespondError(w, status, message)
		return
	}

	h.logger.Info("%s - Appointment retrieved successfully: appointment_id=%d", route, appointmentID)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
