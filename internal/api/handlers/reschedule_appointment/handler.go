package reschedule_appointment

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "invalid appointment ID"
	msgInvalidRequestBody   = "invalid request body"
	msgInvalidDecision      = "decision must be accept or reject"
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

// HandlePropose POST /api/v1/appointments/{appointmentId}/reschedule
// Body: {"date": "YYYY-MM-DD", "time": "HH:MM", "reason": "..."}
func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	const route = "POST /appointments/{id}/reschedule"

	appointmentID, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("%s - Invalid appointment ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = models.Actor{UserID: userID}

	result, err := h.service.ProposeReschedule(r.Context(), appointmentID, &req)
	h.respond(w, route, appointmentID, result, err)
}

// HandleDecision POST /api/v1/appointments/{appointmentId}/reschedule/{decision}
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	const route = "POST /appointments/{id}/reschedule/{decision}"

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	h.decide(w, r, route, models.Actor{UserID: userID})
}

// HandleLinkDecision POST /api/v1/booking-links/{token}/appointments/{appointmentId}/reschedule/{decision}
func (h *Handler) HandleLinkDecision(w http.ResponseWriter, r *http.Request) {
	const route = "POST /booking-links/{token}/appointments/{id}/reschedule/{decision}"

	token, err := handlers.PathToken(r)
	if err != nil {
		h.logger.Warn("%s - Invalid token: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidToken)
		return
	}

	h.decide(w, r, route, models.Actor{LinkToken: &token})
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, route string, actor models.Actor) {
	appointmentID, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("%s - Invalid appointment ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var accept bool
	switch mux.Vars(r)["decision"] {
	case "accept":
		accept = true
	case "reject":
		accept = false
	default:
		h.logger.Warn("%s - Invalid decision: %s", route, mux.Vars(r)["decision"])
		handlers.RespondBadRequest(w, msgInvalidDecision)
		return
	}

	result, err := h.service.RespondToReschedule(r.Context(), appointmentID, &models.RescheduleDecisionRequest{Actor: actor, Accept: accept})
	h.respond(w, route, appointmentID, result, err)
}

func (h *Handler) respond(w http.ResponseWriter, route string, appointmentID int64, result *models.ActionResponse, err error) {
	if err != nil {
		status, message, known := handlers.AppointmentErrorStatus(err)
		if !known {
			h.logger.Error("%s - Failed: appointment_id=%d, error=%v", route, appointmentID, err)
		} else {
			h.logger.Warn("%s - appointment_id=%d: %v", route, appointmentID, err)
		}
		handlers.RespondError(w, status, message)
		return
	}

	if result.Rejection != nil {
		h.logger.Warn("%s - Slot rejected: appointment_id=%d, code=%s", route, appointmentID, result.Rejection.Code)
		handlers.RespondRejection(w, result.Rejection.Code, result.Rejection.Message)
		return
	}

	h.logger.Info("%s - Done: appointment_id=%d, status=%s", route, appointmentID, result.Appointment.Status)
	handlers.RespondJSON(w, http.StatusOK, result.Appointment)
}
