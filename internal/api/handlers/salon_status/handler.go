package salon_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/service/salons"
	"github.com/m04kA/SMC-SalonBooking/internal/service/salons/models"
)

const (
	msgInvalidSalonID     = "invalid salon ID"
	msgInvalidRequestBody = "invalid request body"
	msgMissingUserID      = "missing user ID"
	msgNotFound           = "salon not found"
	msgForbidden          = "access denied"
	msgInvalidData        = "invalid closure data"
)

type Handler struct {
	service SalonService
	logger  Logger
}

func NewHandler(service SalonService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleGet GET /api/v1/salons/{salonId}/status
// Публичный endpoint - без авторизации
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("GET /salons/{id}/status - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	result, err := h.service.GetStatus(r.Context(), salonID)
	if err != nil {
		if errors.Is(err, salons.ErrSalonNotFound) {
			h.logger.Warn("GET /salons/{id}/status - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}

		h.logger.Error("GET /salons/{id}/status - Failed to get status: salon_id=%d, error=%v", salonID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /salons/{id}/status - Status retrieved successfully: salon_id=%d, closed=%t",
		salonID, result.IsTemporarilyClosed)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleUpdate PUT /api/v1/salons/{salonId}/status
// Body: {"closed": true, "closedUntil": "2026-03-10T00:00:00Z", "note": "..."}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("PUT /salons/{id}/status - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /salons/{id}/status - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /salons/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.SalonID = salonID

	// Сервис сам проверит, что пользователь владелец салона
	result, err := h.service.UpdateStatus(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, salons.ErrSalonNotFound):
			h.logger.Warn("PUT /salons/{id}/status - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, salons.ErrAccessDenied):
			h.logger.Warn("PUT /salons/{id}/status - Access denied: salon_id=%d, user_id=%d", salonID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, salons.ErrInvalidInput):
			h.logger.Warn("PUT /salons/{id}/status - Invalid data: salon_id=%d, error=%v", salonID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /salons/{id}/status - Failed to update status: salon_id=%d, error=%v", salonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /salons/{id}/status - Status updated successfully: salon_id=%d, closed=%t",
		salonID, result.IsTemporarilyClosed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
