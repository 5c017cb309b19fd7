package booking_links

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/service/bookinglinks"
	"github.com/m04kA/SMC-SalonBooking/internal/service/bookinglinks/models"
)

const (
	msgInvalidSalonID     = "invalid salon ID"
	msgInvalidLinkID      = "invalid booking link ID"
	msgInvalidToken       = "invalid booking link token"
	msgInvalidRequestBody = "invalid request body"
	msgMissingUserID      = "missing user ID"
	msgLinkNotFound       = "booking link not found"
	msgSalonNotFound      = "salon not found"
	msgForbidden          = "access denied"
	msgInvalidData        = "invalid contact data"
)

type Handler struct {
	service LinkService
	logger  Logger
}

func NewHandler(service LinkService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/salons/{salonId}/booking-links
// Body: {"name": "...", "phone": "...", "email": "..."} - все поля опциональны
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("POST /salons/{id}/booking-links - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /salons/{id}/booking-links - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateLinkRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /salons/{id}/booking-links - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.SalonID = salonID

	link, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /salons/{id}/booking-links", err)
		return
	}

	h.logger.Info("POST /salons/{id}/booking-links - Link created successfully: salon_id=%d, link_id=%d", salonID, link.ID)
	handlers.RespondJSON(w, http.StatusCreated, link)
}

// HandleToggle PATCH /api/v1/salons/{salonId}/booking-links/{linkId}/toggle
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.PathInt64(r, "salonId")
	if err != nil {
		h.logger.Warn("PATCH /salons/{id}/booking-links/{linkId}/toggle - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	linkID, err := handlers.PathInt64(r, "linkId")
	if err != nil {
		h.logger.Warn("PATCH /salons/{id}/booking-links/{linkId}/toggle - Invalid link ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLinkID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /salons/{id}/booking-links/{linkId}/toggle - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	link, err := h.service.Toggle(r.Context(), salonID, linkID, userID)
	if err != nil {
		h.respondError(w, "PATCH /salons/{id}/booking-links/{linkId}/toggle", err)
		return
	}

	h.logger.Info("PATCH /salons/{id}/booking-links/{linkId}/toggle - Link toggled: link_id=%d, active=%t", linkID, link.IsActive)
	handlers.RespondJSON(w, http.StatusOK, link)
}

// HandleResolve GET /api/v1/booking-links/{token}
// Публичный endpoint - токен сам является доступом
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	token, err := handlers.PathToken(r)
	if err != nil {
		h.logger.Warn("GET /booking-links/{token} - Invalid token: %v", err)
		handlers.RespondBadRequest(w, msgInvalidToken)
		return
	}

	link, err := h.service.Resolve(r.Context(), token)
	if err != nil {
		h.respondError(w, "GET /booking-links/{token}", err)
		return
	}

	h.logger.Info("GET /booking-links/{token} - Link resolved: salon_id=%d", link.SalonID)
	handlers.RespondJSON(w, http.StatusOK, link)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, bookinglinks.ErrLinkNotFound):
		h.logger.Warn("%s - %v", route, err)
		handlers.RespondNotFound(w, msgLinkNotFound)

	case errors.Is(err, bookinglinks.ErrSalonNotFound):
		h.logger.Warn("%s - %v", route, err)
		handlers.RespondNotFound(w, msgSalonNotFound)

	case errors.Is(err, bookinglinks.ErrAccessDenied):
		h.logger.Warn("%s - %v", route, err)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, bookinglinks.ErrInvalidInput):
		h.logger.Warn("%s - %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidData)

	default:
		h.logger.Error("%s - %v", route, err)
		handlers.RespondInternalError(w)
	}
}
