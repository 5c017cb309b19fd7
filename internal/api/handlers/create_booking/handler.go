package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgMissingUserID      = "missing user ID"
	msgInvalidToken       = "invalid booking link token"
	msgSalonNotFound      = "salon not found"
	msgServiceNotFound    = "service not found"
	msgEmployeeNotFound   = "employee not found"
	msgLinkNotFound       = "booking link not found"
	msgLinkInactive       = "booking link is inactive"
	msgLinkBound          = "booking link belongs to another client"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	h.execute(w, r, "POST /bookings", req.ToUseCaseRequest(userID))
}

// HandleLink POST /api/v1/booking-links/{token}/bookings
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	token, err := handlers.PathToken(r)
	if err != nil {
		h.logger.Warn("POST /booking-links/{token}/bookings - Invalid token: %v", err)
		handlers.RespondBadRequest(w, msgInvalidToken)
		return
	}

	var req LinkBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking-links/{token}/bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	h.execute(w, r, "POST /booking-links/{token}/bookings", req.ToUseCaseRequest(token))
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, route string, req *createBooking.Request) {
	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", route, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, createBooking.ErrSalonNotFound):
			h.logger.Warn("%s - Salon not found: salon_id=%d", route, req.SalonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("%s - Service not found: service_id=%d", route, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrEmployeeNotFound):
			h.logger.Warn("%s - Employee not found: employee_id=%v", route, req.EmployeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, createBooking.ErrLinkNotFound):
			h.logger.Warn("%s - Booking link not found", route)
			handlers.RespondNotFound(w, msgLinkNotFound)

		case errors.Is(err, createBooking.ErrLinkInactive):
			h.logger.Warn("%s - Booking link inactive", route)
			handlers.RespondForbidden(w, msgLinkInactive)

		case errors.Is(err, createBooking.ErrLinkBound):
			h.logger.Warn("%s - Booking link bound to another client", route)
			handlers.RespondConflict(w, msgLinkBound)

		default:
			h.logger.Error("%s - Failed to create booking: salon_id=%d, service_id=%d, error=%v",
				route, req.SalonID, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if !result.Created() {
		h.logger.Warn("%s - Booking rejected: code=%s, reason=%s", route, result.Rejection.Code, result.Rejection.Reason)
		handlers.RespondRejection(w, string(result.Rejection.Code), result.Rejection.Reason)
		return
	}

	h.logger.Info("%s - Booking created successfully: appointment_id=%d, client_id=%d, salon_id=%d",
		route, result.Appointment.ID, result.Appointment.ClientID, result.Appointment.SalonID)
	handlers.RespondJSON(w, http.StatusCreated, FromDomainAppointment(result.Appointment))
}
