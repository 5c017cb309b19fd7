package pay_cancellation_fee

import (
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
)

const (
	msgInvalidFeeID  = "invalid cancellation fee ID"
	msgMissingUserID = "missing user ID"
)

type Handler struct {
	service FeeService
	logger  Logger
}

func NewHandler(service FeeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/cancellation-fees/{feeId}/pay
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	feeID, err := handlers.PathInt64(r, "feeId")
	if err != nil {
		h.logger.Warn("POST /cancellation-fees/{id}/pay - Invalid fee ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFeeID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /cancellation-fees/{id}/pay - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	fee, err := h.service.PayFee(r.Context(), feeID, userID)
	if err != nil {
		status, message, known := handlers.AppointmentErrorStatus(err)
		if !known {
			h.logger.Error("POST /cancellation-fees/{id}/pay - Failed to pay fee: fee_id=%d, error=%v", feeID, err)
		} else {
			h.logger.Warn("POST /cancellation-fees/{id}/pay - fee_id=%d, user_id=%d: %v", feeID, userID, err)
		}
		handlers.RespondError(w, status, message)
		return
	}

	h.logger.Info("POST /cancellation-fees/{id}/pay - Fee marked paid: fee_id=%d, amount=%s", feeID, fee.Amount.StringFixed(2))
	handlers.RespondJSON(w, http.StatusOK, fee)
}
