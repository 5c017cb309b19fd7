package pay_cancellation_fee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
)

type stubService struct {
	gotFeeID  int64
	gotUserID int64
	err       error
}

func (s *stubService) PayFee(_ context.Context, feeID, userID int64) (*models.FeeResponse, error) {
	s.gotFeeID, s.gotUserID = feeID, userID
	if s.err != nil {
		return nil, s.err
	}
	paidAt := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	return &models.FeeResponse{ID: feeID, Amount: decimal.RequireFromString("25.00"), IsPaid: true, PaidAt: &paidAt}, nil
}

func payFee(h *Handler, feeID string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cancellation-fees/"+feeID+"/pay", nil)
	req = mux.SetURLVars(req, map[string]string{"feeId": feeID})
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Paid(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, logger.Nop{})

	rec := payFee(h, "3", 100)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), svc.gotFeeID)
	assert.Equal(t, int64(100), svc.gotUserID)

	var resp models.FeeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.IsPaid)
	require.NotNil(t, resp.PaidAt)
}

func TestHandle_Errors(t *testing.T) {
	cases := []struct {
		name       string
		feeID      string
		userID     int64
		err        error
		wantStatus int
	}{
		{"bad id", "abc", 100, nil, http.StatusBadRequest},
		{"no user", "3", 0, nil, http.StatusUnauthorized},
		{"not owner", "3", 7, appointments.ErrAccessDenied, http.StatusForbidden},
		{"missing", "3", 100, appointments.ErrFeeNotFound, http.StatusNotFound},
		{"paid twice", "3", 100, appointments.ErrFeeAlreadyPaid, http.StatusConflict},
		{"storage", "3", 100, appointments.ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{err: tc.err}
			h := NewHandler(svc, logger.Nop{})

			rec := payFee(h, tc.feeID, tc.userID)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
