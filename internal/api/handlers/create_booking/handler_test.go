package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

type stubUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

func postBooking(h *Handler, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &createBooking.Response{Appointment: &domain.Appointment{
		ID: 7, ClientID: 500, SalonID: 1, ServiceID: 10, Date: date, Time: types.TimeString("10:00"),
		ServiceDuration: 60, Status: domain.StatusScheduled,
	}}}
	h := NewHandler(uc, logger.Nop{})

	rec := postBooking(h, `{"salonId":1,"serviceId":10,"date":"2026-03-02","time":"10:00"}`, 500)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(500), uc.got.ClientID)
	assert.Equal(t, "10:00", uc.got.Time)

	var resp AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "2026-03-02", resp.Date)
	assert.Equal(t, "scheduled", resp.Status)
}

func TestHandle_Rejected(t *testing.T) {
	uc := &stubUseCase{resp: &createBooking.Response{Rejection: &createBooking.Rejection{
		Code: domain.RejectEmployeeBusy, Reason: "Anna is busy at 10:00",
	}}}
	h := NewHandler(uc, logger.Nop{})

	rec := postBooking(h, `{"salonId":1,"serviceId":10,"date":"2026-03-02","time":"10:00"}`, 500)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(domain.RejectEmployeeBusy), resp.Code)
	assert.Equal(t, "Anna is busy at 10:00", resp.Message)
}

func TestHandle_Errors(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		userID     int64
		err        error
		wantStatus int
	}{
		{"missing user", `{}`, 0, nil, http.StatusUnauthorized},
		{"unknown field", `{"salonId":1,"price":5}`, 500, nil, http.StatusBadRequest},
		{"invalid input", `{"salonId":1}`, 500, createBooking.ErrInvalidInput, http.StatusBadRequest},
		{"salon not found", `{"salonId":1}`, 500, createBooking.ErrSalonNotFound, http.StatusNotFound},
		{"internal", `{"salonId":1}`, 500, createBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&stubUseCase{err: tc.err}, logger.Nop{})
			rec := postBooking(h, tc.body, tc.userID)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestHandleLink_PassesToken(t *testing.T) {
	token := uuid.New()
	uc := &stubUseCase{err: createBooking.ErrLinkBound}
	h := NewHandler(uc, logger.Nop{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/booking-links/"+token.String()+"/bookings",
		strings.NewReader(`{"serviceId":10,"date":"2026-03-02","time":"10:00","name":"Maria"}`))
	req = mux.SetURLVars(req, map[string]string{"token": token.String()})
	rec := httptest.NewRecorder()
	h.HandleLink(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, uc.got.LinkToken)
	assert.Equal(t, token, *uc.got.LinkToken)
	assert.Equal(t, "Maria", *uc.got.Contact.Name)
}

func TestHandleLink_InvalidToken(t *testing.T) {
	h := NewHandler(&stubUseCase{}, logger.Nop{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/booking-links/nope/bookings", strings.NewReader(`{}`))
	req = mux.SetURLVars(req, map[string]string{"token": "nope"})
	rec := httptest.NewRecorder()
	h.HandleLink(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
