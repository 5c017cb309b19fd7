package get_salon_appointments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
)

type stubService struct {
	got *models.ListSalonAppointmentsRequest
	err error
}

func (s *stubService) ListBySalon(_ context.Context, req *models.ListSalonAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{}}, nil
}

func list(h *Handler, query string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/salons/1/appointments?"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"salonId": "1"})
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_SingleDay(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, logger.Nop{})

	rec := list(h, "date=2026-03-02&employeeId=20&status=scheduled", 100)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"appointments":[]}`, rec.Body.String())

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, svc.got.StartDate)
	require.NotNil(t, svc.got.EndDate)
	assert.True(t, day.Equal(*svc.got.StartDate))
	assert.True(t, day.Equal(*svc.got.EndDate))
	assert.Equal(t, int64(20), *svc.got.EmployeeID)
	assert.Equal(t, "scheduled", *svc.got.Status)
	assert.Equal(t, int64(100), svc.got.UserID)
}

func TestHandle_Range(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, logger.Nop{})

	rec := list(h, "startDate=2026-03-02&endDate=2026-03-08", 100)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-03-02", svc.got.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2026-03-08", svc.got.EndDate.Format("2006-01-02"))
	assert.Nil(t, svc.got.EmployeeID)
	assert.Nil(t, svc.got.Status)
}

func TestHandle_Errors(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		userID     int64
		err        error
		wantStatus int
	}{
		{"no user", "", 0, nil, http.StatusUnauthorized},
		{"bad employee", "employeeId=x", 100, nil, http.StatusBadRequest},
		{"bad date", "date=2026/03/02", 100, nil, http.StatusBadRequest},
		{"not staff", "", 7, appointments.ErrAccessDenied, http.StatusForbidden},
		{"no salon", "", 100, appointments.ErrSalonNotFound, http.StatusNotFound},
		{"storage", "", 100, appointments.ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&stubService{err: tc.err}, logger.Nop{})

			rec := list(h, tc.query, tc.userID)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
