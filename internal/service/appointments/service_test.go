package appointments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

var brt = time.FixedZone("BRT", -3*3600)

// март 2026: 2-е число понедельник
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, brt)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeLedger struct {
	completions []domain.CompletionEvent
	fees        []domain.CancellationFee
}

func (l *fakeLedger) EmitCompletion(_ context.Context, event domain.CompletionEvent) error {
	l.completions = append(l.completions, event)
	return nil
}

func (l *fakeLedger) RecordCancellationFee(_ context.Context, fee domain.CancellationFee) error {
	l.fees = append(l.fees, fee)
	return nil
}

type fakeMetrics struct {
	actions []string
}

func (m *fakeMetrics) RecordLifecycleAction(action, result string) {
	m.actions = append(m.actions, action+":"+result)
}

const (
	ownerID  = int64(100)
	annaUser = int64(200)
	clientID = int64(500)
	apptID   = int64(1)
)

type env struct {
	store   *memory.Store
	ledger  *fakeLedger
	metrics *fakeMetrics
	svc     *Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	open, close := types.TimeString("09:00"), types.TimeString("18:00")
	store := memory.NewStore()
	store.AddSalon(domain.Salon{
		ID: 1, OwnerID: ownerID, Name: "Studio", Status: domain.SalonStatusActive,
		Weekdays: domain.DayHours{Open: &open, Close: &close},
		CancellationPolicy: domain.CancellationPolicy{
			Enabled: true, FeePercentage: decimal.NewFromInt(50), HoursThreshold: 24,
		},
	})
	store.AddService(domain.Service{ID: 10, SalonID: 1, Name: "Haircut", DurationMinutes: 60, Price: decimal.NewFromInt(100), IsActive: true})
	store.AddEmployee(domain.Employee{
		ID: 20, SalonID: 1, UserID: ptr.Ptr(annaUser), Name: "Anna", IsActive: true, ServiceIDs: []int64{10},
		PaymentType: domain.PaymentPercentage, CommissionPercentage: decimal.NewFromInt(40),
	})

	clock := fixedClock{now: at(2, 8, 0)}
	e := &env{store: store, ledger: &fakeLedger{}, metrics: &fakeMetrics{}}
	e.svc = NewService(
		store.Appointments(),
		store.Salons(),
		store.Fees(),
		store.Links(),
		validator.NewService(store.Appointments(), store.Salons(), clock, logger.Nop{}),
		e.ledger,
		memory.NewTxManager(store),
		e.metrics,
		brt,
		logger.Nop{},
	)
	e.svc.timeProvider = clock
	return e
}

func (e *env) book(id, client int64, day, hour int, status domain.AppointmentStatus) {
	e.store.AddAppointment(domain.Appointment{
		ID: id, ClientID: client, SalonID: 1, ServiceID: 10, EmployeeID: ptr.Ptr(int64(20)),
		Date: domain.DateOnly(at(day, 0, 0)), Time: types.TimeString(fmt.Sprintf("%02d:00", hour)),
		Status: status,
	})
}

func (e *env) appointment(t *testing.T, id int64) domain.Appointment {
	t.Helper()
	for _, a := range e.store.AllAppointments() {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("appointment %d not found", id)
	return domain.Appointment{}
}

func user(id int64) models.Actor {
	return models.Actor{UserID: id}
}

func TestCancel_ClientLateCancellationChargesFee(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 2, 14, domain.StatusConfirmed)

	resp, err := e.svc.Cancel(context.Background(), apptID, &models.CancelRequest{Actor: user(clientID)})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Appointment.Status)
	require.NotNil(t, resp.Fee)
	assert.Equal(t, "50.00", resp.Fee.Amount.StringFixed(2))
	assert.Equal(t, "6.00", resp.Fee.HoursBeforeAppointment.StringFixed(2))
	assert.False(t, resp.Fee.IsPaid)

	fees := e.store.AllFees()
	require.Len(t, fees, 1)
	assert.Equal(t, apptID, fees[0].AppointmentID)
	assert.Equal(t, clientID, fees[0].ClientID)
	require.Len(t, e.ledger.fees, 1)
	assert.Equal(t, []string{"cancel:ok"}, e.metrics.actions)
}

func TestCancel_NoFee(t *testing.T) {
	cases := []struct {
		name   string
		actor  int64
		day    int
		status domain.AppointmentStatus
	}{
		{"staff cancels", ownerID, 2, domain.StatusConfirmed},
		{"employee cancels", annaUser, 2, domain.StatusConfirmed},
		{"scheduled, not confirmed", clientID, 2, domain.StatusScheduled},
		{"outside the window", clientID, 4, domain.StatusConfirmed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.book(apptID, clientID, tc.day, 14, tc.status)

			resp, err := e.svc.Cancel(context.Background(), apptID, &models.CancelRequest{Actor: user(tc.actor)})
			require.NoError(t, err)

			assert.Equal(t, "cancelled", resp.Appointment.Status)
			assert.Nil(t, resp.Fee)
			assert.Empty(t, e.store.AllFees())
			assert.Empty(t, e.ledger.fees)
		})
	}
}

func TestCancel_Errors(t *testing.T) {
	cases := []struct {
		name    string
		actor   int64
		hour    int
		status  domain.AppointmentStatus
		wantErr error
	}{
		{"already started", clientID, 7, domain.StatusConfirmed, ErrAlreadyStarted},
		{"starts right now", clientID, 8, domain.StatusConfirmed, ErrAlreadyStarted},
		{"completed", clientID, 14, domain.StatusCompleted, ErrInvalidTransition},
		{"already cancelled", clientID, 14, domain.StatusCancelled, ErrInvalidTransition},
		{"stranger", 999, 14, domain.StatusConfirmed, ErrAccessDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.book(apptID, clientID, 2, tc.hour, tc.status)

			_, err := e.svc.Cancel(context.Background(), apptID, &models.CancelRequest{Actor: user(tc.actor)})
			require.ErrorIs(t, err, tc.wantErr)

			assert.Equal(t, tc.status, e.appointment(t, apptID).Status, "unchanged")
			assert.Empty(t, e.store.AllFees())
		})
	}
}

func TestCancel_NotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Cancel(context.Background(), 42, &models.CancelRequest{Actor: user(clientID)})
	require.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestReschedule_RoundTrip(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 3, 10, domain.StatusConfirmed)
	ctx := context.Background()

	proposed, err := e.svc.ProposeReschedule(ctx, apptID, &models.RescheduleRequest{
		Actor: user(annaUser), Date: "2026-03-03", Time: "11:00", Reason: ptr.Ptr("sick leave"),
	})
	require.NoError(t, err)
	require.Nil(t, proposed.Rejection)
	assert.Equal(t, "rescheduled", proposed.Appointment.Status)
	assert.Equal(t, "10:00", proposed.Appointment.Time, "canonical slot kept until the client answers")
	require.NotNil(t, proposed.Appointment.RescheduledTime)
	assert.Equal(t, "11:00", *proposed.Appointment.RescheduledTime)

	accepted, err := e.svc.RespondToReschedule(ctx, apptID, &models.RescheduleDecisionRequest{Actor: user(clientID), Accept: true})
	require.NoError(t, err)
	require.Nil(t, accepted.Rejection)

	a := e.appointment(t, apptID)
	assert.Equal(t, domain.StatusConfirmed, a.Status)
	assert.Equal(t, types.TimeString("11:00"), a.Time)
	assert.False(t, a.HasProposal())
	assert.Nil(t, a.RescheduleReason)
	assert.Equal(t, []string{"propose_reschedule:ok", "accept_reschedule:ok"}, e.metrics.actions)
}

func TestReschedule_ProposalIntoBusySlotRejected(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 3, 10, domain.StatusConfirmed)
	e.book(2, 600, 3, 11, domain.StatusScheduled)

	resp, err := e.svc.ProposeReschedule(context.Background(), apptID, &models.RescheduleRequest{
		Actor: user(ownerID), Date: "2026-03-03", Time: "11:00",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, string(domain.RejectEmployeeBusy), resp.Rejection.Code)
	assert.Equal(t, domain.StatusConfirmed, e.appointment(t, apptID).Status)
	assert.Equal(t, []string{"propose_reschedule:rejected"}, e.metrics.actions)
}

func TestReschedule_ProposalOverlappingItselfAllowed(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 3, 10, domain.StatusConfirmed)

	resp, err := e.svc.ProposeReschedule(context.Background(), apptID, &models.RescheduleRequest{
		Actor: user(ownerID), Date: "2026-03-03", Time: "10:30",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Rejection)
}

func TestReschedule_AcceptRevalidatesSlot(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 3, 10, domain.StatusConfirmed)
	ctx := context.Background()

	_, err := e.svc.ProposeReschedule(ctx, apptID, &models.RescheduleRequest{
		Actor: user(ownerID), Date: "2026-03-03", Time: "11:00",
	})
	require.NoError(t, err)

	// пока клиент думает, слот занимает другой клиент
	e.book(2, 600, 3, 11, domain.StatusScheduled)

	resp, err := e.svc.RespondToReschedule(ctx, apptID, &models.RescheduleDecisionRequest{Actor: user(clientID), Accept: true})
	require.NoError(t, err)
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, string(domain.RejectEmployeeBusy), resp.Rejection.Code)

	a := e.appointment(t, apptID)
	assert.Equal(t, domain.StatusRescheduled, a.Status)
	assert.True(t, a.HasProposal())
}

func TestReschedule_RejectCancelsWithoutFee(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 2, 14, domain.StatusConfirmed)
	ctx := context.Background()

	_, err := e.svc.ProposeReschedule(ctx, apptID, &models.RescheduleRequest{
		Actor: user(ownerID), Date: "2026-03-02", Time: "15:00",
	})
	require.NoError(t, err)

	resp, err := e.svc.RespondToReschedule(ctx, apptID, &models.RescheduleDecisionRequest{Actor: user(clientID)})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Appointment.Status)
	assert.Nil(t, resp.Appointment.RescheduledDate)
	assert.Empty(t, e.store.AllFees())
}

func TestReschedule_AccessAndState(t *testing.T) {
	ctx := context.Background()

	t.Run("client cannot propose", func(t *testing.T) {
		e := newEnv(t)
		e.book(apptID, clientID, 3, 10, domain.StatusConfirmed)
		_, err := e.svc.ProposeReschedule(ctx, apptID, &models.RescheduleRequest{Actor: user(clientID), Date: "2026-03-03", Time: "11:00"})
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("staff cannot answer", func(t *testing.T) {
		e := newEnv(t)
		e.book(apptID, clientID, 3, 10, domain.StatusRescheduled)
		_, err := e.svc.RespondToReschedule(ctx, apptID, &models.RescheduleDecisionRequest{Actor: user(ownerID), Accept: true})
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("propose on completed", func(t *testing.T) {
		e := newEnv(t)
		e.book(apptID, clientID, 3, 10, domain.StatusCompleted)
		_, err := e.svc.ProposeReschedule(ctx, apptID, &models.RescheduleRequest{Actor: user(ownerID), Date: "2026-03-03", Time: "11:00"})
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("accept without proposal", func(t *testing.T) {
		e := newEnv(t)
		e.book(apptID, clientID, 3, 10, domain.StatusConfirmed)
		_, err := e.svc.RespondToReschedule(ctx, apptID, &models.RescheduleDecisionRequest{Actor: user(clientID), Accept: true})
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("malformed time", func(t *testing.T) {
		e := newEnv(t)
		e.book(apptID, clientID, 3, 10, domain.StatusConfirmed)
		_, err := e.svc.ProposeReschedule(ctx, apptID, &models.RescheduleRequest{Actor: user(ownerID), Date: "2026-03-03", Time: "11h"})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUpdateStatus_CompleteEmitsLedgerEvent(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 2, 10, domain.StatusConfirmed)

	resp, err := e.svc.UpdateStatus(context.Background(), apptID, &models.UpdateStatusRequest{Actor: user(annaUser), Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)

	require.Len(t, e.ledger.completions, 1)
	event := e.ledger.completions[0]
	assert.Equal(t, apptID, event.AppointmentID)
	assert.True(t, decimal.NewFromInt(100).Equal(event.ServicePrice))
	require.NotNil(t, event.CommissionAmount)
	assert.Equal(t, "40.00", event.CommissionAmount.StringFixed(2))
	assert.Equal(t, 3, event.ReferenceMonth)
	assert.Equal(t, domain.PriceSourceLive, event.PriceSource)
}

func TestUpdateStatus_Errors(t *testing.T) {
	cases := []struct {
		name    string
		actor   int64
		from    domain.AppointmentStatus
		status  string
		wantErr error
	}{
		{"confirm twice", ownerID, domain.StatusConfirmed, "confirmed", ErrInvalidTransition},
		{"complete cancelled", ownerID, domain.StatusCancelled, "completed", ErrInvalidTransition},
		{"cancel through status", ownerID, domain.StatusConfirmed, "cancelled", ErrInvalidInput},
		{"unknown status", ownerID, domain.StatusConfirmed, "done", ErrInvalidInput},
		{"client cannot confirm", clientID, domain.StatusScheduled, "confirmed", ErrAccessDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.book(apptID, clientID, 2, 10, tc.from)

			_, err := e.svc.UpdateStatus(context.Background(), apptID, &models.UpdateStatusRequest{Actor: user(tc.actor), Status: tc.status})
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.from, e.appointment(t, apptID).Status)
			assert.Empty(t, e.ledger.completions)
		})
	}
}

func TestPayFee(t *testing.T) {
	ctx := context.Background()
	seed := func(e *env) {
		e.store.AddFee(domain.CancellationFee{ID: 7, AppointmentID: apptID, SalonID: 1, ClientID: clientID, Amount: decimal.NewFromInt(50)})
	}

	t.Run("owner pays once", func(t *testing.T) {
		e := newEnv(t)
		seed(e)

		resp, err := e.svc.PayFee(ctx, 7, ownerID)
		require.NoError(t, err)
		assert.True(t, resp.IsPaid)
		require.NotNil(t, resp.PaidAt)
		require.Len(t, e.ledger.fees, 1)
		assert.True(t, e.ledger.fees[0].IsPaid)

		_, err = e.svc.PayFee(ctx, 7, ownerID)
		require.ErrorIs(t, err, ErrFeeAlreadyPaid)
		assert.Len(t, e.ledger.fees, 1)
	})

	t.Run("employee is not owner", func(t *testing.T) {
		e := newEnv(t)
		seed(e)
		_, err := e.svc.PayFee(ctx, 7, annaUser)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown fee", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.svc.PayFee(ctx, 7, ownerID)
		require.ErrorIs(t, err, ErrFeeNotFound)
	})
}

func TestGetByID_LinkActor(t *testing.T) {
	token := uuid.New()
	cases := []struct {
		name    string
		link    domain.BookingLink
		wantErr error
	}{
		{"bound to the client", domain.BookingLink{ID: 3, Token: token, SalonID: 1, ClientID: ptr.Ptr(clientID), IsActive: true}, nil},
		{"inactive", domain.BookingLink{ID: 3, Token: token, SalonID: 1, ClientID: ptr.Ptr(clientID)}, ErrLinkInactive},
		{"bound to another client", domain.BookingLink{ID: 3, Token: token, SalonID: 1, ClientID: ptr.Ptr(int64(600)), IsActive: true}, ErrAccessDenied},
		{"not bound yet", domain.BookingLink{ID: 3, Token: token, SalonID: 1, IsActive: true}, ErrAccessDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.book(apptID, clientID, 3, 10, domain.StatusScheduled)
			e.store.AddLink(tc.link)

			resp, err := e.svc.GetByID(context.Background(), apptID, models.Actor{LinkToken: &token})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, apptID, resp.ID)
		})
	}

	t.Run("unknown token", func(t *testing.T) {
		e := newEnv(t)
		e.book(apptID, clientID, 3, 10, domain.StatusScheduled)
		other := uuid.New()
		_, err := e.svc.GetByID(context.Background(), apptID, models.Actor{LinkToken: &other})
		require.ErrorIs(t, err, ErrLinkNotFound)
	})
}

func TestListBySalon(t *testing.T) {
	e := newEnv(t)
	e.book(apptID, clientID, 3, 10, domain.StatusScheduled)
	e.book(2, 600, 3, 12, domain.StatusCancelled)
	ctx := context.Background()

	resp, err := e.svc.ListBySalon(ctx, &models.ListSalonAppointmentsRequest{UserID: ownerID, SalonID: 1, Status: ptr.Ptr("scheduled")})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, apptID, resp.Appointments[0].ID)

	_, err = e.svc.ListBySalon(ctx, &models.ListSalonAppointmentsRequest{UserID: clientID, SalonID: 1})
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = e.svc.ListBySalon(ctx, &models.ListSalonAppointmentsRequest{UserID: ownerID, SalonID: 1, Status: ptr.Ptr("bogus")})
	require.ErrorIs(t, err, ErrInvalidInput)
}
