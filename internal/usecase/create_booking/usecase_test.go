package create_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	linkRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/bookinglink"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonBooking/internal/integrations/identity"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

var brt = time.FixedZone("BRT", -3*3600)

// март 2026: 2-е число понедельник
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, brt)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeIdentity struct {
	clientID int64
	err      error
	calls    []identity.ContactInfo
}

func (f *fakeIdentity) ResolveClient(_ context.Context, contact identity.ContactInfo) (int64, error) {
	f.calls = append(f.calls, contact)
	return f.clientID, f.err
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *fakeMetrics) RecordBookingOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

type env struct {
	store    *memory.Store
	identity *fakeIdentity
	metrics  *fakeMetrics
	uc       *UseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	open, close := types.TimeString("09:00"), types.TimeString("18:00")
	store := memory.NewStore()
	store.AddSalon(domain.Salon{ID: 1, OwnerID: 100, Name: "Studio", Status: domain.SalonStatusActive,
		Weekdays: domain.DayHours{Open: &open, Close: &close}})
	store.AddService(domain.Service{ID: 10, SalonID: 1, Name: "Haircut", DurationMinutes: 60, Price: decimal.NewFromInt(100), IsActive: true})
	store.AddEmployee(domain.Employee{ID: 20, SalonID: 1, Name: "Anna", IsActive: true, ServiceIDs: []int64{10}})

	clock := fixedClock{now: at(2, 8, 0)}
	e := &env{store: store, identity: &fakeIdentity{clientID: 777}, metrics: &fakeMetrics{}}
	e.uc = e.build(validator.NewService(store.Appointments(), store.Salons(), clock, logger.Nop{}), store.Links())
	return e
}

func (e *env) build(v Validator, links LinkRepository) *UseCase {
	uc := NewUseCase(
		e.store.Salons(),
		e.store.Appointments(),
		e.store.Fees(),
		links,
		e.identity,
		v,
		memory.NewTxManager(e.store),
		e.metrics,
		brt,
		logger.Nop{},
	)
	uc.timeProvider = fixedClock{now: at(2, 8, 0)}
	return uc
}

func request(clientID int64, hhmm string) *Request {
	return &Request{ClientID: clientID, SalonID: 1, ServiceID: 10, Date: "2026-03-02", Time: hhmm}
}

func TestExecute_Creates(t *testing.T) {
	e := newEnv(t)

	resp, err := e.uc.Execute(context.Background(), request(500, "10:00"))
	require.NoError(t, err)
	require.True(t, resp.Created())

	a := resp.Appointment
	assert.NotZero(t, a.ID)
	assert.Equal(t, domain.StatusScheduled, a.Status)
	assert.Equal(t, int64(500), a.ClientID)
	require.NotNil(t, a.EmployeeID)
	assert.Equal(t, int64(20), *a.EmployeeID, "auto-assigned")
	assert.Equal(t, types.TimeString("10:00"), a.Time)
	assert.Equal(t, []string{"created"}, e.metrics.outcomes)
}

func TestExecute_MalformedRequest(t *testing.T) {
	cases := []struct {
		name string
		req  *Request
	}{
		{"bad date", &Request{ClientID: 500, SalonID: 1, ServiceID: 10, Date: "02/03/2026", Time: "10:00"}},
		{"bad time", &Request{ClientID: 500, SalonID: 1, ServiceID: 10, Date: "2026-03-02", Time: "25:00"}},
		{"missing time", &Request{ClientID: 500, SalonID: 1, ServiceID: 10, Date: "2026-03-02"}},
		{"missing client", &Request{SalonID: 1, ServiceID: 10, Date: "2026-03-02", Time: "10:00"}},
		{"missing service", &Request{ClientID: 500, SalonID: 1, Date: "2026-03-02", Time: "10:00"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)

			_, err := e.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, e.store.AllAppointments())
		})
	}
}

func TestExecute_RejectionReasonIsVerbatim(t *testing.T) {
	e := newEnv(t)

	resp, err := e.uc.Execute(context.Background(), request(500, "17:30"))
	require.NoError(t, err)

	require.NotNil(t, resp.Rejection)
	assert.Equal(t, domain.RejectSalonClosed, resp.Rejection.Code)
	assert.Equal(t, "appointment goes past closing time (18:00)", resp.Rejection.Reason)
	assert.Empty(t, e.store.AllAppointments())
	assert.Equal(t, []string{"rejected:salon_closed"}, e.metrics.outcomes)
}

func TestExecute_LastFittingSlot(t *testing.T) {
	e := newEnv(t)

	resp, err := e.uc.Execute(context.Background(), request(500, "17:00"))
	require.NoError(t, err)
	assert.True(t, resp.Created())
}

func TestExecute_UnpaidFeesBlockBooking(t *testing.T) {
	e := newEnv(t)
	e.store.AddFee(domain.CancellationFee{ID: 1, AppointmentID: 99, SalonID: 1, ClientID: 500, Amount: decimal.NewFromInt(30)})

	resp, err := e.uc.Execute(context.Background(), request(500, "10:00"))
	require.NoError(t, err)

	require.NotNil(t, resp.Rejection)
	assert.Equal(t, domain.RejectUnpaidFees, resp.Rejection.Code)
	assert.Equal(t, "client has unpaid cancellation fees: 30.00", resp.Rejection.Reason)
}

func TestExecute_ReopensExpiredClosure(t *testing.T) {
	e := newEnv(t)
	salon, err := e.store.Salons().GetByID(context.Background(), 1)
	require.NoError(t, err)
	salon.IsTemporarilyClosed = true
	salon.ClosedUntil = ptr.Ptr(at(1, 12, 0))
	salon.ClosureNote = ptr.Ptr("vacation")
	e.store.AddSalon(*salon)

	resp, err := e.uc.Execute(context.Background(), request(500, "10:00"))
	require.NoError(t, err)
	assert.True(t, resp.Created())

	salon, err = e.store.Salons().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, salon.IsTemporarilyClosed)
	assert.Nil(t, salon.ClosureNote)
}

func TestExecute_ConcurrentRequestsForLastEmployee(t *testing.T) {
	e := newEnv(t)

	const requests = 8
	var (
		wg        sync.WaitGroup
		responses = make([]*Response, requests)
		errs      = make([]error, requests)
	)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = e.uc.Execute(context.Background(), request(int64(500+i), "10:00"))
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < requests; i++ {
		require.NoError(t, errs[i])
		if responses[i].Created() {
			created++
			continue
		}
		assert.Contains(t,
			[]domain.RejectionCode{domain.RejectNoEmployee, domain.RejectEmployeeBusy, domain.RejectSlotTaken},
			responses[i].Rejection.Code)
	}

	assert.Equal(t, 1, created, "exactly one booking wins the slot")
	assert.Len(t, e.store.AllAppointments(), 1)
}

// permissiveValidator пропускает все проверки, чтобы сработал уникальный индекс
type permissiveValidator struct{}

func (permissiveValidator) Validate(_ context.Context, _ validator.Request) (validator.Result, error) {
	return validator.Result{OK: true, Employee: &domain.Employee{ID: 20}}, nil
}

func TestExecute_UniqueIndexBackstop(t *testing.T) {
	e := newEnv(t)
	e.uc = e.build(permissiveValidator{}, e.store.Links())

	first, err := e.uc.Execute(context.Background(), request(500, "10:00"))
	require.NoError(t, err)
	require.True(t, first.Created())

	second, err := e.uc.Execute(context.Background(), request(501, "10:00"))
	require.NoError(t, err)

	require.NotNil(t, second.Rejection)
	assert.Equal(t, domain.RejectSlotTaken, second.Rejection.Code)
	assert.Equal(t, domain.MsgSlotTaken, second.Rejection.Reason)
	assert.Len(t, e.store.AllAppointments(), 1)
}

func TestExecute_FirstBookingThroughLink(t *testing.T) {
	e := newEnv(t)
	token := uuid.New()
	e.store.AddLink(domain.BookingLink{ID: 5, Token: token, SalonID: 1, TempName: ptr.Ptr("Maria"), TempPhone: ptr.Ptr("+5511999"), IsActive: true})

	req := &Request{LinkToken: &token, ServiceID: 10, Date: "2026-03-02", Time: "11:00",
		Contact: Contact{Email: ptr.Ptr("maria@example.com")}}

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.True(t, resp.Created())

	assert.Equal(t, int64(777), resp.Appointment.ClientID)
	require.NotNil(t, resp.Appointment.BookingLinkID)
	assert.Equal(t, int64(5), *resp.Appointment.BookingLinkID)

	require.Len(t, e.identity.calls, 1)
	assert.Equal(t, "Maria", e.identity.calls[0].Name)
	assert.Equal(t, "+5511999", *e.identity.calls[0].Phone)
	assert.Equal(t, "maria@example.com", *e.identity.calls[0].Email)

	link, err := e.store.Links().GetByToken(context.Background(), nil, token)
	require.NoError(t, err)
	require.NotNil(t, link.ClientID)
	assert.Equal(t, int64(777), *link.ClientID)
}

func TestExecute_BoundLinkSkipsIdentity(t *testing.T) {
	e := newEnv(t)
	token := uuid.New()
	e.store.AddLink(domain.BookingLink{ID: 5, Token: token, SalonID: 1, ClientID: ptr.Ptr(int64(600)), IsActive: true})

	resp, err := e.uc.Execute(context.Background(), &Request{LinkToken: &token, ServiceID: 10, Date: "2026-03-02", Time: "11:00"})
	require.NoError(t, err)
	require.True(t, resp.Created())

	assert.Equal(t, int64(600), resp.Appointment.ClientID)
	assert.Empty(t, e.identity.calls)
}

func TestExecute_LinkErrors(t *testing.T) {
	token := uuid.New()

	t.Run("unknown token", func(t *testing.T) {
		e := newEnv(t)
		other := uuid.New()
		_, err := e.uc.Execute(context.Background(), &Request{LinkToken: &other, ServiceID: 10, Date: "2026-03-02", Time: "11:00"})
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})

	t.Run("inactive link", func(t *testing.T) {
		e := newEnv(t)
		e.store.AddLink(domain.BookingLink{ID: 5, Token: token, SalonID: 1, IsActive: false})
		_, err := e.uc.Execute(context.Background(), &Request{LinkToken: &token, ServiceID: 10, Date: "2026-03-02", Time: "11:00"})
		assert.ErrorIs(t, err, ErrLinkInactive)
	})

	t.Run("identity rejects contact", func(t *testing.T) {
		e := newEnv(t)
		e.identity.err = identity.ErrInvalidContact
		e.store.AddLink(domain.BookingLink{ID: 5, Token: token, SalonID: 1, TempName: ptr.Ptr("Maria"), IsActive: true})
		_, err := e.uc.Execute(context.Background(), &Request{LinkToken: &token, ServiceID: 10, Date: "2026-03-02", Time: "11:00"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing name", func(t *testing.T) {
		e := newEnv(t)
		e.store.AddLink(domain.BookingLink{ID: 5, Token: token, SalonID: 1, IsActive: true})
		_, err := e.uc.Execute(context.Background(), &Request{LinkToken: &token, ServiceID: 10, Date: "2026-03-02", Time: "11:00"})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, e.identity.calls)
	})
}

// racingLinks имитирует привязку ссылки другим клиентом между чтением и записью
type racingLinks struct {
	*memory.Links
}

func (racingLinks) BindClient(context.Context, *txmanager.Scope, int64, int64) error {
	return linkRepo.ErrAlreadyBound
}

func TestExecute_FailedLinkBindRollsBackAppointment(t *testing.T) {
	e := newEnv(t)
	token := uuid.New()
	e.store.AddLink(domain.BookingLink{ID: 5, Token: token, SalonID: 1, TempName: ptr.Ptr("Maria"), IsActive: true})
	e.uc = e.build(validator.NewService(e.store.Appointments(), e.store.Salons(), fixedClock{now: at(2, 8, 0)}, logger.Nop{}),
		racingLinks{Links: e.store.Links()})

	_, err := e.uc.Execute(context.Background(), &Request{LinkToken: &token, ServiceID: 10, Date: "2026-03-02", Time: "11:00"})

	assert.ErrorIs(t, err, ErrLinkBound)
	assert.Empty(t, e.store.AllAppointments(), "nothing is persisted when the transaction fails")
}

func TestExecute_NotFound(t *testing.T) {
	cases := []struct {
		name        string
		req         *Request
		expectedErr error
	}{
		{"salon", &Request{ClientID: 500, SalonID: 2, ServiceID: 10, Date: "2026-03-02", Time: "10:00"}, ErrSalonNotFound},
		{"service", &Request{ClientID: 500, SalonID: 1, ServiceID: 11, Date: "2026-03-02", Time: "10:00"}, ErrServiceNotFound},
		{"employee", &Request{ClientID: 500, SalonID: 1, ServiceID: 10, EmployeeID: ptr.Ptr(int64(99)), Date: "2026-03-02", Time: "10:00"}, ErrEmployeeNotFound},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
