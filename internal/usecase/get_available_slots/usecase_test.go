package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

var brt = time.FixedZone("BRT", -3*3600)

// март 2026: 2-е число понедельник
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, brt)
}

func dateOf(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newUseCase(t *testing.T, now time.Time) (*UseCase, *memory.Store) {
	t.Helper()

	open, close := types.TimeString("09:00"), types.TimeString("18:00")
	store := memory.NewStore()
	store.AddSalon(domain.Salon{ID: 1, Name: "Studio", Status: domain.SalonStatusActive,
		Weekdays: domain.DayHours{Open: &open, Close: &close}})
	store.AddService(domain.Service{ID: 10, SalonID: 1, DurationMinutes: 60, Price: decimal.NewFromInt(100), IsActive: true})
	store.AddService(domain.Service{ID: 11, SalonID: 1, DurationMinutes: 30, IsActive: false})
	store.AddEmployee(domain.Employee{ID: 20, SalonID: 1, Name: "Anna", IsActive: true, ServiceIDs: []int64{10}})

	uc := NewUseCase(store.Salons(), store.Appointments(), Settings{DefaultLocation: brt, SlotStepMinutes: 30}, logger.Nop{})
	uc.timeProvider = fixedClock{now: now}
	return uc, store
}

func book(store *memory.Store, id, employeeID int64, start time.Time) {
	store.AddAppointment(domain.Appointment{
		ID: id, ClientID: 500, SalonID: 1, ServiceID: 10, EmployeeID: &employeeID,
		Date: domain.DateOnly(start), Time: types.NewTimeString(start), Status: domain.StatusScheduled,
	})
}

func slotStrings(slots []types.TimeString) []string {
	result := make([]string, len(slots))
	for i, s := range slots {
		result[i] = s.String()
	}
	return result
}

func TestExecute_FullDay(t *testing.T) {
	uc, _ := newUseCase(t, at(1, 20, 0))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)})
	require.NoError(t, err)

	slots := slotStrings(resp.Slots)
	require.Len(t, slots, 17)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "17:00", slots[len(slots)-1], "last slot ends exactly at closing")
	assert.NotContains(t, slots, "17:30", "slot overhanging closing time")
}

func TestExecute_Idempotent(t *testing.T) {
	uc, store := newUseCase(t, at(1, 20, 0))
	book(store, 1, 20, at(2, 11, 0))

	req := &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)}
	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}

func TestExecute_DropsPastSlots(t *testing.T) {
	uc, _ := newUseCase(t, at(2, 10, 15))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)})
	require.NoError(t, err)

	slots := slotStrings(resp.Slots)
	require.NotEmpty(t, slots)
	assert.Equal(t, "10:30", slots[0])
}

func TestExecute_SlotAtNowIsDropped(t *testing.T) {
	uc, _ := newUseCase(t, at(2, 10, 0))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)})
	require.NoError(t, err)

	assert.Equal(t, "10:30", slotStrings(resp.Slots)[0])
}

func TestExecute_ClosedWeekday(t *testing.T) {
	uc, _ := newUseCase(t, at(1, 20, 0))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(7)})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
}

func TestExecute_BusyEmployeeRemovesOverlappingSlots(t *testing.T) {
	uc, store := newUseCase(t, at(1, 20, 0))
	book(store, 1, 20, at(2, 10, 0))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)})
	require.NoError(t, err)

	slots := slotStrings(resp.Slots)
	assert.Contains(t, slots, "09:00", "ends exactly when the booking starts")
	assert.NotContains(t, slots, "09:30")
	assert.NotContains(t, slots, "10:00")
	assert.NotContains(t, slots, "10:30")
	assert.Contains(t, slots, "11:00", "starts exactly when the booking ends")
}

func TestExecute_AnyFreeEmployeeKeepsSlot(t *testing.T) {
	uc, store := newUseCase(t, at(1, 20, 0))
	store.AddEmployee(domain.Employee{ID: 21, SalonID: 1, Name: "Bruno", IsActive: true, ServiceIDs: []int64{10}})
	book(store, 1, 20, at(2, 10, 0))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)})
	require.NoError(t, err)
	assert.Contains(t, slotStrings(resp.Slots), "10:00")

	resp, err = uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, EmployeeID: ptr.Ptr(int64(20)), Date: dateOf(2)})
	require.NoError(t, err)
	assert.NotContains(t, slotStrings(resp.Slots), "10:00", "selected employee is busy")
}

func TestExecute_UnqualifiedEmployeeHasNoSlots(t *testing.T) {
	uc, store := newUseCase(t, at(1, 20, 0))
	store.AddEmployee(domain.Employee{ID: 22, SalonID: 1, Name: "Carla", IsActive: true, ServiceIDs: []int64{99}})

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, EmployeeID: ptr.Ptr(int64(22)), Date: dateOf(2)})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
}

func TestExecute_TemporaryClosureCoversPartOfDay(t *testing.T) {
	uc, store := newUseCase(t, at(1, 20, 0))
	salon, err := store.Salons().GetByID(context.Background(), 1)
	require.NoError(t, err)
	salon.IsTemporarilyClosed = true
	salon.ClosedUntil = ptr.Ptr(at(2, 12, 0))
	store.AddSalon(*salon)

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)})
	require.NoError(t, err)

	slots := slotStrings(resp.Slots)
	require.NotEmpty(t, slots)
	assert.Equal(t, "12:00", slots[0])
}

func TestExecute_IndefiniteClosure(t *testing.T) {
	uc, store := newUseCase(t, at(1, 20, 0))
	salon, err := store.Salons().GetByID(context.Background(), 1)
	require.NoError(t, err)
	salon.IsTemporarilyClosed = true
	store.AddSalon(*salon)

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 10, Date: dateOf(2)})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
}

func TestExecute_InactiveService(t *testing.T) {
	uc, _ := newUseCase(t, at(1, 20, 0))

	resp, err := uc.Execute(context.Background(), &Request{SalonID: 1, ServiceID: 11, Date: dateOf(2)})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.NotNil(t, resp.Slots)
}

func TestExecute_Errors(t *testing.T) {
	cases := []struct {
		name        string
		req         *Request
		expectedErr error
	}{
		{"invalid salon", &Request{SalonID: 0, ServiceID: 10, Date: dateOf(2)}, ErrInvalidInput},
		{"missing date", &Request{SalonID: 1, ServiceID: 10}, ErrInvalidInput},
		{"invalid employee", &Request{SalonID: 1, ServiceID: 10, EmployeeID: ptr.Ptr(int64(-1)), Date: dateOf(2)}, ErrInvalidInput},
		{"salon not found", &Request{SalonID: 2, ServiceID: 10, Date: dateOf(2)}, ErrSalonNotFound},
		{"service not found", &Request{SalonID: 1, ServiceID: 12, Date: dateOf(2)}, ErrServiceNotFound},
		{"employee not found", &Request{SalonID: 1, ServiceID: 10, EmployeeID: ptr.Ptr(int64(99)), Date: dateOf(2)}, ErrEmployeeNotFound},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newUseCase(t, at(1, 20, 0))

			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
