package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// Appointments in-memory аналог appointment.Repository.
// Уникальность активных слотов проверяется так же, как частичными индексами в PostgreSQL.
type Appointments struct {
	store *Store
}

func (s *Store) Appointments() *Appointments {
	return &Appointments{store: s}
}

func (r *Appointments) Create(_ context.Context, _ *txmanager.Scope, a *domain.Appointment) (*domain.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.violatesUnique(a) {
		return nil, appointmentRepo.ErrSlotTaken
	}

	a.ID = r.store.id()
	a.Date = domain.DateOnly(a.Date)
	if service, ok := r.store.services[a.ServiceID]; ok {
		a.ServiceDuration = service.DurationMinutes
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	cp := *a
	r.store.appointments[a.ID] = &cp
	return a, nil
}

func (r *Appointments) GetByID(_ context.Context, _ *txmanager.Scope, id int64) (*domain.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return r.withDuration(a), nil
}

func (r *Appointments) ListActiveByEmployee(_ context.Context, _ *txmanager.Scope, employeeID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.filter(func(a *domain.Appointment) bool {
		return a.IsActive() && a.EmployeeID != nil && *a.EmployeeID == employeeID && sameDate(a.Date, date)
	}), nil
}

func (r *Appointments) ListActiveByClient(_ context.Context, _ *txmanager.Scope, clientID, salonID int64, date time.Time, excludeID *int64) ([]*domain.Appointment, error) {
	return r.filter(func(a *domain.Appointment) bool {
		if excludeID != nil && a.ID == *excludeID {
			return false
		}
		return a.IsActive() && a.ClientID == clientID && a.SalonID == salonID && sameDate(a.Date, date)
	}), nil
}

func (r *Appointments) ListActiveBySalonDate(_ context.Context, salonID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.filter(func(a *domain.Appointment) bool {
		return a.IsActive() && a.SalonID == salonID && sameDate(a.Date, date)
	}), nil
}

func (r *Appointments) SlotTaken(_ context.Context, _ *txmanager.Scope, key appointmentRepo.SlotKey) (bool, error) {
	found := r.filter(func(a *domain.Appointment) bool {
		if key.ExcludeID != nil && a.ID == *key.ExcludeID {
			return false
		}
		if key.EmployeeID != nil && a.EmployeeID != nil && *a.EmployeeID != *key.EmployeeID {
			return false
		}
		return a.IsActive() && a.SalonID == key.SalonID && sameDate(a.Date, key.Date) && a.Time == key.Time
	})
	return len(found) > 0, nil
}

func (r *Appointments) ListBySalon(_ context.Context, filter domain.SalonAppointmentsFilter) ([]*domain.Appointment, error) {
	return r.filter(func(a *domain.Appointment) bool {
		if a.SalonID != filter.SalonID {
			return false
		}
		if filter.EmployeeID != nil && (a.EmployeeID == nil || *a.EmployeeID != *filter.EmployeeID) {
			return false
		}
		if filter.StartDate != nil && a.Date.Before(domain.DateOnly(*filter.StartDate)) {
			return false
		}
		if filter.EndDate != nil && a.Date.After(domain.DateOnly(*filter.EndDate)) {
			return false
		}
		if filter.Status != nil && a.Status != *filter.Status {
			return false
		}
		return true
	}), nil
}

func (r *Appointments) Update(_ context.Context, _ *txmanager.Scope, a *domain.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.appointments[a.ID]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if r.violatesUnique(a) {
		return appointmentRepo.ErrSlotTaken
	}

	stored.EmployeeID = a.EmployeeID
	stored.Date = domain.DateOnly(a.Date)
	stored.Time = a.Time
	stored.Status = a.Status
	stored.RescheduledDate = a.RescheduledDate
	stored.RescheduledTime = a.RescheduledTime
	stored.RescheduleReason = a.RescheduleReason
	stored.UpdatedAt = time.Now()
	return nil
}

// violatesUnique повторяет частичные уникальные индексы активных записей
func (r *Appointments) violatesUnique(a *domain.Appointment) bool {
	if !a.IsActive() {
		return false
	}
	for _, other := range r.store.appointments {
		if other.ID == a.ID || !other.IsActive() {
			continue
		}
		if other.SalonID != a.SalonID || !sameDate(other.Date, a.Date) || other.Time != a.Time {
			continue
		}
		if other.ClientID == a.ClientID {
			return true
		}
		if a.EmployeeID == nil && other.EmployeeID == nil {
			return true
		}
		if a.EmployeeID != nil && other.EmployeeID != nil && *a.EmployeeID == *other.EmployeeID {
			return true
		}
	}
	return false
}

func (r *Appointments) filter(keep func(a *domain.Appointment) bool) []*domain.Appointment {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]*domain.Appointment, 0)
	for _, a := range r.store.appointments {
		if keep(a) {
			result = append(result, r.withDuration(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		if result[i].Time != result[j].Time {
			return result[i].Time.IsBefore(result[j].Time)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// withDuration возвращает копию с актуальной длительностью услуги (как JOIN services)
func (r *Appointments) withDuration(a *domain.Appointment) *domain.Appointment {
	cp := *a
	if service, ok := r.store.services[a.ServiceID]; ok {
		cp.ServiceDuration = service.DurationMinutes
	}
	return &cp
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
