package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
)

// Salons in-memory аналог salon.Repository
type Salons struct {
	store *Store
}

func (s *Store) Salons() *Salons {
	return &Salons{store: s}
}

func (r *Salons) GetByID(_ context.Context, id int64) (*domain.Salon, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	salon, ok := r.store.salons[id]
	if !ok {
		return nil, salonRepo.ErrSalonNotFound
	}
	cp := *salon
	return &cp, nil
}

func (r *Salons) ReopenExpired(_ context.Context, salonID int64, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	salon, ok := r.store.salons[salonID]
	if !ok || !salon.NeedsReopen(now) {
		return false, nil
	}
	salon.IsTemporarilyClosed = false
	salon.ClosedUntil = nil
	salon.ClosureNote = nil
	return true, nil
}

func (r *Salons) UpdateClosure(_ context.Context, salonID int64, closed bool, until *time.Time, note *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	salon, ok := r.store.salons[salonID]
	if !ok {
		return salonRepo.ErrSalonNotFound
	}
	salon.IsTemporarilyClosed = closed
	if closed {
		salon.ClosedUntil = until
		salon.ClosureNote = note
	} else {
		salon.ClosedUntil = nil
		salon.ClosureNote = nil
	}
	return nil
}

func (r *Salons) GetService(_ context.Context, salonID, serviceID int64) (*domain.Service, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	service, ok := r.store.services[serviceID]
	if !ok || service.SalonID != salonID {
		return nil, salonRepo.ErrServiceNotFound
	}
	cp := *service
	return &cp, nil
}

func (r *Salons) GetEmployee(_ context.Context, salonID, employeeID int64) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.employees[employeeID]
	if !ok || e.SalonID != salonID {
		return nil, salonRepo.ErrEmployeeNotFound
	}
	return copyEmployee(e), nil
}

func (r *Salons) GetEmployeeByUserID(_ context.Context, salonID, userID int64) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.employees {
		if e.SalonID == salonID && e.UserID != nil && *e.UserID == userID {
			return copyEmployee(e), nil
		}
	}
	return nil, salonRepo.ErrEmployeeNotFound
}

func (r *Salons) ListQualifiedEmployees(_ context.Context, salonID, serviceID int64) ([]*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]*domain.Employee, 0)
	for _, e := range r.store.employees {
		if e.SalonID == salonID && e.CanPerform(serviceID) {
			result = append(result, copyEmployee(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func copyEmployee(e *domain.Employee) *domain.Employee {
	cp := *e
	cp.ServiceIDs = append([]int64(nil), e.ServiceIDs...)
	return &cp
}
