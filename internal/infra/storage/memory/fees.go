package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	feeRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/cancellationfee"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// Fees in-memory аналог cancellationfee.Repository
type Fees struct {
	store *Store
}

func (s *Store) Fees() *Fees {
	return &Fees{store: s}
}

func (r *Fees) Create(_ context.Context, _ *txmanager.Scope, fee *domain.CancellationFee) (*domain.CancellationFee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.fees {
		if existing.AppointmentID == fee.AppointmentID {
			return nil, feeRepo.ErrFeeExists
		}
	}

	fee.ID = r.store.id()
	fee.CreatedAt = time.Now()
	cp := *fee
	r.store.fees[fee.ID] = &cp
	return fee, nil
}

func (r *Fees) GetByID(_ context.Context, _ *txmanager.Scope, id int64) (*domain.CancellationFee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	fee, ok := r.store.fees[id]
	if !ok {
		return nil, feeRepo.ErrFeeNotFound
	}
	cp := *fee
	return &cp, nil
}

func (r *Fees) SumUnpaid(_ context.Context, clientID, salonID int64) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	total := decimal.Zero
	for _, fee := range r.store.fees {
		if fee.ClientID == clientID && fee.SalonID == salonID && !fee.IsPaid {
			total = total.Add(fee.Amount)
		}
	}
	return total, nil
}

func (r *Fees) MarkPaid(_ context.Context, _ *txmanager.Scope, id int64, paidAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	fee, ok := r.store.fees[id]
	if !ok || fee.IsPaid {
		return feeRepo.ErrFeeNotFound
	}
	fee.IsPaid = true
	fee.PaidAt = &paidAt
	return nil
}
