package cancellationfee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// Repository репозиторий штрафов за позднюю отмену
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

func (r *Repository) executor(scope *txmanager.Scope) DBExecutor {
	if scope != nil {
		return scope.Executor()
	}
	return r.db
}

// Create сохраняет штраф (1:1 с записью)
func (r *Repository) Create(ctx context.Context, scope *txmanager.Scope, fee *domain.CancellationFee) (*domain.CancellationFee, error) {
	query, args, err := psqlbuilder.Insert("cancellation_fees").
		Columns(
			"appointment_id",
			"salon_id",
			"client_id",
			"amount",
			"fee_percentage",
			"service_price",
			"hours_before_appointment",
			"cancelled_at",
			"cancelled_by_employee_id",
			"notes",
		).
		Values(
			fee.AppointmentID,
			fee.SalonID,
			fee.ClientID,
			fee.Amount,
			fee.FeePercentage,
			fee.ServicePrice,
			fee.HoursBeforeAppointment,
			fee.CancelledAt,
			fee.CancelledByEmployeeID,
			fee.Notes,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = r.executor(scope).QueryRowContext(ctx, query, args...).Scan(&fee.ID, &createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: Create: %w", ErrFeeExists, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	fee.CreatedAt = createdAt.Time

	return fee, nil
}

// GetByID получает штраф по ID, в транзакции с блокировкой строки
func (r *Repository) GetByID(ctx context.Context, scope *txmanager.Scope, id int64) (*domain.CancellationFee, error) {
	sb := psqlbuilder.Select(
		"id",
		"appointment_id",
		"salon_id",
		"client_id",
		"amount",
		"fee_percentage",
		"service_price",
		"hours_before_appointment",
		"cancelled_at",
		"cancelled_by_employee_id",
		"is_paid",
		"paid_at",
		"notes",
		"created_at",
	).
		From("cancellation_fees").
		Where(squirrel.Eq{"id": id})

	if scope.Locking() {
		sb = sb.Suffix("FOR UPDATE")
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var fee domain.CancellationFee
	err = r.executor(scope).QueryRowContext(ctx, query, args...).Scan(
		&fee.ID,
		&fee.AppointmentID,
		&fee.SalonID,
		&fee.ClientID,
		&fee.Amount,
		&fee.FeePercentage,
		&fee.ServicePrice,
		&fee.HoursBeforeAppointment,
		&fee.CancelledAt,
		&fee.CancelledByEmployeeID,
		&fee.IsPaid,
		&fee.PaidAt,
		&fee.Notes,
		&fee.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan fee: %w", ErrScanRow, err)
	}

	return &fee, nil
}

// SumUnpaid сумма неоплаченных штрафов клиента в салоне
func (r *Repository) SumUnpaid(ctx context.Context, clientID, salonID int64) (decimal.Decimal, error) {
	query, args, err := psqlbuilder.Select("COALESCE(SUM(amount), 0)").
		From("cancellation_fees").
		Where(squirrel.Eq{
			"client_id": clientID,
			"salon_id":  salonID,
			"is_paid":   false,
		}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: SumUnpaid - build select query: %w", ErrBuildQuery, err)
	}

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%w: SumUnpaid - scan sum: %w", ErrScanRow, err)
	}

	return total, nil
}

// MarkPaid отмечает штраф оплаченным. Уже оплаченный штраф не изменяется.
func (r *Repository) MarkPaid(ctx context.Context, scope *txmanager.Scope, id int64, paidAt time.Time) error {
	query, args, err := psqlbuilder.Update("cancellation_fees").
		Set("is_paid", true).
		Set("paid_at", paidAt).
		Where(squirrel.Eq{"id": id, "is_paid": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPaid - build update query: %w", ErrBuildQuery, err)
	}

	result, err := r.executor(scope).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkPaid - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkPaid - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrFeeNotFound
	}

	return nil
}
