package salon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
)

// Список услуг сотрудника в порядке id
const serviceIDsColumn = "ARRAY(SELECT es.service_id FROM employee_services es WHERE es.employee_id = e.id ORDER BY es.service_id) AS service_ids"

var employeeColumns = []string{
	"e.id",
	"e.salon_id",
	"e.user_id",
	"e.name",
	"e.is_active",
	"e.payment_type",
	"e.commission_percentage",
	serviceIDsColumn,
	"e.created_at",
}

// Repository репозиторий салонов, их услуг и сотрудников.
// Чтения справочных данных выполняются без блокировок.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория салонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает салон по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Salon, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"owner_id",
		"name",
		"timezone",
		"status",
		"weekday_open",
		"weekday_close",
		"saturday_open",
		"saturday_close",
		"sunday_open",
		"sunday_close",
		"is_temporarily_closed",
		"closed_until",
		"closure_note",
		"cancellation_policy_enabled",
		"cancellation_fee_percentage",
		"cancellation_hours_threshold",
		"created_at",
		"updated_at",
	).
		From("salons").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var s domain.Salon
	var createdAt, updatedAt sql.NullTime

	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.Timezone,
		&s.Status,
		&s.Weekdays.Open,
		&s.Weekdays.Close,
		&s.Saturday.Open,
		&s.Saturday.Close,
		&s.Sunday.Open,
		&s.Sunday.Close,
		&s.IsTemporarilyClosed,
		&s.ClosedUntil,
		&s.ClosureNote,
		&s.CancellationPolicy.Enabled,
		&s.CancellationPolicy.FeePercentage,
		&s.CancellationPolicy.HoursThreshold,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSalonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan salon: %w", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// ReopenExpired снимает временное закрытие, срок которого истек к моменту now.
// Идемпотентно: повторный вызов ничего не меняет. Возвращает true, если салон был открыт.
func (r *Repository) ReopenExpired(ctx context.Context, salonID int64, now time.Time) (bool, error) {
	query, args, err := psqlbuilder.Update("salons").
		Set("is_temporarily_closed", false).
		Set("closed_until", nil).
		Set("closure_note", nil).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": salonID, "is_temporarily_closed": true}).
		Where(squirrel.NotEq{"closed_until": nil}).
		Where(squirrel.LtOrEq{"closed_until": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ReopenExpired - build update query: %w", ErrBuildQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: ReopenExpired - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: ReopenExpired - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// UpdateClosure закрывает салон (closed=true, опционально до until с заметкой) или открывает его
func (r *Repository) UpdateClosure(ctx context.Context, salonID int64, closed bool, until *time.Time, note *string) error {
	ub := psqlbuilder.Update("salons").
		Set("is_temporarily_closed", closed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": salonID})

	if closed {
		ub = ub.Set("closed_until", until).Set("closure_note", note)
	} else {
		ub = ub.Set("closed_until", nil).Set("closure_note", nil)
	}

	query, args, err := ub.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateClosure - build update query: %w", ErrBuildQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateClosure - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateClosure - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSalonNotFound
	}

	return nil
}

// GetService получает услугу салона
func (r *Repository) GetService(ctx context.Context, salonID, serviceID int64) (*domain.Service, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"salon_id",
		"name",
		"duration_minutes",
		"price",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"id": serviceID, "salon_id": salonID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %w", ErrBuildQuery, err)
	}

	var s domain.Service
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.SalonID,
		&s.Name,
		&s.DurationMinutes,
		&s.Price,
		&s.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	return &s, nil
}

// GetEmployee получает сотрудника салона вместе с набором его услуг
func (r *Repository) GetEmployee(ctx context.Context, salonID, employeeID int64) (*domain.Employee, error) {
	return r.getEmployee(ctx, "GetEmployee", squirrel.Eq{"e.id": employeeID, "e.salon_id": salonID})
}

// GetEmployeeByUserID находит сотрудника салона по аккаунту пользователя
func (r *Repository) GetEmployeeByUserID(ctx context.Context, salonID, userID int64) (*domain.Employee, error) {
	return r.getEmployee(ctx, "GetEmployeeByUserID", squirrel.Eq{"e.user_id": userID, "e.salon_id": salonID})
}

// ListQualifiedEmployees активные сотрудники салона, умеющие выполнять услугу, в порядке id
func (r *Repository) ListQualifiedEmployees(ctx context.Context, salonID, serviceID int64) ([]*domain.Employee, error) {
	query, args, err := psqlbuilder.Select(employeeColumns...).
		From("employees e").
		Where(squirrel.Eq{"e.salon_id": salonID, "e.is_active": true}).
		Where(squirrel.Expr("EXISTS (SELECT 1 FROM employee_services q WHERE q.employee_id = e.id AND q.service_id = ?)", serviceID)).
		OrderBy("e.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListQualifiedEmployees - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListQualifiedEmployees - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListQualifiedEmployees - scan row: %w", ErrScanRow, err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListQualifiedEmployees - rows error: %w", ErrScanRow, err)
	}

	return employees, nil
}

func (r *Repository) getEmployee(ctx context.Context, op string, where squirrel.Eq) (*domain.Employee, error) {
	query, args, err := psqlbuilder.Select(employeeColumns...).
		From("employees e").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan employee: %w", ErrScanRow, op, err)
	}

	return e, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	var createdAt sql.NullTime
	var serviceIDs pq.Int64Array

	err := row.Scan(
		&e.ID,
		&e.SalonID,
		&e.UserID,
		&e.Name,
		&e.IsActive,
		&e.PaymentType,
		&e.CommissionPercentage,
		&serviceIDs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.ServiceIDs = []int64(serviceIDs)
	e.CreatedAt = createdAt.Time

	return &e, nil
}
