package appointment

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
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

const pqUniqueViolation = "23505"

// Блокируем только строки записей, строки услуг в JOIN не трогаем
const lockSuffix = "FOR UPDATE OF a"

var appointmentColumns = []string{
	"a.id",
	"a.client_id",
	"a.salon_id",
	"a.service_id",
	"a.employee_id",
	"a.appointment_date",
	"a.appointment_time",
	"a.status",
	"a.notes",
	"a.rescheduled_date",
	"a.rescheduled_time",
	"a.reschedule_reason",
	"a.booking_link_id",
	"s.duration_minutes",
	"a.created_at",
	"a.updated_at",
}

// Repository репозиторий для работы с записями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// SlotKey точный слот (salon, date, time[, employee])
type SlotKey struct {
	SalonID    int64
	Date       time.Time
	Time       types.TimeString
	EmployeeID *int64
	ExcludeID  *int64 // запись, которую переносим
}

// executor выбирает исполнителя: транзакция из scope или пул соединений
func (r *Repository) executor(scope *txmanager.Scope) DBExecutor {
	if scope != nil {
		return scope.Executor()
	}
	return r.db
}

func selectAppointments() squirrel.SelectBuilder {
	return psqlbuilder.Select(appointmentColumns...).
		From("appointments a").
		Join("services s ON s.id = a.service_id")
}

func withLock(sb squirrel.SelectBuilder, scope *txmanager.Scope) squirrel.SelectBuilder {
	if scope.Locking() {
		return sb.Suffix(lockSuffix)
	}
	return sb
}

// Create создает запись в статусе, выставленном вызывающим (обычно scheduled).
// Нарушение частичного уникального индекса активных слотов возвращается как ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, scope *txmanager.Scope, a *domain.Appointment) (*domain.Appointment, error) {
	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"client_id",
			"salon_id",
			"service_id",
			"employee_id",
			"appointment_date",
			"appointment_time",
			"status",
			"notes",
			"booking_link_id",
		).
		Values(
			a.ClientID,
			a.SalonID,
			a.ServiceID,
			a.EmployeeID,
			dateArg(a.Date),
			a.Time,
			a.Status,
			a.Notes,
			a.BookingLinkID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = r.executor(scope).QueryRowContext(ctx, query, args...).Scan(&a.ID, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: Create: %w", ErrSlotTaken, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по ID. В транзакции строка блокируется.
func (r *Repository) GetByID(ctx context.Context, scope *txmanager.Scope, id int64) (*domain.Appointment, error) {
	query, args, err := withLock(selectAppointments().Where(squirrel.Eq{"a.id": id}), scope).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	a, err := scanAppointment(r.executor(scope).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return a, nil
}

// ListActiveByEmployee активные записи сотрудника на дату
func (r *Repository) ListActiveByEmployee(ctx context.Context, scope *txmanager.Scope, employeeID int64, date time.Time) ([]*domain.Appointment, error) {
	sb := selectAppointments().
		Where(squirrel.Eq{
			"a.employee_id":      employeeID,
			"a.appointment_date": dateArg(date),
			"a.status":           domain.ActiveStatusStrings(),
		}).
		OrderBy("a.appointment_time ASC", "a.id ASC")

	return r.list(ctx, scope, "ListActiveByEmployee", withLock(sb, scope))
}

// ListActiveByClient активные записи клиента в салоне на дату, кроме excludeID
func (r *Repository) ListActiveByClient(ctx context.Context, scope *txmanager.Scope, clientID, salonID int64, date time.Time, excludeID *int64) ([]*domain.Appointment, error) {
	sb := selectAppointments().
		Where(squirrel.Eq{
			"a.client_id":        clientID,
			"a.salon_id":         salonID,
			"a.appointment_date": dateArg(date),
			"a.status":           domain.ActiveStatusStrings(),
		}).
		OrderBy("a.appointment_time ASC", "a.id ASC")

	if excludeID != nil {
		sb = sb.Where(squirrel.NotEq{"a.id": *excludeID})
	}

	return r.list(ctx, scope, "ListActiveByClient", withLock(sb, scope))
}

// ListActiveBySalonDate активные записи салона на дату (для расчета свободных слотов, без блокировок)
func (r *Repository) ListActiveBySalonDate(ctx context.Context, salonID int64, date time.Time) ([]*domain.Appointment, error) {
	sb := selectAppointments().
		Where(squirrel.Eq{
			"a.salon_id":         salonID,
			"a.appointment_date": dateArg(date),
			"a.status":           domain.ActiveStatusStrings(),
		}).
		OrderBy("a.appointment_time ASC", "a.id ASC")

	return r.list(ctx, nil, "ListActiveBySalonDate", sb)
}

// SlotTaken проверяет, занят ли точный слот другой активной записью.
// В транзакции найденные строки блокируются.
func (r *Repository) SlotTaken(ctx context.Context, scope *txmanager.Scope, key SlotKey) (bool, error) {
	sb := psqlbuilder.Select("a.id").
		From("appointments a").
		Where(squirrel.Eq{
			"a.salon_id":         key.SalonID,
			"a.appointment_date": dateArg(key.Date),
			"a.appointment_time": key.Time,
			"a.status":           domain.ActiveStatusStrings(),
		})

	// запись без сотрудника занимает слот салона для любого сотрудника
	if key.EmployeeID != nil {
		sb = sb.Where(squirrel.Or{
			squirrel.Eq{"a.employee_id": *key.EmployeeID},
			squirrel.Eq{"a.employee_id": nil},
		})
	}
	if key.ExcludeID != nil {
		sb = sb.Where(squirrel.NotEq{"a.id": *key.ExcludeID})
	}
	if scope.Locking() {
		sb = sb.Suffix("FOR UPDATE")
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: SlotTaken - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := r.executor(scope).QueryContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: SlotTaken - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	taken := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("%w: SlotTaken - rows error: %w", ErrScanRow, err)
	}

	return taken, nil
}

// ListBySalon записи салона с фильтрацией по периоду, сотруднику и статусу
func (r *Repository) ListBySalon(ctx context.Context, filter domain.SalonAppointmentsFilter) ([]*domain.Appointment, error) {
	sb := selectAppointments().Where(squirrel.Eq{"a.salon_id": filter.SalonID})

	if filter.EmployeeID != nil {
		sb = sb.Where(squirrel.Eq{"a.employee_id": *filter.EmployeeID})
	}
	if filter.StartDate != nil {
		sb = sb.Where(squirrel.GtOrEq{"a.appointment_date": dateArg(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		sb = sb.Where(squirrel.LtOrEq{"a.appointment_date": dateArg(*filter.EndDate)})
	}
	if filter.Status != nil {
		sb = sb.Where(squirrel.Eq{"a.status": *filter.Status})
	}

	sb = sb.OrderBy("a.appointment_date ASC", "a.appointment_time ASC", "a.id ASC")

	return r.list(ctx, nil, "ListBySalon", sb)
}

// Update сохраняет статус, слот, сотрудника и поля предложения переноса
func (r *Repository) Update(ctx context.Context, scope *txmanager.Scope, a *domain.Appointment) error {
	var rescheduledDate interface{}
	if a.RescheduledDate != nil {
		rescheduledDate = dateArg(*a.RescheduledDate)
	}

	query, args, err := psqlbuilder.Update("appointments").
		Set("employee_id", a.EmployeeID).
		Set("appointment_date", dateArg(a.Date)).
		Set("appointment_time", a.Time).
		Set("status", a.Status).
		Set("rescheduled_date", rescheduledDate).
		Set("rescheduled_time", a.RescheduledTime).
		Set("reschedule_reason", a.RescheduleReason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	result, err := r.executor(scope).ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: Update: %w", ErrSlotTaken, err)
		}
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

func (r *Repository) list(ctx context.Context, scope *txmanager.Scope, op string, sb squirrel.SelectBuilder) ([]*domain.Appointment, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	rows, err := r.executor(scope).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return appointments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.SalonID,
		&a.ServiceID,
		&a.EmployeeID,
		&a.Date,
		&a.Time,
		&a.Status,
		&a.Notes,
		&a.RescheduledDate,
		&a.RescheduledTime,
		&a.RescheduleReason,
		&a.BookingLinkID,
		&a.ServiceDuration,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Date = domain.DateOnly(a.Date)
	if a.RescheduledDate != nil {
		d := domain.DateOnly(*a.RescheduledDate)
		a.RescheduledDate = &d
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

// dateArg передает дату как 'YYYY-MM-DD', чтобы сравнение с DATE не зависело от часового пояса сессии
func dateArg(t time.Time) string {
	return t.Format(domain.DateFormat)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}
