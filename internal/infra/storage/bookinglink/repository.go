package bookinglink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

var linkColumns = []string{
	"id",
	"token",
	"salon_id",
	"client_id",
	"temp_name",
	"temp_phone",
	"temp_email",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий ссылок для записи без регистрации
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

// Create сохраняет новую ссылку
func (r *Repository) Create(ctx context.Context, link *domain.BookingLink) (*domain.BookingLink, error) {
	query, args, err := psqlbuilder.Insert("booking_links").
		Columns("token", "salon_id", "temp_name", "temp_phone", "temp_email", "is_active").
		Values(link.Token, link.SalonID, link.TempName, link.TempPhone, link.TempEmail, link.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&link.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	link.CreatedAt = createdAt.Time
	link.UpdatedAt = updatedAt.Time

	return link, nil
}

// GetByToken находит ссылку по токену. В транзакции строка блокируется до привязки клиента.
func (r *Repository) GetByToken(ctx context.Context, scope *txmanager.Scope, token uuid.UUID) (*domain.BookingLink, error) {
	sb := psqlbuilder.Select(linkColumns...).
		From("booking_links").
		Where(squirrel.Eq{"token": token})

	if scope.Locking() {
		sb = sb.Suffix("FOR UPDATE")
	}

	return r.get(ctx, r.executor(scope), "GetByToken", sb)
}

// GetByID находит ссылку салона по ID
func (r *Repository) GetByID(ctx context.Context, salonID, id int64) (*domain.BookingLink, error) {
	sb := psqlbuilder.Select(linkColumns...).
		From("booking_links").
		Where(squirrel.Eq{"id": id, "salon_id": salonID})

	return r.get(ctx, r.db, "GetByID", sb)
}

// SetActive включает или выключает ссылку
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	query, args, err := psqlbuilder.Update("booking_links").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetActive - build update query: %w", ErrBuildQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetActive - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetActive - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// BindClient привязывает ссылку к клиенту при первом использовании.
// Повторная привязка к тому же клиенту допустима, к другому возвращает ErrAlreadyBound.
func (r *Repository) BindClient(ctx context.Context, scope *txmanager.Scope, id, clientID int64) error {
	query, args, err := psqlbuilder.Update("booking_links").
		Set("client_id", clientID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"client_id": nil},
			squirrel.Eq{"client_id": clientID},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: BindClient - build update query: %w", ErrBuildQuery, err)
	}

	result, err := r.executor(scope).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: BindClient - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: BindClient - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAlreadyBound
	}

	return nil
}

func (r *Repository) get(ctx context.Context, exec DBExecutor, op string, sb squirrel.SelectBuilder) (*domain.BookingLink, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	var link domain.BookingLink
	var createdAt, updatedAt sql.NullTime

	err = exec.QueryRowContext(ctx, query, args...).Scan(
		&link.ID,
		&link.Token,
		&link.SalonID,
		&link.ClientID,
		&link.TempName,
		&link.TempPhone,
		&link.TempEmail,
		&link.IsActive,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan link: %w", ErrScanRow, op, err)
	}

	link.CreatedAt = createdAt.Time
	link.UpdatedAt = updatedAt.Time

	return &link, nil
}
