package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/integrations/identity"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// SalonRepository интерфейс репозитория салонов
type SalonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Salon, error)
	GetService(ctx context.Context, salonID, serviceID int64) (*domain.Service, error)
	GetEmployee(ctx context.Context, salonID, employeeID int64) (*domain.Employee, error)
	// ReopenExpired снимает истекшее временное закрытие, идемпотентно
	ReopenExpired(ctx context.Context, salonID int64, now time.Time) (bool, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, scope *txmanager.Scope, a *domain.Appointment) (*domain.Appointment, error)
}

// FeeRepository интерфейс репозитория штрафов за отмену
type FeeRepository interface {
	SumUnpaid(ctx context.Context, clientID, salonID int64) (decimal.Decimal, error)
}

// LinkRepository интерфейс репозитория ссылок для записи
type LinkRepository interface {
	GetByToken(ctx context.Context, scope *txmanager.Scope, token uuid.UUID) (*domain.BookingLink, error)
	BindClient(ctx context.Context, scope *txmanager.Scope, id, clientID int64) error
}

// IdentityClient интерфейс клиента сервиса идентификации
type IdentityClient interface {
	ResolveClient(ctx context.Context, contact identity.ContactInfo) (int64, error)
}

// Validator проверка записи против расписания
type Validator interface {
	Validate(ctx context.Context, req validator.Request) (validator.Result, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context, scope *txmanager.Scope) error) error
}

// MetricsRecorder счетчик исходов записи
type MetricsRecorder interface {
	RecordBookingOutcome(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
