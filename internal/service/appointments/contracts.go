package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, scope *txmanager.Scope, id int64) (*domain.Appointment, error)
	ListBySalon(ctx context.Context, filter domain.SalonAppointmentsFilter) ([]*domain.Appointment, error)
	Update(ctx context.Context, scope *txmanager.Scope, a *domain.Appointment) error
}

// SalonRepository интерфейс репозитория салонов
type SalonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Salon, error)
	GetService(ctx context.Context, salonID, serviceID int64) (*domain.Service, error)
	GetEmployee(ctx context.Context, salonID, employeeID int64) (*domain.Employee, error)
	GetEmployeeByUserID(ctx context.Context, salonID, userID int64) (*domain.Employee, error)
}

// FeeRepository интерфейс репозитория штрафов за отмену
type FeeRepository interface {
	Create(ctx context.Context, scope *txmanager.Scope, fee *domain.CancellationFee) (*domain.CancellationFee, error)
	GetByID(ctx context.Context, scope *txmanager.Scope, id int64) (*domain.CancellationFee, error)
	MarkPaid(ctx context.Context, scope *txmanager.Scope, id int64, paidAt time.Time) error
}

// LinkRepository интерфейс репозитория ссылок для записи
type LinkRepository interface {
	GetByToken(ctx context.Context, scope *txmanager.Scope, token uuid.UUID) (*domain.BookingLink, error)
}

// Validator проверка нового слота при переносе
type Validator interface {
	Validate(ctx context.Context, req validator.Request) (validator.Result, error)
}

// LedgerClient интерфейс клиента финансового сервиса
type LedgerClient interface {
	EmitCompletion(ctx context.Context, event domain.CompletionEvent) error
	RecordCancellationFee(ctx context.Context, fee domain.CancellationFee) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context, scope *txmanager.Scope) error) error
}

// MetricsRecorder счетчик действий жизненного цикла
type MetricsRecorder interface {
	RecordLifecycleAction(action, result string)
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
