package validator

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// AppointmentRepository чтения записей, нужные для проверки конфликтов.
// Непустой scope означает чтение в транзакции с блокировкой строк.
type AppointmentRepository interface {
	ListActiveByEmployee(ctx context.Context, scope *txmanager.Scope, employeeID int64, date time.Time) ([]*domain.Appointment, error)
	ListActiveByClient(ctx context.Context, scope *txmanager.Scope, clientID, salonID int64, date time.Time, excludeID *int64) ([]*domain.Appointment, error)
	ListActiveBySalonDate(ctx context.Context, salonID int64, date time.Time) ([]*domain.Appointment, error)
	SlotTaken(ctx context.Context, scope *txmanager.Scope, key appointmentRepo.SlotKey) (bool, error)
}

// EmployeeRepository поиск квалифицированных сотрудников
type EmployeeRepository interface {
	ListQualifiedEmployees(ctx context.Context, salonID, serviceID int64) ([]*domain.Employee, error)
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
