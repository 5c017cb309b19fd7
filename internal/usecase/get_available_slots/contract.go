package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// SalonRepository чтение салона, услуги и сотрудников
type SalonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Salon, error)
	GetService(ctx context.Context, salonID, serviceID int64) (*domain.Service, error)
	GetEmployee(ctx context.Context, salonID, employeeID int64) (*domain.Employee, error)
	ListQualifiedEmployees(ctx context.Context, salonID, serviceID int64) ([]*domain.Employee, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListActiveBySalonDate активные записи салона на дату, без блокировок
	ListActiveBySalonDate(ctx context.Context, salonID int64, date time.Time) ([]*domain.Appointment, error)
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
