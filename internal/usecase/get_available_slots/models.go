package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// Settings параметры сетки слотов
type Settings struct {
	DefaultLocation *time.Location // для салонов без своего часового пояса
	SlotStepMinutes int
}

// Request модель запроса на получение доступных слотов
type Request struct {
	SalonID    int64
	ServiceID  int64
	EmployeeID *int64    // nil = любой свободный сотрудник
	Date       time.Time // календарная дата (время игнорируется)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       time.Time
	SalonID    int64
	ServiceID  int64
	EmployeeID *int64
	Slots      []types.TimeString // по возрастанию
}
