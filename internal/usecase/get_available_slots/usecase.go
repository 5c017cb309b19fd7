package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// UseCase use case для получения доступных слотов для записи.
// Работает без блокировок: результат рекомендательный и пересчитывается на каждый вызов.
type UseCase struct {
	salonRepo       SalonRepository
	appointmentRepo AppointmentRepository
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	salonRepo SalonRepository,
	appointmentRepo AppointmentRepository,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		salonRepo:       salonRepo,
		appointmentRepo: appointmentRepo,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: salon=%d, service=%d, date=%s",
		req.SalonID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	response := &Response{
		Date:       domain.DateOnly(req.Date),
		SalonID:    req.SalonID,
		ServiceID:  req.ServiceID,
		EmployeeID: req.EmployeeID,
	}

	// 2. Салон и услуга
	salon, err := uc.salonRepo.GetByID(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			uc.logger.Warn("GetAvailableSlots: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	service, err := uc.salonRepo.GetService(ctx, req.SalonID, req.ServiceID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found in salon=%d", req.ServiceID, req.SalonID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	grid := dayGrid{
		salon:   salon,
		service: service,
		date:    req.Date,
		loc:     salon.Location(uc.settings.DefaultLocation),
		step:    uc.settings.SlotStepMinutes,
		now:     uc.timeProvider.Now(),
	}

	// 3. Сотрудник: выбранный или все квалифицированные
	if req.EmployeeID != nil {
		grid.employee, err = uc.salonRepo.GetEmployee(ctx, req.SalonID, *req.EmployeeID)
		if err != nil {
			if errors.Is(err, salonRepo.ErrEmployeeNotFound) {
				uc.logger.Warn("GetAvailableSlots: employee id=%d not found in salon=%d", *req.EmployeeID, req.SalonID)
				return nil, ErrEmployeeNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get employee id=%d: %v", *req.EmployeeID, err)
			return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
		}
	}

	if !service.IsActive {
		uc.logger.Info("GetAvailableSlots: service id=%d is inactive", service.ID)
		response.Slots = []types.TimeString{}
		return response, nil
	}

	if grid.employee == nil {
		grid.staff, err = uc.salonRepo.ListQualifiedEmployees(ctx, req.SalonID, req.ServiceID)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to list employees for service=%d: %v", req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to list employees: %v", ErrInternal, err)
		}
	}

	// 4. Записи салона на день загружаются один раз
	grid.dayAppts, err = uc.appointmentRepo.ListActiveBySalonDate(ctx, req.SalonID, domain.DateOnly(req.Date))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list appointments of salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	response.Slots = availableSlots(grid)

	uc.logger.Info("GetAvailableSlots: found %d slots for salon=%d, service=%d, date=%s",
		len(response.Slots), req.SalonID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return response, nil
}
