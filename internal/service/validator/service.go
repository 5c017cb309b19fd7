package validator

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// Service проверяет предлагаемую запись против всех ограничений расписания
type Service struct {
	appointmentRepo AppointmentRepository
	employeeRepo    EmployeeRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр валидатора
func NewService(
	appointmentRepo AppointmentRepository,
	employeeRepo EmployeeRepository,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		employeeRepo:    employeeRepo,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Validate проверяет запись. Порядок проверок фиксирован, первая неудача прерывает проверку.
// Отказы возвращаются в Result, error означает только сбой инфраструктуры.
func (s *Service) Validate(ctx context.Context, req Request) (Result, error) {
	start := req.Start
	end := req.End()
	date := domain.DateOnly(start)

	// 1. Только будущее время
	if !start.After(s.timeProvider.Now()) {
		return reject(domain.RejectPastTime, domain.MsgPastTime), nil
	}

	// 2. Салон открыт на весь интервал
	if ok, reason := req.Salon.IsOpenFor(start, end); !ok {
		return reject(domain.RejectSalonClosed, reason), nil
	}

	// 3. Услуга активна
	if !req.Service.IsActive {
		return reject(domain.RejectServiceInactive, domain.MsgServiceInactive), nil
	}

	employee := req.Employee
	if employee != nil {
		// 4. Явно выбранный сотрудник: активен, квалифицирован, свободен
		if !employee.IsActive {
			return reject(domain.RejectEmployeeInactive, domain.MsgEmployeeInactive), nil
		}
		if !employee.IsQualified(req.Service.ID) {
			return reject(domain.RejectEmployeeUnqualified, domain.MsgEmployeeUnqualified), nil
		}

		result, err := s.checkEmployee(ctx, req, employee)
		if err != nil || !result.OK {
			return result, err
		}
	} else {
		// 5. Подбор свободного сотрудника без блокировок, затем перепроверка под блокировкой
		found, err := s.findFreeEmployee(ctx, req)
		if err != nil {
			return Result{}, err
		}
		if found == nil {
			return reject(domain.RejectNoEmployee, domain.MsgNoEmployee), nil
		}
		employee = found

		if req.Scope.Locking() {
			result, err := s.checkEmployee(ctx, req, employee)
			if err != nil || !result.OK {
				return result, err
			}
		}
	}

	// 6. У клиента нет пересекающейся записи в этом салоне
	clientAppts, err := s.appointmentRepo.ListActiveByClient(ctx, req.Scope, req.ClientID, req.Salon.ID, date, req.ExcludeAppointmentID)
	if err != nil {
		s.logger.Error("Validate: failed to list client=%d appointments: %v", req.ClientID, err)
		return Result{}, fmt.Errorf("%w: Validate - list client appointments: %w", ErrInternal, err)
	}
	if conflict := FindConflict(clientAppts, start, end, req.ExcludeAppointmentID); conflict != nil {
		return reject(domain.RejectClientConflict, fmt.Sprintf("client already has an appointment at %s", conflict.Time)), nil
	}

	// 7. Точный слот не занят другой активной записью
	taken, err := s.appointmentRepo.SlotTaken(ctx, req.Scope, appointmentRepo.SlotKey{
		SalonID:    req.Salon.ID,
		Date:       date,
		Time:       types.NewTimeString(start),
		EmployeeID: &employee.ID,
		ExcludeID:  req.ExcludeAppointmentID,
	})
	if err != nil {
		s.logger.Error("Validate: failed to check slot for salon=%d: %v", req.Salon.ID, err)
		return Result{}, fmt.Errorf("%w: Validate - check slot: %w", ErrInternal, err)
	}
	if taken {
		return reject(domain.RejectSlotTaken, domain.MsgSlotTaken), nil
	}

	return accept(employee), nil
}

// checkEmployee проверяет занятость сотрудника. В транзакции строки его записей на дату блокируются.
func (s *Service) checkEmployee(ctx context.Context, req Request, employee *domain.Employee) (Result, error) {
	appts, err := s.appointmentRepo.ListActiveByEmployee(ctx, req.Scope, employee.ID, domain.DateOnly(req.Start))
	if err != nil {
		s.logger.Error("Validate: failed to list employee=%d appointments: %v", employee.ID, err)
		return Result{}, fmt.Errorf("%w: Validate - list employee appointments: %w", ErrInternal, err)
	}

	if conflict := FindConflict(appts, req.Start, req.End(), req.ExcludeAppointmentID); conflict != nil {
		return reject(domain.RejectEmployeeBusy, fmt.Sprintf("employee already has an appointment at %s", conflict.Time)), nil
	}

	return accept(employee), nil
}

// findFreeEmployee рекомендательный поиск первого свободного квалифицированного сотрудника
func (s *Service) findFreeEmployee(ctx context.Context, req Request) (*domain.Employee, error) {
	employees, err := s.employeeRepo.ListQualifiedEmployees(ctx, req.Salon.ID, req.Service.ID)
	if err != nil {
		s.logger.Error("Validate: failed to list qualified employees for service=%d: %v", req.Service.ID, err)
		return nil, fmt.Errorf("%w: Validate - list qualified employees: %w", ErrInternal, err)
	}
	if len(employees) == 0 {
		return nil, nil
	}

	dayAppts, err := s.appointmentRepo.ListActiveBySalonDate(ctx, req.Salon.ID, domain.DateOnly(req.Start))
	if err != nil {
		s.logger.Error("Validate: failed to list salon=%d appointments: %v", req.Salon.ID, err)
		return nil, fmt.Errorf("%w: Validate - list salon appointments: %w", ErrInternal, err)
	}

	return FirstFreeEmployee(employees, dayAppts, req.Service.ID, req.Start, req.End(), req.ExcludeAppointmentID), nil
}
