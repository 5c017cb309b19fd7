package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	linkRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/bookinglink"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// role роль пользователя относительно записи
type role int

const (
	roleClient role = iota + 1
	roleStaff       // владелец салона или активный сотрудник
)

// Service сервис жизненного цикла записей
type Service struct {
	appointmentRepo AppointmentRepository
	salonRepo       SalonRepository
	feeRepo         FeeRepository
	linkRepo        LinkRepository
	validator       Validator
	ledgerClient    LedgerClient
	txManager       TransactionManager
	metrics         MetricsRecorder
	defaultLocation *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	salonRepo SalonRepository,
	feeRepo FeeRepository,
	linkRepo LinkRepository,
	validator Validator,
	ledgerClient LedgerClient,
	txManager TransactionManager,
	metrics MetricsRecorder,
	defaultLocation *time.Location,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		salonRepo:       salonRepo,
		feeRepo:         feeRepo,
		linkRepo:        linkRepo,
		validator:       validator,
		ledgerClient:    ledgerClient,
		txManager:       txManager,
		metrics:         metrics,
		defaultLocation: defaultLocation,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID.
// Доступно клиенту записи (в том числе по ссылке), сотрудникам и владельцу салона.
func (s *Service) GetByID(ctx context.Context, id int64, actor models.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, actor.UserID)

	appt, salon, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolveRole(ctx, appt, salon, actor); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", actor.UserID, id)
		return nil, err
	}

	return models.FromDomainAppointment(appt), nil
}

// ListBySalon получает записи салона с фильтрацией. Доступно сотрудникам и владельцу.
func (s *Service) ListBySalon(ctx context.Context, req *models.ListSalonAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListBySalon: fetching appointments for salon=%d, user=%d", req.SalonID, req.UserID)

	salon, err := s.salonRepo.GetByID(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			s.logger.Warn("ListBySalon: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		s.logger.Error("ListBySalon: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: ListBySalon - failed to get salon: %v", ErrInternal, err)
	}

	if err := s.requireStaff(ctx, salon, req.UserID); err != nil {
		s.logger.Warn("ListBySalon: user=%d is not staff of salon=%d", req.UserID, req.SalonID)
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListBySalon: invalid filter for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.ListBySalon(ctx, filter)
	if err != nil {
		s.logger.Error("ListBySalon: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: ListBySalon - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListBySalon: successfully fetched %d appointments for salon=%d", len(list), req.SalonID)
	return models.FromDomainAppointmentList(list), nil
}

// Вспомогательные методы

// load читает запись и ее салон без блокировок (для проверки прав)
func (s *Service) load(ctx context.Context, op string, id int64) (*domain.Appointment, *domain.Salon, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	salon, err := s.salonRepo.GetByID(ctx, appt.SalonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			s.logger.Warn("%s: salon id=%d not found", op, appt.SalonID)
			return nil, nil, ErrSalonNotFound
		}
		s.logger.Error("%s: failed to get salon id=%d: %v", op, appt.SalonID, err)
		return nil, nil, fmt.Errorf("%w: %s - failed to get salon: %v", ErrInternal, op, err)
	}

	return appt, salon, nil
}

// resolveRole определяет роль actor относительно записи.
// По ссылке: ссылка активна, привязана к клиенту записи и относится к салону записи.
func (s *Service) resolveRole(ctx context.Context, appt *domain.Appointment, salon *domain.Salon, actor models.Actor) (role, error) {
	if actor.LinkToken != nil {
		link, err := s.linkRepo.GetByToken(ctx, nil, *actor.LinkToken)
		if err != nil {
			if errors.Is(err, linkRepo.ErrLinkNotFound) {
				return 0, ErrLinkNotFound
			}
			s.logger.Error("resolveRole: failed to get booking link: %v", err)
			return 0, fmt.Errorf("%w: resolveRole - failed to get booking link: %v", ErrInternal, err)
		}
		if !link.IsActive {
			return 0, ErrLinkInactive
		}
		if !link.IsBound() || *link.ClientID != appt.ClientID || link.SalonID != appt.SalonID {
			return 0, ErrAccessDenied
		}
		return roleClient, nil
	}

	if actor.UserID <= 0 {
		return 0, ErrAccessDenied
	}
	if actor.UserID == appt.ClientID {
		return roleClient, nil
	}

	if err := s.requireStaff(ctx, salon, actor.UserID); err != nil {
		return 0, err
	}
	return roleStaff, nil
}

// requireStaff проверяет, что пользователь владелец салона или его активный сотрудник
func (s *Service) requireStaff(ctx context.Context, salon *domain.Salon, userID int64) error {
	if userID <= 0 {
		return ErrAccessDenied
	}
	if salon.IsOwnedBy(userID) {
		return nil
	}

	employee, err := s.salonRepo.GetEmployeeByUserID(ctx, salon.ID, userID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrEmployeeNotFound) {
			return ErrAccessDenied
		}
		s.logger.Error("requireStaff: failed to get employee by user=%d: %v", userID, err)
		return fmt.Errorf("%w: requireStaff - failed to get employee: %v", ErrInternal, err)
	}
	if !employee.IsActive {
		return ErrAccessDenied
	}

	return nil
}

// lockAppointment перечитывает запись внутри транзакции с блокировкой строки
func (s *Service) lockAppointment(ctx context.Context, op string, scope *txmanager.Scope, id int64) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: failed to lock appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - failed to lock appointment: %w", ErrInternal, op, err)
	}
	return appt, nil
}

// update сохраняет запись, уникальный индекс слота превращается в отказ
func (s *Service) update(ctx context.Context, op string, scope *txmanager.Scope, appt *domain.Appointment) error {
	if err := s.appointmentRepo.Update(ctx, scope, appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotTaken) {
			s.logger.Warn("%s: slot of appointment id=%d already taken", op, appt.ID)
			return errRejected
		}
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("%s: failed to update appointment id=%d: %v", op, appt.ID, err)
		return fmt.Errorf("%w: %s - failed to update appointment: %w", ErrInternal, op, err)
	}
	return nil
}

// txResult ошибка транзакции в ошибку сервиса
func txResult(err error) error {
	if err == nil || errors.Is(err, errRejected) {
		return nil
	}
	for _, known := range []error{ErrInternal, ErrAppointmentNotFound, ErrInvalidTransition, ErrNoProposal,
		ErrAlreadyStarted, ErrFeeNotFound, ErrFeeAlreadyPaid} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return ErrInvalidTransition
	case errors.Is(err, domain.ErrNoProposal):
		return ErrNoProposal
	case errors.Is(err, domain.ErrAlreadyStarted):
		return ErrAlreadyStarted
	default:
		return err
	}
}

func (s *Service) record(action domain.Action, err error, rejected bool) {
	result := "ok"
	switch {
	case err != nil && errors.Is(err, ErrInternal):
		result = "error"
	case err != nil:
		result = "denied"
	case rejected:
		result = "rejected"
	}
	s.metrics.RecordLifecycleAction(string(action), result)
}
