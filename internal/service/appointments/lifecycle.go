package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	feeRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/cancellationfee"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// UpdateStatus меняет статус записи сотрудником: confirmed, completed или no_show.
// После завершения в финансовый сервис отправляется событие начисления.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (resp *models.AppointmentResponse, err error) {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s by user=%d", id, req.Status, req.Actor.UserID)

	var action domain.Action
	switch domain.AppointmentStatus(req.Status) {
	case domain.StatusConfirmed:
		action = domain.ActionConfirm
	case domain.StatusCompleted:
		action = domain.ActionComplete
	case domain.StatusNoShow:
		action = domain.ActionNoShow
	default:
		s.logger.Warn("UpdateStatus: unsupported status=%s for appointment id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: status must be one of confirmed, completed, no_show", ErrInvalidInput)
	}
	defer func() { s.record(action, err, false) }()

	appt, salon, err := s.load(ctx, "UpdateStatus", id)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, salon, req.Actor.UserID); err != nil {
		s.logger.Warn("UpdateStatus: access denied for user=%d to appointment id=%d", req.Actor.UserID, id)
		return nil, err
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context, scope *txmanager.Scope) error {
		appt, err = s.lockAppointment(txCtx, "UpdateStatus", scope, id)
		if err != nil {
			return err
		}

		switch action {
		case domain.ActionConfirm:
			err = appt.Confirm()
		case domain.ActionComplete:
			err = appt.Complete()
		case domain.ActionNoShow:
			err = appt.MarkNoShow()
		}
		if err != nil {
			s.logger.Warn("UpdateStatus: cannot %s appointment id=%d in status=%s", action, id, appt.Status)
			return transitionError(err)
		}

		return s.update(txCtx, "UpdateStatus", scope, appt)
	})
	if err = txResult(err); err != nil {
		return nil, err
	}

	if action == domain.ActionComplete {
		s.emitCompletion(ctx, appt)
	}

	s.logger.Info("UpdateStatus: successfully updated appointment id=%d to status=%s", id, appt.Status)
	return models.FromDomainAppointment(appt), nil
}

// ProposeReschedule предлагает клиенту новый слот. Слот проверяется валидатором
// в транзакции, сама запись при проверке не конфликтует сама с собой.
func (s *Service) ProposeReschedule(ctx context.Context, id int64, req *models.RescheduleRequest) (resp *models.ActionResponse, err error) {
	s.logger.Info("ProposeReschedule: appointment id=%d to %s %s by user=%d", id, req.Date, req.Time, req.Actor.UserID)
	defer func() { s.record(domain.ActionProposeReschedule, err, resp != nil && resp.Rejection != nil) }()

	date, startTime, err := parseSlot(req.Date, req.Time)
	if err != nil {
		s.logger.Warn("ProposeReschedule: validation failed: %v", err)
		return nil, err
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxRescheduleReasonLength {
		return nil, fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxRescheduleReasonLength)
	}

	appt, salon, err := s.load(ctx, "ProposeReschedule", id)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, salon, req.Actor.UserID); err != nil {
		s.logger.Warn("ProposeReschedule: access denied for user=%d to appointment id=%d", req.Actor.UserID, id)
		return nil, err
	}

	start := domain.CombineDateTime(date, startTime, salon.Location(s.defaultLocation))
	var rejection *models.Rejection

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context, scope *txmanager.Scope) error {
		rejection = nil

		appt, err = s.lockAppointment(txCtx, "ProposeReschedule", scope, id)
		if err != nil {
			return err
		}
		if !domain.ValidTransition(domain.ActionProposeReschedule, appt.Status) {
			s.logger.Warn("ProposeReschedule: appointment id=%d in status=%s cannot be rescheduled", id, appt.Status)
			return ErrInvalidTransition
		}

		result, err := s.validateSlot(txCtx, "ProposeReschedule", scope, appt, salon, start)
		if err != nil {
			return err
		}
		if !result.OK {
			rejection = &models.Rejection{Code: string(result.Code), Message: result.Reason}
			return nil
		}

		if err := appt.ProposeReschedule(date, startTime, req.Reason); err != nil {
			return transitionError(err)
		}
		return s.update(txCtx, "ProposeReschedule", scope, appt)
	})
	if err = txResult(err); err != nil {
		return nil, err
	}

	if rejection != nil {
		s.logger.Warn("ProposeReschedule: slot rejected for appointment id=%d: %s", id, rejection.Message)
		return &models.ActionResponse{Rejection: rejection}, nil
	}

	s.logger.Info("ProposeReschedule: appointment id=%d awaits client decision", id)
	return &models.ActionResponse{Appointment: models.FromDomainAppointment(appt)}, nil
}

// RespondToReschedule ответ клиента на предложение переноса.
// При согласии предложенный слот проверяется повторно под блокировкой: пока запись
// в статусе rescheduled, слот никем не удерживается.
func (s *Service) RespondToReschedule(ctx context.Context, id int64, req *models.RescheduleDecisionRequest) (resp *models.ActionResponse, err error) {
	action := domain.ActionRejectReschedule
	if req.Accept {
		action = domain.ActionAcceptReschedule
	}
	s.logger.Info("RespondToReschedule: appointment id=%d, action=%s", id, action)
	defer func() { s.record(action, err, resp != nil && resp.Rejection != nil) }()

	appt, salon, err := s.load(ctx, "RespondToReschedule", id)
	if err != nil {
		return nil, err
	}
	r, err := s.resolveRole(ctx, appt, salon, req.Actor)
	if err != nil {
		s.logger.Warn("RespondToReschedule: access denied to appointment id=%d", id)
		return nil, err
	}
	if r != roleClient {
		s.logger.Warn("RespondToReschedule: user=%d is not the client of appointment id=%d", req.Actor.UserID, id)
		return nil, ErrAccessDenied
	}

	loc := salon.Location(s.defaultLocation)
	var rejection *models.Rejection

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context, scope *txmanager.Scope) error {
		rejection = nil

		appt, err = s.lockAppointment(txCtx, "RespondToReschedule", scope, id)
		if err != nil {
			return err
		}

		if !req.Accept {
			if err := appt.RejectReschedule(); err != nil {
				return transitionError(err)
			}
			return s.update(txCtx, "RespondToReschedule", scope, appt)
		}

		if !domain.ValidTransition(domain.ActionAcceptReschedule, appt.Status) {
			return ErrInvalidTransition
		}
		if !appt.HasProposal() {
			return ErrNoProposal
		}

		start := domain.CombineDateTime(*appt.RescheduledDate, *appt.RescheduledTime, loc)
		result, err := s.validateSlot(txCtx, "RespondToReschedule", scope, appt, salon, start)
		if err != nil {
			return err
		}
		if !result.OK {
			rejection = &models.Rejection{Code: string(result.Code), Message: result.Reason}
			return nil
		}

		if err := appt.AcceptReschedule(); err != nil {
			return transitionError(err)
		}
		appt.EmployeeID = &result.Employee.ID

		if err := s.update(txCtx, "RespondToReschedule", scope, appt); err != nil {
			if errors.Is(err, errRejected) {
				rejection = &models.Rejection{Code: string(domain.RejectSlotTaken), Message: domain.MsgSlotTaken}
			}
			return err
		}
		return nil
	})
	if err = txResult(err); err != nil {
		return nil, err
	}

	if rejection != nil {
		s.logger.Warn("RespondToReschedule: proposed slot no longer available for appointment id=%d: %s", id, rejection.Message)
		return &models.ActionResponse{Rejection: rejection}, nil
	}

	s.logger.Info("RespondToReschedule: appointment id=%d is now %s", id, appt.Status)
	return &models.ActionResponse{Appointment: models.FromDomainAppointment(appt)}, nil
}

// Cancel отменяет запись. Штраф начисляется только при отмене клиентом
// подтвержденной записи внутри окна политики салона.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (resp *models.CancelResponse, err error) {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, req.Actor.UserID)
	defer func() { s.record(domain.ActionCancel, err, false) }()

	appt, salon, err := s.load(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}
	r, err := s.resolveRole(ctx, appt, salon, req.Actor)
	if err != nil {
		s.logger.Warn("Cancel: access denied to appointment id=%d", id)
		return nil, err
	}

	now := s.timeProvider.Now()
	loc := salon.Location(s.defaultLocation)
	var fee *domain.CancellationFee

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context, scope *txmanager.Scope) error {
		fee = nil

		appt, err = s.lockAppointment(txCtx, "Cancel", scope, id)
		if err != nil {
			return err
		}
		before := *appt

		if err := appt.Cancel(now, loc); err != nil {
			s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, before.Status)
			return transitionError(err)
		}

		if r == roleClient {
			fee, err = s.lateCancellationFee(txCtx, &before, salon, loc, now)
			if err != nil {
				return err
			}
		}

		if err := s.update(txCtx, "Cancel", scope, appt); err != nil {
			return err
		}

		if fee != nil {
			fee, err = s.feeRepo.Create(txCtx, scope, fee)
			if err != nil {
				if errors.Is(err, feeRepo.ErrFeeExists) {
					s.logger.Warn("Cancel: fee for appointment id=%d already exists", id)
					return ErrInvalidTransition
				}
				s.logger.Error("Cancel: failed to create fee for appointment id=%d: %v", id, err)
				return fmt.Errorf("%w: Cancel - failed to create fee: %w", ErrInternal, err)
			}
		}
		return nil
	})
	if err = txResult(err); err != nil {
		return nil, err
	}

	if fee != nil {
		s.logger.Info("Cancel: late cancellation fee %s charged for appointment id=%d", fee.Amount.StringFixed(2), id)
		if err := s.ledgerClient.RecordCancellationFee(ctx, *fee); err != nil {
			s.logger.Error("Cancel: failed to record fee id=%d in ledger: %v", fee.ID, err)
		}
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", id)
	return &models.CancelResponse{
		Appointment: models.FromDomainAppointment(appt),
		Fee:         models.FromDomainFee(fee),
	}, nil
}

// lateCancellationFee штраф по политике салона для записи в статусе до отмены
func (s *Service) lateCancellationFee(ctx context.Context, before *domain.Appointment, salon *domain.Salon, loc *time.Location, now time.Time) (*domain.CancellationFee, error) {
	if before.Status != domain.StatusConfirmed || !salon.CancellationPolicy.Enabled {
		return nil, nil
	}

	service, err := s.salonRepo.GetService(ctx, salon.ID, before.ServiceID)
	if err != nil {
		s.logger.Error("Cancel: failed to get service id=%d: %v", before.ServiceID, err)
		return nil, fmt.Errorf("%w: Cancel - failed to get service: %w", ErrInternal, err)
	}

	return domain.ComputeCancellationFee(before, salon.CancellationPolicy, service.Price, before.Start(loc), now), nil
}

// validateSlot проверяет новый слот записи под блокировкой, исключая саму запись
func (s *Service) validateSlot(ctx context.Context, op string, scope *txmanager.Scope, appt *domain.Appointment, salon *domain.Salon, start time.Time) (validator.Result, error) {
	service, err := s.salonRepo.GetService(ctx, salon.ID, appt.ServiceID)
	if err != nil {
		s.logger.Error("%s: failed to get service id=%d: %v", op, appt.ServiceID, err)
		return validator.Result{}, fmt.Errorf("%w: %s - failed to get service: %w", ErrInternal, op, err)
	}

	var employee *domain.Employee
	if appt.EmployeeID != nil {
		employee, err = s.salonRepo.GetEmployee(ctx, salon.ID, *appt.EmployeeID)
		if err != nil && !errors.Is(err, salonRepo.ErrEmployeeNotFound) {
			s.logger.Error("%s: failed to get employee id=%d: %v", op, *appt.EmployeeID, err)
			return validator.Result{}, fmt.Errorf("%w: %s - failed to get employee: %w", ErrInternal, op, err)
		}
	}

	result, err := s.validator.Validate(ctx, validator.Request{
		Salon:                salon,
		Service:              service,
		ClientID:             appt.ClientID,
		Start:                start,
		Employee:             employee,
		ExcludeAppointmentID: &appt.ID,
		Scope:                scope,
	})
	if err != nil {
		s.logger.Error("%s: slot validation failed for appointment id=%d: %v", op, appt.ID, err)
		return validator.Result{}, fmt.Errorf("%w: %s - validate slot: %w", ErrInternal, op, err)
	}
	return result, nil
}

// emitCompletion отправляет начисление после коммита. Ошибки только логируются:
// запись уже завершена, финансовый сервис сверяется отдельно.
func (s *Service) emitCompletion(ctx context.Context, appt *domain.Appointment) {
	service, err := s.salonRepo.GetService(ctx, appt.SalonID, appt.ServiceID)
	if err != nil {
		s.logger.Error("emitCompletion: failed to get service id=%d: %v", appt.ServiceID, err)
		return
	}

	var employee *domain.Employee
	if appt.EmployeeID != nil {
		employee, err = s.salonRepo.GetEmployee(ctx, appt.SalonID, *appt.EmployeeID)
		if err != nil {
			s.logger.Warn("emitCompletion: employee id=%d not loaded, commission skipped: %v", *appt.EmployeeID, err)
			employee = nil
		}
	}

	event := domain.NewCompletionEvent(appt, service.Price, employee, s.timeProvider.Now())
	if err := s.ledgerClient.EmitCompletion(ctx, event); err != nil {
		s.logger.Error("emitCompletion: failed to emit completion of appointment id=%d: %v", appt.ID, err)
	}
}

// parseSlot разбирает дату YYYY-MM-DD и время HH:MM
func parseSlot(date, hhmm string) (time.Time, types.TimeString, error) {
	d, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", ErrInvalidInput)
	}
	if _, err := time.Parse(domain.TimeFormat, hhmm); err != nil {
		return time.Time{}, "", fmt.Errorf("%w: invalid time format, expected HH:MM", ErrInvalidInput)
	}
	t, err := types.NewTimeStringFromString(hhmm)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: invalid time", ErrInvalidInput)
	}
	return d, t, nil
}
