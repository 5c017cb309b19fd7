package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	feeRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/cancellationfee"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// PayFee отмечает штраф оплаченным. Доступно только владельцу салона штрафа.
func (s *Service) PayFee(ctx context.Context, feeID, userID int64) (*models.FeeResponse, error) {
	s.logger.Info("PayFee: fee id=%d by user=%d", feeID, userID)

	fee, err := s.feeRepo.GetByID(ctx, nil, feeID)
	if err != nil {
		if errors.Is(err, feeRepo.ErrFeeNotFound) {
			s.logger.Warn("PayFee: fee id=%d not found", feeID)
			return nil, ErrFeeNotFound
		}
		s.logger.Error("PayFee: repository error for fee id=%d: %v", feeID, err)
		return nil, fmt.Errorf("%w: PayFee - repository error: %v", ErrInternal, err)
	}

	salon, err := s.salonRepo.GetByID(ctx, fee.SalonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			return nil, ErrSalonNotFound
		}
		s.logger.Error("PayFee: failed to get salon id=%d: %v", fee.SalonID, err)
		return nil, fmt.Errorf("%w: PayFee - failed to get salon: %v", ErrInternal, err)
	}
	if !salon.IsOwnedBy(userID) {
		s.logger.Warn("PayFee: user=%d is not the owner of salon=%d", userID, salon.ID)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context, scope *txmanager.Scope) error {
		fee, err = s.feeRepo.GetByID(txCtx, scope, feeID)
		if err != nil {
			if errors.Is(err, feeRepo.ErrFeeNotFound) {
				return ErrFeeNotFound
			}
			return fmt.Errorf("%w: PayFee - failed to lock fee: %w", ErrInternal, err)
		}

		if err := fee.MarkPaid(now); err != nil {
			if errors.Is(err, domain.ErrFeeAlreadyPaid) {
				return ErrFeeAlreadyPaid
			}
			return err
		}

		if err := s.feeRepo.MarkPaid(txCtx, scope, feeID, now); err != nil {
			if errors.Is(err, feeRepo.ErrFeeNotFound) {
				// оплачен параллельным запросом
				return ErrFeeAlreadyPaid
			}
			s.logger.Error("PayFee: failed to mark fee id=%d paid: %v", feeID, err)
			return fmt.Errorf("%w: PayFee - failed to mark paid: %w", ErrInternal, err)
		}
		return nil
	})
	if err = txResult(err); err != nil {
		if errors.Is(err, ErrFeeAlreadyPaid) {
			s.logger.Warn("PayFee: fee id=%d already paid", feeID)
		}
		return nil, err
	}

	if err := s.ledgerClient.RecordCancellationFee(ctx, *fee); err != nil {
		s.logger.Error("PayFee: failed to record payment of fee id=%d in ledger: %v", feeID, err)
	}

	s.logger.Info("PayFee: fee id=%d marked paid", feeID)
	return models.FromDomainFee(fee), nil
}
