package salons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	"github.com/m04kA/SMC-SalonBooking/internal/service/salons/models"
)

// Service сервис статуса салона: временное закрытие и открытие
type Service struct {
	salonRepo       SalonRepository
	defaultLocation *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса салонов
func NewService(salonRepo SalonRepository, defaultLocation *time.Location, logger Logger) *Service {
	return &Service{
		salonRepo:       salonRepo,
		defaultLocation: defaultLocation,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetStatus публичный статус салона. Ничего не записывает.
func (s *Service) GetStatus(ctx context.Context, salonID int64) (*models.SalonStatusResponse, error) {
	s.logger.Info("GetStatus: fetching status of salon=%d", salonID)

	salon, err := s.get(ctx, "GetStatus", salonID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainSalon(salon, salon.Location(s.defaultLocation).String(), s.timeProvider.Now()), nil
}

// UpdateStatus закрывает салон (опционально до closedUntil с заметкой) или открывает его.
// Доступно только владельцу.
func (s *Service) UpdateStatus(ctx context.Context, req *models.UpdateStatusRequest) (*models.SalonStatusResponse, error) {
	s.logger.Info("UpdateStatus: salon=%d closed=%t by user=%d", req.SalonID, req.Closed, req.UserID)

	now := s.timeProvider.Now()
	if err := validateStatus(req, now); err != nil {
		s.logger.Warn("UpdateStatus: validation failed: %v", err)
		return nil, err
	}

	salon, err := s.get(ctx, "UpdateStatus", req.SalonID)
	if err != nil {
		return nil, err
	}
	if !salon.IsOwnedBy(req.UserID) {
		s.logger.Warn("UpdateStatus: user=%d is not the owner of salon=%d", req.UserID, req.SalonID)
		return nil, ErrAccessDenied
	}

	var until *time.Time
	var note *string
	if req.Closed {
		until, note = req.ClosedUntil, req.Note
	}

	if err := s.salonRepo.UpdateClosure(ctx, req.SalonID, req.Closed, until, note); err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			return nil, ErrSalonNotFound
		}
		s.logger.Error("UpdateStatus: failed to update salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	salon.IsTemporarilyClosed = req.Closed
	salon.ClosedUntil = until
	salon.ClosureNote = note

	s.logger.Info("UpdateStatus: salon=%d is now closed=%t", req.SalonID, req.Closed)
	return models.FromDomainSalon(salon, salon.Location(s.defaultLocation).String(), now), nil
}

func (s *Service) get(ctx context.Context, op string, salonID int64) (*domain.Salon, error) {
	salon, err := s.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			s.logger.Warn("%s: salon id=%d not found", op, salonID)
			return nil, ErrSalonNotFound
		}
		s.logger.Error("%s: failed to get salon id=%d: %v", op, salonID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return salon, nil
}

func validateStatus(req *models.UpdateStatusRequest, now time.Time) error {
	if !req.Closed {
		return nil
	}
	if req.ClosedUntil != nil && !req.ClosedUntil.After(now) {
		return fmt.Errorf("%w: closedUntil must be in the future", ErrInvalidInput)
	}
	if req.Note != nil && len(*req.Note) > domain.MaxClosureNoteLength {
		return fmt.Errorf("%w: note must not exceed %d characters", ErrInvalidInput, domain.MaxClosureNoteLength)
	}
	return nil
}
