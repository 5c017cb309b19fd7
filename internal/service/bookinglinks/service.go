package bookinglinks

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	linkRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/bookinglink"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	"github.com/m04kA/SMC-SalonBooking/internal/service/bookinglinks/models"
)

const maxContactLength = 255

// Service сервис ссылок для записи без регистрации
type Service struct {
	linkRepo  LinkRepository
	salonRepo SalonRepository
	tokens    TokenGenerator
	logger    Logger
}

// NewService создает новый экземпляр сервиса ссылок
func NewService(linkRepo LinkRepository, salonRepo SalonRepository, logger Logger) *Service {
	return &Service{
		linkRepo:  linkRepo,
		salonRepo: salonRepo,
		tokens:    RandomTokens{},
		logger:    logger,
	}
}

// Create выпускает новую активную ссылку. Доступно только владельцу салона.
func (s *Service) Create(ctx context.Context, req *models.CreateLinkRequest) (*models.LinkResponse, error) {
	s.logger.Info("Create: creating booking link for salon=%d by user=%d", req.SalonID, req.UserID)

	if err := validateContact(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	if err := s.requireOwner(ctx, "Create", req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	link, err := s.linkRepo.Create(ctx, req.ToDomainLink(s.tokens.New()))
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created booking link id=%d for salon=%d", link.ID, req.SalonID)
	return models.FromDomainLink(link), nil
}

// Toggle переключает is_active ссылки. Привязка к клиенту сохраняется.
func (s *Service) Toggle(ctx context.Context, salonID, linkID, userID int64) (*models.LinkResponse, error) {
	s.logger.Info("Toggle: toggling booking link id=%d of salon=%d by user=%d", linkID, salonID, userID)

	if err := s.requireOwner(ctx, "Toggle", salonID, userID); err != nil {
		return nil, err
	}

	link, err := s.linkRepo.GetByID(ctx, salonID, linkID)
	if err != nil {
		if errors.Is(err, linkRepo.ErrLinkNotFound) {
			s.logger.Warn("Toggle: link id=%d not found in salon=%d", linkID, salonID)
			return nil, ErrLinkNotFound
		}
		s.logger.Error("Toggle: repository error for link id=%d: %v", linkID, err)
		return nil, fmt.Errorf("%w: Toggle - repository error: %v", ErrInternal, err)
	}

	if err := s.linkRepo.SetActive(ctx, link.ID, !link.IsActive); err != nil {
		if errors.Is(err, linkRepo.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		s.logger.Error("Toggle: failed to update link id=%d: %v", linkID, err)
		return nil, fmt.Errorf("%w: Toggle - failed to update link: %v", ErrInternal, err)
	}
	link.IsActive = !link.IsActive

	s.logger.Info("Toggle: booking link id=%d is_active=%t", linkID, link.IsActive)
	return models.FromDomainLink(link), nil
}

// Resolve возвращает публичные данные активной ссылки по токену
func (s *Service) Resolve(ctx context.Context, token uuid.UUID) (*models.PublicLinkResponse, error) {
	link, err := s.linkRepo.GetByToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, linkRepo.ErrLinkNotFound) {
			s.logger.Warn("Resolve: unknown booking link token")
			return nil, ErrLinkNotFound
		}
		s.logger.Error("Resolve: repository error: %v", err)
		return nil, fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
	}

	// отключенная ссылка для клиента не существует
	if !link.IsActive {
		s.logger.Warn("Resolve: booking link id=%d is inactive", link.ID)
		return nil, ErrLinkNotFound
	}

	return models.FromDomainPublicLink(link), nil
}

func (s *Service) requireOwner(ctx context.Context, op string, salonID, userID int64) error {
	salon, err := s.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			s.logger.Warn("%s: salon id=%d not found", op, salonID)
			return ErrSalonNotFound
		}
		s.logger.Error("%s: failed to get salon id=%d: %v", op, salonID, err)
		return fmt.Errorf("%w: %s - failed to get salon: %v", ErrInternal, op, err)
	}

	if !salon.IsOwnedBy(userID) {
		s.logger.Warn("%s: user=%d is not the owner of salon=%d", op, userID, salonID)
		return ErrAccessDenied
	}
	return nil
}

func validateContact(req *models.CreateLinkRequest) error {
	for _, field := range []*string{req.TempName, req.TempPhone, req.TempEmail} {
		if field == nil {
			continue
		}
		if strings.TrimSpace(*field) == "" {
			return fmt.Errorf("%w: contact fields must not be blank", ErrInvalidInput)
		}
		if len(*field) > maxContactLength {
			return fmt.Errorf("%w: contact fields must not exceed %d characters", ErrInvalidInput, maxContactLength)
		}
	}

	if req.TempEmail != nil {
		if _, err := mail.ParseAddress(*req.TempEmail); err != nil {
			return fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
	}

	return nil
}

