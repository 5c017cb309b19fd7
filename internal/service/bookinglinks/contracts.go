package bookinglinks

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// LinkRepository интерфейс репозитория ссылок для записи
type LinkRepository interface {
	Create(ctx context.Context, link *domain.BookingLink) (*domain.BookingLink, error)
	GetByToken(ctx context.Context, scope *txmanager.Scope, token uuid.UUID) (*domain.BookingLink, error)
	GetByID(ctx context.Context, salonID, id int64) (*domain.BookingLink, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// SalonRepository интерфейс репозитория салонов (проверка владельца)
type SalonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Salon, error)
}

// TokenGenerator генератор токенов ссылок
type TokenGenerator interface {
	New() uuid.UUID
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RandomTokens генератор случайных UUID v4 для production
type RandomTokens struct{}

// New возвращает новый токен
func (RandomTokens) New() uuid.UUID {
	return uuid.New()
}
