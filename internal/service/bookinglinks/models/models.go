package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// CreateLinkRequest запрос на создание ссылки владельцем салона
type CreateLinkRequest struct {
	UserID    int64
	SalonID   int64
	TempName  *string `json:"name,omitempty"`
	TempPhone *string `json:"phone,omitempty"`
	TempEmail *string `json:"email,omitempty"`
}

// ToDomainLink конвертирует запрос в domain модель
func (r *CreateLinkRequest) ToDomainLink(token uuid.UUID) *domain.BookingLink {
	return &domain.BookingLink{
		Token:     token,
		SalonID:   r.SalonID,
		TempName:  r.TempName,
		TempPhone: r.TempPhone,
		TempEmail: r.TempEmail,
		IsActive:  true,
	}
}

// LinkResponse ссылка для владельца салона
type LinkResponse struct {
	ID        int64     `json:"id"`
	Token     uuid.UUID `json:"token"`
	SalonID   int64     `json:"salonId"`
	ClientID  *int64    `json:"clientId,omitempty"`
	TempName  *string   `json:"name,omitempty"`
	TempPhone *string   `json:"phone,omitempty"`
	TempEmail *string   `json:"email,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicLinkResponse то, что видит клиент по токену
type PublicLinkResponse struct {
	SalonID  int64   `json:"salonId"`
	TempName *string `json:"name,omitempty"`
	IsBound  bool    `json:"isBound"`
}

// FromDomainLink конвертирует domain модель в DTO
func FromDomainLink(l *domain.BookingLink) *LinkResponse {
	if l == nil {
		return nil
	}

	return &LinkResponse{
		ID:        l.ID,
		Token:     l.Token,
		SalonID:   l.SalonID,
		ClientID:  l.ClientID,
		TempName:  l.TempName,
		TempPhone: l.TempPhone,
		TempEmail: l.TempEmail,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// FromDomainPublicLink конвертирует domain модель в публичный DTO
func FromDomainPublicLink(l *domain.BookingLink) *PublicLinkResponse {
	return &PublicLinkResponse{
		SalonID:  l.SalonID,
		TempName: l.TempName,
		IsBound:  l.IsBound(),
	}
}
