package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	linkRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/bookinglink"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// Links in-memory аналог bookinglink.Repository
type Links struct {
	store *Store
}

func (s *Store) Links() *Links {
	return &Links{store: s}
}

func (r *Links) Create(_ context.Context, link *domain.BookingLink) (*domain.BookingLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	link.ID = r.store.id()
	link.CreatedAt = time.Now()
	link.UpdatedAt = link.CreatedAt
	cp := *link
	r.store.links[link.ID] = &cp
	return link, nil
}

func (r *Links) GetByToken(_ context.Context, _ *txmanager.Scope, token uuid.UUID) (*domain.BookingLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, link := range r.store.links {
		if link.Token == token {
			cp := *link
			return &cp, nil
		}
	}
	return nil, linkRepo.ErrLinkNotFound
}

func (r *Links) GetByID(_ context.Context, salonID, id int64) (*domain.BookingLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	link, ok := r.store.links[id]
	if !ok || link.SalonID != salonID {
		return nil, linkRepo.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (r *Links) SetActive(_ context.Context, id int64, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	link, ok := r.store.links[id]
	if !ok {
		return linkRepo.ErrLinkNotFound
	}
	link.IsActive = active
	return nil
}

func (r *Links) BindClient(_ context.Context, _ *txmanager.Scope, id, clientID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	link, ok := r.store.links[id]
	if !ok {
		return linkRepo.ErrAlreadyBound
	}
	if link.ClientID != nil && *link.ClientID != clientID {
		return linkRepo.ErrAlreadyBound
	}
	link.ClientID = &clientID
	return nil
}
