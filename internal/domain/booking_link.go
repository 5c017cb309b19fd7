package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFeeAlreadyPaid   = errors.New("domain: cancellation fee already paid")
	ErrLinkInactive     = errors.New("domain: booking link is inactive")
	ErrLinkBoundToOther = errors.New("domain: booking link is bound to another client")
)

// BookingLink is a capability token that lets a non-registered client book at one salon
type BookingLink struct {
	ID       int64
	Token    uuid.UUID
	SalonID  int64
	ClientID *int64 // nil until the first booking through the link

	// Temporary contact data, used to resolve the client on first use
	TempName  *string
	TempPhone *string
	TempEmail *string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBound returns true once the link belongs to a client
func (l *BookingLink) IsBound() bool {
	return l.ClientID != nil
}

// Bind attaches the link to clientID on first use. Binding to the same client again is a no-op.
func (l *BookingLink) Bind(clientID int64) error {
	if !l.IsActive {
		return ErrLinkInactive
	}
	if l.ClientID != nil {
		if *l.ClientID != clientID {
			return ErrLinkBoundToOther
		}
		return nil
	}
	l.ClientID = &clientID
	return nil
}
