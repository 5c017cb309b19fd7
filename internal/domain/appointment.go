package domain

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusNoShow      AppointmentStatus = "no_show"
)

// IsValid returns true for a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusConfirmed, StatusRescheduled,
		StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

var (
	ErrInvalidTransition = errors.New("domain: invalid appointment status transition")
	ErrAlreadyStarted    = errors.New("domain: appointment has already started")
	ErrNoProposal        = errors.New("domain: appointment has no reschedule proposal")
)

// Appointment represents a booked slot of a service at a salon
type Appointment struct {
	ID         int64
	ClientID   int64
	SalonID    int64
	ServiceID  int64
	EmployeeID *int64

	Date   time.Time        // calendar date of the slot start
	Time   types.TimeString // wall-clock slot start in the salon's zone
	Status AppointmentStatus
	Notes  *string

	// Reschedule proposal, set only while Status == StatusRescheduled
	RescheduledDate  *time.Time
	RescheduledTime  *types.TimeString
	RescheduleReason *string

	BookingLinkID *int64

	// ServiceDuration is read live from the service, appointments do not snapshot it
	ServiceDuration int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Start returns the aware slot start in loc
func (a *Appointment) Start(loc *time.Location) time.Time {
	return CombineDateTime(a.Date, a.Time, loc)
}

// End returns the aware slot end in loc
func (a *Appointment) End(loc *time.Location) time.Time {
	return ComputeEnd(a.Start(loc), a.ServiceDuration)
}

// IsActive returns true if the appointment counts toward conflict detection
func (a *Appointment) IsActive() bool {
	for _, s := range ActiveStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// HasProposal returns true when a reschedule proposal is pending
func (a *Appointment) HasProposal() bool {
	return a.RescheduledDate != nil && a.RescheduledTime != nil
}

// Confirm: scheduled -> confirmed
func (a *Appointment) Confirm() error {
	return a.transition(ActionConfirm, StatusConfirmed)
}

// ProposeReschedule: {scheduled, confirmed} -> rescheduled.
// The canonical date and time stay untouched until the client responds.
func (a *Appointment) ProposeReschedule(date time.Time, t types.TimeString, reason *string) error {
	if err := a.transition(ActionProposeReschedule, StatusRescheduled); err != nil {
		return err
	}
	d := DateOnly(date)
	a.RescheduledDate = &d
	a.RescheduledTime = &t
	a.RescheduleReason = reason
	return nil
}

// AcceptReschedule: rescheduled -> confirmed, the proposal becomes the canonical slot
func (a *Appointment) AcceptReschedule() error {
	if !ValidTransition(ActionAcceptReschedule, a.Status) {
		return ErrInvalidTransition
	}
	if !a.HasProposal() {
		return ErrNoProposal
	}
	a.Date = *a.RescheduledDate
	a.Time = *a.RescheduledTime
	a.Status = StatusConfirmed
	a.clearProposal()
	return nil
}

// RejectReschedule: rescheduled -> cancelled, never charged
func (a *Appointment) RejectReschedule() error {
	if err := a.transition(ActionRejectReschedule, StatusCancelled); err != nil {
		return err
	}
	a.clearProposal()
	return nil
}

// Cancel: {pending, scheduled, confirmed} -> cancelled while the slot start is still ahead of now
func (a *Appointment) Cancel(now time.Time, loc *time.Location) error {
	if !ValidTransition(ActionCancel, a.Status) {
		return ErrInvalidTransition
	}
	if !a.Start(loc).After(now) {
		return ErrAlreadyStarted
	}
	a.Status = StatusCancelled
	return nil
}

// Complete: {scheduled, confirmed} -> completed
func (a *Appointment) Complete() error {
	return a.transition(ActionComplete, StatusCompleted)
}

// MarkNoShow: {scheduled, confirmed} -> no_show
func (a *Appointment) MarkNoShow() error {
	return a.transition(ActionNoShow, StatusNoShow)
}

func (a *Appointment) transition(action Action, to AppointmentStatus) error {
	if !ValidTransition(action, a.Status) {
		return ErrInvalidTransition
	}
	a.Status = to
	return nil
}

func (a *Appointment) clearProposal() {
	a.RescheduledDate = nil
	a.RescheduledTime = nil
	a.RescheduleReason = nil
}

// SalonAppointmentsFilter narrows a salon appointment listing
type SalonAppointmentsFilter struct {
	SalonID    int64
	EmployeeID *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *AppointmentStatus
}
