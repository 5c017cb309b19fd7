package domain

// RejectionCode classifies an expected booking rejection
type RejectionCode string

const (
	RejectPastTime            RejectionCode = "past_time"
	RejectSalonClosed         RejectionCode = "salon_closed"
	RejectServiceInactive     RejectionCode = "service_inactive"
	RejectEmployeeInactive    RejectionCode = "employee_inactive"
	RejectEmployeeUnqualified RejectionCode = "employee_unqualified"
	RejectEmployeeBusy        RejectionCode = "employee_busy"
	RejectNoEmployee          RejectionCode = "no_employee"
	RejectClientConflict      RejectionCode = "client_conflict"
	RejectSlotTaken           RejectionCode = "slot_taken"
	RejectUnpaidFees          RejectionCode = "unpaid_fees"
)

// Messages shared by the validator and the storage backstop
const (
	MsgPastTime            = "cannot book a time in the past"
	MsgServiceInactive     = "this service is no longer available"
	MsgEmployeeInactive    = "employee is not active"
	MsgEmployeeUnqualified = "employee is not qualified for this service"
	MsgNoEmployee          = "no employee available for this time and service"
	MsgSlotTaken           = "this time slot is already taken"
)
