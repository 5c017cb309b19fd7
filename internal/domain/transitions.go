package domain

// Action is a lifecycle operation applied to an appointment
type Action string

const (
	ActionConfirm           Action = "confirm"
	ActionProposeReschedule Action = "propose_reschedule"
	ActionAcceptReschedule  Action = "accept_reschedule"
	ActionRejectReschedule  Action = "reject_reschedule"
	ActionCancel            Action = "cancel"
	ActionComplete          Action = "complete"
	ActionNoShow            Action = "no_show"
)

var transitionMap = map[Action][]AppointmentStatus{
	ActionConfirm:           {StatusScheduled},
	ActionProposeReschedule: {StatusScheduled, StatusConfirmed},
	ActionAcceptReschedule:  {StatusRescheduled},
	ActionRejectReschedule:  {StatusRescheduled},
	ActionCancel:            {StatusPending, StatusScheduled, StatusConfirmed},
	ActionComplete:          {StatusScheduled, StatusConfirmed},
	ActionNoShow:            {StatusScheduled, StatusConfirmed},
}

// ValidTransition reports whether action may be applied to an appointment in status from
func ValidTransition(action Action, from AppointmentStatus) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}
