package domain

// Scheduling defaults
const (
	DefaultSlotStepMinutes = 30
	DefaultTimezone        = "America/Sao_Paulo"
)

// Business validation constants
const (
	MaxNotesLength            = 500
	MaxRescheduleReasonLength = 500
	MaxClosureNoteLength      = 500
	MaxFeePercentage          = 100
)

// Time format constants
const (
	TimeFormat        = "15:04"      // HH:MM
	DateFormat        = "2006-01-02" // YYYY-MM-DD
	DisplayDateFormat = "02/01/2006 15:04"
)

// ActiveStatuses статусы, которые учитываются при поиске конфликтов
var ActiveStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
}

// ActiveStatusStrings то же, что ActiveStatuses, в виде строк для SQL фильтров
func ActiveStatusStrings() []string {
	result := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		result[i] = string(s)
	}
	return result
}
