package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// dayGrid входные данные для расчета слотов одного дня
type dayGrid struct {
	salon    *domain.Salon
	service  *domain.Service
	date     time.Time
	loc      *time.Location
	step     int
	now      time.Time
	employee *domain.Employee   // выбранный сотрудник, nil = любой
	staff    []*domain.Employee // квалифицированные сотрудники в порядке выдачи
	dayAppts []*domain.Appointment
}

// candidateStarts перебирает начала слотов от открытия с шагом step.
// Слот должен целиком помещаться до закрытия и начинаться строго после now.
func candidateStarts(salon *domain.Salon, date time.Time, loc *time.Location, duration, step int, now time.Time) []time.Time {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	open, close, ok := salon.WorkingHours(domain.WeekdayIndex(dayStart))
	if !ok || step <= 0 {
		return nil
	}

	openAt := domain.CombineDateTime(date, open, loc)
	closeAt := domain.CombineDateTime(date, close, loc)

	result := make([]time.Time, 0)
	for candidate := openAt; !candidate.After(closeAt); candidate = candidate.Add(time.Duration(step) * time.Minute) {
		end := domain.ComputeEnd(candidate, duration)
		if end.After(closeAt) {
			break
		}
		if !candidate.After(now) {
			continue
		}
		// временное закрытие может покрывать часть дня
		if isOpen, _ := salon.IsOpenFor(candidate, end); !isOpen {
			continue
		}
		result = append(result, candidate)
	}
	return result
}

// availableSlots оставляет кандидатов, на которые есть свободный сотрудник
func availableSlots(g dayGrid) []types.TimeString {
	result := make([]types.TimeString, 0)

	for _, start := range candidateStarts(g.salon, g.date, g.loc, g.service.DurationMinutes, g.step, g.now) {
		end := domain.ComputeEnd(start, g.service.DurationMinutes)

		if g.employee != nil {
			if g.employee.CanPerform(g.service.ID) && validator.EmployeeFree(g.dayAppts, g.employee.ID, start, end, nil) {
				result = append(result, types.NewTimeString(start))
			}
			continue
		}

		if validator.FirstFreeEmployee(g.staff, g.dayAppts, g.service.ID, start, end, nil) != nil {
			result = append(result, types.NewTimeString(start))
		}
	}

	return result
}
