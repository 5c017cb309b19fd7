package validator

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// FindConflict returns the first appointment in appts that overlaps [start, end),
// skipping excludeID. appts are interpreted in start's location.
func FindConflict(appts []*domain.Appointment, start, end time.Time, excludeID *int64) *domain.Appointment {
	loc := start.Location()
	for _, a := range appts {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if !a.IsActive() {
			continue
		}
		if domain.Overlaps(start, end, a.Start(loc), a.End(loc)) {
			return a
		}
	}
	return nil
}

// EmployeeFree reports whether employeeID has no overlapping appointment among dayAppts
func EmployeeFree(dayAppts []*domain.Appointment, employeeID int64, start, end time.Time, excludeID *int64) bool {
	return FindConflict(filterByEmployee(dayAppts, employeeID), start, end, excludeID) == nil
}

// FirstFreeEmployee returns the first employee, in the given order, who can perform
// serviceID and is free during [start, end). First match wins, there is no load balancing.
func FirstFreeEmployee(employees []*domain.Employee, dayAppts []*domain.Appointment, serviceID int64, start, end time.Time, excludeID *int64) *domain.Employee {
	for _, e := range employees {
		if !e.CanPerform(serviceID) {
			continue
		}
		if EmployeeFree(dayAppts, e.ID, start, end, excludeID) {
			return e
		}
	}
	return nil
}

func filterByEmployee(appts []*domain.Appointment, employeeID int64) []*domain.Appointment {
	result := make([]*domain.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.EmployeeID != nil && *a.EmployeeID == employeeID {
			result = append(result, a)
		}
	}
	return result
}
