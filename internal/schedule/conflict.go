package schedule

import "github.com/google/uuid"

// HasConflict reports whether a candidate slot collides with any existing
// appointment on the same date. Appointments on other dates and the row
// identified by excludeID (the appointment being edited) are ignored.
//
// When both sides have a known duration the check is strict interval
// overlap on [start, start+duration). When either side has no duration
// only exact start-time equality counts as a conflict.
func HasConflict(date, startTime string, durationMin *int, existing []Appointment, excludeID uuid.UUID) bool {
	start, err := ParseMinutes(startTime)
	if err != nil {
		return false
	}

	for i := range existing {
		other := &existing[i]
		if other.Date != date || other.ID == excludeID {
			continue
		}
		otherStart, err := ParseMinutes(other.StartTime)
		if err != nil {
			continue
		}
		if durationMin == nil || other.DurationMin == nil {
			if start == otherStart {
				return true
			}
			continue
		}
		if overlaps(start, start+*durationMin, otherStart, otherStart+*other.DurationMin) {
			return true
		}
	}
	return false
}
