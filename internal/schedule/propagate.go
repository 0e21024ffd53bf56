package schedule

import (
	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/internal/procedures"
)

// DependentUpdate is one pending return that must follow an edit to its
// origin appointment.
type DependentUpdate struct {
	AppointmentID uuid.UUID
	Update        AppointmentUpdate
}

// PropagateEdit computes the updates to apply to the pending returns of an
// edited appointment. origin must already reflect the edit; dependents are
// the appointments linked to it through OriginID that are still pending.
//
// Patient, procedure-set, time and duration changes are carried over
// verbatim. A date change does not shift the dependent by the same delta:
// its date is recomputed from the new origin date and the procedure
// catalog's return interval, including the closed-weekday shift. Confirmed
// returns are never touched.
func (p *Planner) PropagateEdit(origin *Appointment, edit *AppointmentUpdate, dependents []Appointment, catalog []procedures.Procedure) ([]DependentUpdate, error) {
	if len(dependents) == 0 {
		return nil, nil
	}

	var newDate *string
	if edit.Date != nil {
		days, ok := ReturnInterval(origin.ProcedureIDs, catalog)
		if ok {
			date, err := p.NextDate(origin.Date, days)
			if err != nil {
				return nil, err
			}
			newDate = &date
		}
	}

	updates := make([]DependentUpdate, 0, len(dependents))
	for i := range dependents {
		dep := &dependents[i]
		if dep.Status != StatusPendingReturn {
			continue
		}
		u := AppointmentUpdate{
			PatientID:     edit.PatientID,
			PatientName:   edit.PatientName,
			ProcedureIDs:  edit.ProcedureIDs,
			StartTime:     edit.StartTime,
			DurationMin:   edit.DurationMin,
			ClearDuration: edit.ClearDuration,
			Date:          newDate,
		}
		if isNoop(&u) {
			continue
		}
		updates = append(updates, DependentUpdate{AppointmentID: dep.ID, Update: u})
	}
	return updates, nil
}

func isNoop(u *AppointmentUpdate) bool {
	return u.PatientID == nil && u.PatientName == nil && u.ProcedureIDs == nil &&
		u.Date == nil && u.StartTime == nil && u.DurationMin == nil && !u.ClearDuration
}
