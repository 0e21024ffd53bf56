package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/internal/procedures"
)

// Planner computes automatic return visits from an origin appointment and
// the procedure catalog.
type Planner struct {
	// ClosedWeekday is the clinic's weekly closing day. A return landing
	// on it is shifted forward one day.
	ClosedWeekday time.Weekday
}

// NewPlanner creates a planner. The clinic closes on Sundays unless
// configured otherwise.
func NewPlanner(closedWeekday time.Weekday) *Planner {
	return &Planner{ClosedWeekday: closedWeekday}
}

// ReturnInterval picks the interval to use for an appointment's follow-up:
// the smallest configured "days until return" among its procedures.
// Returns false when no procedure configures one.
func ReturnInterval(procedureIDs []uuid.UUID, catalog []procedures.Procedure) (int, bool) {
	byID := make(map[uuid.UUID]procedures.Procedure, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	best := 0
	found := false
	for _, id := range procedureIDs {
		p, ok := byID[id]
		if !ok || p.ReturnDays == nil {
			continue
		}
		if !found || *p.ReturnDays < best {
			best = *p.ReturnDays
			found = true
		}
	}
	return best, found
}

// NextDate computes the follow-up date: origin date plus the interval,
// shifted forward one day if it lands on the closed weekday.
func (p *Planner) NextDate(originDate string, days int) (string, error) {
	candidate, err := AddDays(originDate, days)
	if err != nil {
		return "", err
	}
	wd, err := WeekdayOf(candidate)
	if err != nil {
		return "", err
	}
	if wd == p.ClosedWeekday {
		return AddDays(candidate, 1)
	}
	return candidate, nil
}

// PlanReturn builds the draft follow-up appointment for an origin. It
// returns nil when none of the origin's procedures configures a return
// interval. The draft keeps the origin's patient, procedure set, time and
// duration, and is linked back through OriginID.
//
// The caller decides what to do with a conflicting draft: automatic
// returns are persisted even when they collide, with a warning, because
// dropping a clinically relevant follow-up is worse than a double booking
// the staff can untangle.
func (p *Planner) PlanReturn(origin *Appointment, catalog []procedures.Procedure) (*Appointment, error) {
	days, ok := ReturnInterval(origin.ProcedureIDs, catalog)
	if !ok {
		return nil, nil
	}

	date, err := p.NextDate(origin.Date, days)
	if err != nil {
		return nil, err
	}

	originID := origin.ID
	draft := &Appointment{
		ID:           uuid.New(),
		PatientID:    origin.PatientID,
		PatientName:  origin.PatientName,
		ProcedureIDs: append([]uuid.UUID(nil), origin.ProcedureIDs...),
		Date:         date,
		StartTime:    origin.StartTime,
		Status:       StatusPendingReturn,
		OriginID:     &originID,
	}
	if origin.DurationMin != nil {
		d := *origin.DurationMin
		draft.DurationMin = &d
	}
	return draft, nil
}
