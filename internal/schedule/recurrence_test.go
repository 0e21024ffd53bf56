package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enzononato/adna-harmony-suite/internal/procedures"
)

func catalogWith(intervals ...*int) ([]procedures.Procedure, []uuid.UUID) {
	procs := make([]procedures.Procedure, 0, len(intervals))
	ids := make([]uuid.UUID, 0, len(intervals))
	for _, days := range intervals {
		p := procedures.Procedure{ID: uuid.New(), Name: "proc", ReturnDays: days}
		procs = append(procs, p)
		ids = append(ids, p.ID)
	}
	return procs, ids
}

func TestReturnIntervalPicksSmallest(t *testing.T) {
	procs, ids := catalogWith(intPtr(30), intPtr(15), nil)

	days, ok := ReturnInterval(ids, procs)
	require.True(t, ok, "expected an interval")
	assert.Equal(t, 15, days, "smallest interval wins")
}

func TestReturnIntervalNoneConfigured(t *testing.T) {
	procs, ids := catalogWith(nil, nil)
	_, ok := ReturnInterval(ids, procs)
	assert.False(t, ok, "no interval when none configured")
}

func TestNextDateShiftsOffClosedWeekday(t *testing.T) {
	planner := NewPlanner(time.Sunday)

	// 2025-06-28 is a Saturday; +1 lands on Sunday, shifted to Monday.
	date, err := planner.NextDate("2025-06-28", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30", date)

	// A weekday landing needs no shift.
	date, err = planner.NextDate("2025-06-28", 3)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", date)
}

func TestPlanReturnBuildsDraft(t *testing.T) {
	planner := NewPlanner(time.Sunday)
	procs, ids := catalogWith(intPtr(15))

	origin := &Appointment{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		PatientName:  "Ana Paula Souza",
		ProcedureIDs: ids,
		Date:         "2025-07-01",
		StartTime:    "09:30",
		DurationMin:  intPtr(45),
		Notes:        "first session",
		Status:       StatusNormal,
	}

	draft, err := planner.PlanReturn(origin, procs)
	require.NoError(t, err)
	require.NotNil(t, draft)

	assert.Equal(t, "2025-07-16", draft.Date)
	assert.Equal(t, StatusPendingReturn, draft.Status)
	require.NotNil(t, draft.OriginID, "draft must link back to its origin")
	assert.Equal(t, origin.ID, *draft.OriginID)
	assert.Equal(t, origin.PatientID, draft.PatientID)
	assert.Equal(t, origin.PatientName, draft.PatientName)
	assert.Equal(t, "09:30", draft.StartTime)
	require.NotNil(t, draft.DurationMin)
	assert.Equal(t, 45, *draft.DurationMin)
	assert.Empty(t, draft.Notes, "draft must not inherit free-text notes")
	assert.Equal(t, ids, draft.ProcedureIDs)

	// Mutating the draft's slice must not touch the origin.
	want := origin.ProcedureIDs[0]
	draft.ProcedureIDs[0] = uuid.New()
	assert.Equal(t, want, origin.ProcedureIDs[0], "draft procedure slice aliases the origin")
}

func TestPlanReturnDeterministic(t *testing.T) {
	planner := NewPlanner(time.Sunday)
	procs, ids := catalogWith(intPtr(10))
	origin := &Appointment{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		PatientName:  "Carla Mendes",
		ProcedureIDs: ids,
		Date:         "2025-07-05",
		StartTime:    "11:00",
	}

	first, err := planner.PlanReturn(origin, procs)
	require.NoError(t, err)
	second, err := planner.PlanReturn(origin, procs)
	require.NoError(t, err)

	assert.Equal(t, first.Date, second.Date)
	assert.Equal(t, first.StartTime, second.StartTime)
}

func TestPlanReturnNilWithoutInterval(t *testing.T) {
	planner := NewPlanner(time.Sunday)
	procs, ids := catalogWith(nil)
	origin := &Appointment{ID: uuid.New(), ProcedureIDs: ids, Date: "2025-07-01", StartTime: "09:00"}

	draft, err := planner.PlanReturn(origin, procs)
	require.NoError(t, err)
	assert.Nil(t, draft, "no draft when no procedure configures a return")
}
