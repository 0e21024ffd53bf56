package schedule

import "errors"

var (
	// ErrMissingPatient is returned when a booking has no patient.
	ErrMissingPatient = errors.New("patient is required")

	// ErrMissingProcedure is returned when a booking has no procedures.
	ErrMissingProcedure = errors.New("at least one procedure is required")

	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime is returned for times not in HH:MM form.
	ErrInvalidTime = errors.New("invalid start time")

	// ErrInvalidDuration is returned for non-positive durations.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrConflict is returned when a booking or edit overlaps an existing
	// appointment on the same day.
	ErrConflict = errors.New("scheduling conflict")

	// ErrAppointmentNotFound is returned when an appointment does not exist.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrNotPendingReturn is returned when confirming or rejecting an
	// appointment that is not a pending automatic return.
	ErrNotPendingReturn = errors.New("appointment is not a pending return")
)
