// Package schedule implements the clinic's appointment book: bookings with
// same-day conflict detection, automatic return-visit planning with a
// confirm/reject workflow, and propagation of edits to pending returns.
package schedule

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReturnStatus tracks where an appointment sits in the return-visit workflow.
type ReturnStatus string

const (
	// StatusNormal is an ordinary booking made by staff.
	StatusNormal ReturnStatus = "normal"
	// StatusPendingReturn is an auto-generated follow-up awaiting confirmation.
	StatusPendingReturn ReturnStatus = "pending_return"
	// StatusConfirmedReturn is a follow-up the staff has acknowledged. A
	// confirmed return never re-enters pending.
	StatusConfirmedReturn ReturnStatus = "confirmed_return"
)

// Appointment is a single entry in the clinic's agenda.
type Appointment struct {
	ID           uuid.UUID    `json:"id"`
	PatientID    uuid.UUID    `json:"patient_id"`
	PatientName  string       `json:"patient_name"`
	ProcedureIDs []uuid.UUID  `json:"procedure_ids"`
	Date         string       `json:"date"`       // YYYY-MM-DD, clinic-local
	StartTime    string       `json:"start_time"` // HH:MM, clinic-local
	DurationMin  *int         `json:"duration_minutes,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	Status       ReturnStatus `json:"status"`
	// OriginID links an auto-generated return to the appointment that
	// spawned it. Nil for ordinary bookings.
	OriginID  *uuid.UUID `json:"origin_appointment_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BookingRequest is the payload for creating an appointment.
type BookingRequest struct {
	PatientID    uuid.UUID   `json:"patient_id"`
	PatientName  string      `json:"patient_name"`
	ProcedureIDs []uuid.UUID `json:"procedure_ids"`
	Date         string      `json:"date"`
	StartTime    string      `json:"start_time"`
	DurationMin  *int        `json:"duration_minutes"`
	Notes        string      `json:"notes"`
}

// Validate checks a booking request before any store call is made.
func (r *BookingRequest) Validate() error {
	if r.PatientID == uuid.Nil || strings.TrimSpace(r.PatientName) == "" {
		return ErrMissingPatient
	}
	if len(r.ProcedureIDs) == 0 {
		return ErrMissingProcedure
	}
	if _, err := ParseDate(r.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := ParseMinutes(r.StartTime); err != nil {
		return ErrInvalidTime
	}
	if r.DurationMin != nil && *r.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// AppointmentUpdate carries the edited fields of an appointment. Nil
// pointers mean "unchanged"; ClearDuration removes the duration entirely.
type AppointmentUpdate struct {
	PatientID     *uuid.UUID  `json:"patient_id"`
	PatientName   *string     `json:"patient_name"`
	ProcedureIDs  []uuid.UUID `json:"procedure_ids"`
	Date          *string     `json:"date"`
	StartTime     *string     `json:"start_time"`
	DurationMin   *int        `json:"duration_minutes"`
	ClearDuration bool        `json:"clear_duration"`
	Notes         *string     `json:"notes"`
}

// Validate checks the update payload.
func (u *AppointmentUpdate) Validate() error {
	if u.PatientName != nil && strings.TrimSpace(*u.PatientName) == "" {
		return ErrMissingPatient
	}
	if u.ProcedureIDs != nil && len(u.ProcedureIDs) == 0 {
		return ErrMissingProcedure
	}
	if u.Date != nil {
		if _, err := ParseDate(*u.Date); err != nil {
			return ErrInvalidDate
		}
	}
	if u.StartTime != nil {
		if _, err := ParseMinutes(*u.StartTime); err != nil {
			return ErrInvalidTime
		}
	}
	if u.DurationMin != nil && *u.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// apply folds the update into an appointment value.
func (u *AppointmentUpdate) apply(a *Appointment) {
	if u.PatientID != nil {
		a.PatientID = *u.PatientID
	}
	if u.PatientName != nil {
		a.PatientName = *u.PatientName
	}
	if u.ProcedureIDs != nil {
		a.ProcedureIDs = u.ProcedureIDs
	}
	if u.Date != nil {
		a.Date = *u.Date
	}
	if u.StartTime != nil {
		a.StartTime = *u.StartTime
	}
	if u.ClearDuration {
		a.DurationMin = nil
	} else if u.DurationMin != nil {
		d := *u.DurationMin
		a.DurationMin = &d
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
}
