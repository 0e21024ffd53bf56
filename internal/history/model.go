// Package history maintains the treatment history: a denormalized record
// of every procedure a patient has actually received. Entries are synced
// from past-dated appointments and survive edits to the agenda.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one performed procedure on one date for one patient.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	// Procedure is the procedure name captured at sync time. Renaming the
	// catalog entry later does not rewrite history.
	Procedure string    `json:"procedure"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
