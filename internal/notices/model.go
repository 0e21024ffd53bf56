// Package notices manages the staff's dated reminders shown on the
// dashboard, each with an open/completed flag.
package notices

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidText rejects a blank notice.
	ErrInvalidText = errors.New("notices: text is required")
	// ErrInvalidDate rejects a malformed date.
	ErrInvalidDate = errors.New("notices: date must be YYYY-MM-DD")
	// ErrNoticeNotFound is returned when no notice matches the id.
	ErrNoticeNotFound = errors.New("notices: notice not found")
)

// Notice is one dated reminder.
type Notice struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertRequest is the payload for creating or updating a notice.
type UpsertRequest struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// Validate checks the payload before any store call.
func (r *UpsertRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrInvalidText
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
