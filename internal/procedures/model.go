// Package procedures manages the clinic's procedure catalog: names,
// reference prices, default durations and return-visit intervals.
package procedures

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Procedure is a bookable treatment offered by the clinic.
type Procedure struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PriceCents  *int64    `json:"price_cents,omitempty"`
	DurationMin *int      `json:"duration_minutes,omitempty"`
	// ReturnDays is the configured "days until return" interval. Nil means
	// the procedure has no automatic follow-up.
	ReturnDays *int      `json:"return_days,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpsertRequest is the payload for creating or updating a procedure.
type UpsertRequest struct {
	Name        string `json:"name"`
	PriceCents  *int64 `json:"price_cents"`
	DurationMin *int   `json:"duration_minutes"`
	ReturnDays  *int   `json:"return_days"`
}

// Validate checks the payload before any store call.
func (r *UpsertRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.PriceCents != nil && *r.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if r.DurationMin != nil && *r.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	if r.ReturnDays != nil && *r.ReturnDays <= 0 {
		return ErrInvalidReturnDays
	}
	return nil
}
