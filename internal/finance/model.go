// Package finance keeps the clinic's income and expense ledgers and the
// monthly summary feeding the financial dashboard.
package finance

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidValue rejects a non-positive amount.
	ErrInvalidValue = errors.New("finance: value must be positive")
	// ErrInvalidDate rejects a malformed date.
	ErrInvalidDate = errors.New("finance: date must be YYYY-MM-DD")
	// ErrInvalidDescription rejects a blank description.
	ErrInvalidDescription = errors.New("finance: description is required")
	// ErrEntryNotFound is returned when no ledger entry matches the id.
	ErrEntryNotFound = errors.New("finance: entry not found")
)

// IncomeEntry is one payment received by the clinic.
type IncomeEntry struct {
	ID            uuid.UUID `json:"id"`
	PatientName   string    `json:"patient_name"`
	Procedure     string    `json:"procedure"`
	ValueCents    int64     `json:"value_cents"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IncomeRequest is the payload for creating or updating an income entry.
type IncomeRequest struct {
	PatientName   string `json:"patient_name"`
	Procedure     string `json:"procedure"`
	ValueCents    int64  `json:"value_cents"`
	PaymentMethod string `json:"payment_method"`
	Date          string `json:"date"`
	Notes         string `json:"notes"`
}

// Validate checks the payload before any store call.
func (r *IncomeRequest) Validate() error {
	if strings.TrimSpace(r.PatientName) == "" || strings.TrimSpace(r.Procedure) == "" {
		return ErrInvalidDescription
	}
	if r.ValueCents <= 0 {
		return ErrInvalidValue
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ExpenseEntry is one cost paid by the clinic.
type ExpenseEntry struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ValueCents  int64     `json:"value_cents"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseRequest is the payload for creating or updating an expense entry.
type ExpenseRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	ValueCents  int64  `json:"value_cents"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
}

// Validate checks the payload before any store call.
func (r *ExpenseRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrInvalidDescription
	}
	if r.ValueCents <= 0 {
		return ErrInvalidValue
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
