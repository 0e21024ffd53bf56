// Package patients manages the clinic's patient records and their
// attached files. File content lives in object storage; the API keeps
// metadata rows and hands out presigned URLs.
package patients

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient is a person treated by the clinic. Notes holds the free-text
// anamnesis the staff keeps per patient.
type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	BirthDate *string   `json:"birth_date,omitempty"` // YYYY-MM-DD
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertRequest is the payload for creating or updating a patient.
type UpsertRequest struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	BirthDate *string `json:"birth_date"`
	Notes     string  `json:"notes"`
}

// Validate checks the payload before any store call.
func (r *UpsertRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.BirthDate != nil {
		if _, err := time.Parse("2006-01-02", *r.BirthDate); err != nil {
			return ErrInvalidBirthDate
		}
	}
	return nil
}

// File is the metadata of one stored patient document.
type File struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type,omitempty"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileUploadRequest is the payload for registering a new patient file.
type FileUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// Validate checks the upload payload.
func (r *FileUploadRequest) Validate() error {
	name := strings.TrimSpace(r.FileName)
	if name == "" || strings.Contains(name, "/") {
		return ErrInvalidFileName
	}
	return nil
}
