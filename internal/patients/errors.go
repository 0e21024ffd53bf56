package patients

import "errors"

var (
	// ErrInvalidName rejects a blank patient name.
	ErrInvalidName = errors.New("patients: name is required")
	// ErrInvalidBirthDate rejects a malformed birth date.
	ErrInvalidBirthDate = errors.New("patients: birth date must be YYYY-MM-DD")
	// ErrPatientNotFound is returned when no patient matches the id.
	ErrPatientNotFound = errors.New("patients: patient not found")
	// ErrInvalidFileName rejects a blank or path-like file name.
	ErrInvalidFileName = errors.New("patients: invalid file name")
	// ErrFileNotFound is returned when no file matches the id.
	ErrFileNotFound = errors.New("patients: file not found")
	// ErrFilesDisabled is returned when no object storage is configured.
	ErrFilesDisabled = errors.New("patients: file storage not configured")
)
