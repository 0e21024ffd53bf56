package procedures

import "errors"

var (
	// ErrInvalidName is returned when the procedure name is empty.
	ErrInvalidName = errors.New("procedure name is required")

	// ErrInvalidPrice is returned for negative reference prices.
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrInvalidDuration is returned for non-positive default durations.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrInvalidReturnDays is returned for non-positive return intervals.
	ErrInvalidReturnDays = errors.New("return interval must be positive")

	// ErrProcedureNotFound is returned when a procedure does not exist.
	ErrProcedureNotFound = errors.New("procedure not found")
)
