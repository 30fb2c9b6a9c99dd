package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition errors, raised as panics by the design model
	ErrPreconditionViolated = errors.New("precondition violated")
	ErrInvalidCandidates    = fmt.Errorf("%w: invalid candidate list", ErrPreconditionViolated)
	ErrInvalidConstants     = fmt.Errorf("%w: invalid experiment constants", ErrPreconditionViolated)

	// Roster configuration errors
	ErrInvalidRoster = errors.New("invalid stimulus roster")

	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrInputNotFound = fmt.Errorf("%w: input", ErrNotFound)

	// Export errors
	ErrEmptyExport     = errors.New("export contains no participants")
	ErrMalformedExport = errors.New("malformed participant export")
)

// NewConstantsError builds an error for an out-of-range experiment constant
func NewConstantsError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConstants, field, reason)
}

// NewCandidateError builds an error for a rejected candidate value
func NewCandidateError(list string, index int, value int) error {
	return fmt.Errorf("%w: %s[%d] = %d must be positive", ErrInvalidCandidates, list, index, value)
}

// NewEmptyCandidatesError builds an error for a candidate list with no values
func NewEmptyCandidatesError(list string) error {
	return fmt.Errorf("%w: %s is empty", ErrInvalidCandidates, list)
}

// NewOverflowError builds an error for an n*e product that does not fit in an int
func NewOverflowError(n int, e int) error {
	return fmt.Errorf("%w: n*e = %d*%d overflows the trial count", ErrInvalidCandidates, n, e)
}

// NewRosterError builds an error for an inconsistent roster setting
func NewRosterError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidRoster, field, reason)
}

// IsPreconditionError reports whether err is any precondition failure
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrPreconditionViolated)
}
