package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrDatasetNotFound   = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrDatatableNotFound = fmt.Errorf("%w: datatable", ErrNotFound)
	ErrVariableNotFound  = fmt.Errorf("%w: variable", ErrNotFound)
	ErrSnapshotNotFound  = fmt.Errorf("%w: snapshot", ErrNotFound)

	// Structural errors: the caller handed the pipeline a malformed table.
	// These indicate integration bugs, not recoverable input conditions.
	ErrMissingColumn  = errors.New("required column missing")
	ErrColumnType     = errors.New("column has unexpected type")
	ErrLengthMismatch = errors.New("column length mismatch")

	// Configuration errors: user-facing settings are inconsistent and the
	// UI layer needs a distinguishable error to act on.
	ErrInvalidFactorSelection = errors.New("invalid factor selection")
	ErrUnknownSplitMode       = errors.New("unknown split mode")
	ErrUnknownBinningMode     = errors.New("unknown binning mode")
	ErrInvalidInterval        = errors.New("binning interval must be positive")

	// Registry errors
	ErrDuplicateLevel  = errors.New("animal assigned to multiple levels of one factor")
	ErrDuplicateAnimal = errors.New("animal id already in use")
)

// Error constructors with context
func NewMissingColumnError(operator, column string) error {
	return fmt.Errorf("%w: %s requires column %q", ErrMissingColumn, operator, column)
}

func NewColumnTypeError(column, want string) error {
	return fmt.Errorf("%w: column %q is not %s", ErrColumnType, column, want)
}

func NewInvalidFactorError(name string) error {
	if name == "" {
		return fmt.Errorf("%w: no factor selected", ErrInvalidFactorSelection)
	}
	return fmt.Errorf("%w: %q is not a factor column", ErrInvalidFactorSelection, name)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStructuralError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrColumnType) ||
		errors.Is(err, ErrLengthMismatch)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidFactorSelection) ||
		errors.Is(err, ErrUnknownSplitMode) ||
		errors.Is(err, ErrUnknownBinningMode) ||
		errors.Is(err, ErrInvalidInterval)
}
