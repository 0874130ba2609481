package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: screen run", ErrNotFound)

	// Precondition errors raised before any feature is tested
	ErrInvalidGrouping   = errors.New("grouping must have exactly two levels")
	ErrInvalidCovariate  = errors.New("covariate must be numeric with no missing values")
	ErrEmptyInput        = errors.New("no features passed the abundance filter")
	ErrDimensionMismatch = errors.New("matrix sample count does not match metadata")

	// Data errors
	ErrNegativeAbundance = errors.New("abundance values must be non-negative")
	ErrDuplicateID       = errors.New("duplicate identifier")
	ErrZeroSumSample     = errors.New("sample has zero total abundance")
	ErrNotCounts         = errors.New("rarefaction requires integer count data")
	ErrInsufficientData  = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewGroupingError(levels int) error {
	return fmt.Errorf("%w: found %d", ErrInvalidGrouping, levels)
}

func NewCovariateError(column string, reason string) error {
	return fmt.Errorf("%w: column %s: %s", ErrInvalidCovariate, column, reason)
}

func NewDimensionError(matrixSamples, metadataSamples int) error {
	return fmt.Errorf("%w: matrix has %d samples, metadata has %d", ErrDimensionMismatch, matrixSamples, metadataSamples)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrInvalidGrouping) ||
		errors.Is(err, ErrInvalidCovariate) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrDimensionMismatch)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrNegativeAbundance) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrZeroSumSample) ||
		errors.Is(err, ErrNotCounts)
}
