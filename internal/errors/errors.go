// Package errors holds the sentinel errors shared by every tickseries package.
//
// This file provides:
// - Error codes for reporting failures across the CLI and replay boundaries
// - Sentinel errors for all error conditions
// - Error category checking functions
// - ErrorToCode mapping
// - Error wrapping utilities

package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Error codes - used when a failure is reported outside the process
// ============================================================================

const (
	CodeUnknown          int32 = 1
	CodeInvalidConfig    int32 = 2
	CodeUnknownChannel   int32 = 3
	CodeNoCommitted      int32 = 4
	CodeIncompleteTick   int32 = 5
	CodeIndexOutOfRange  int32 = 6
	CodeInvalidRange     int32 = 7
	CodeImmutableHistory int32 = 8
	CodeHistoryDisabled  int32 = 9
	CodeInternal         int32 = 10
)

// CodeName returns a human-readable name for an error code.
func CodeName(code int32) string {
	switch code {
	case CodeUnknown:
		return "Unknown"
	case CodeInvalidConfig:
		return "InvalidConfig"
	case CodeUnknownChannel:
		return "UnknownChannel"
	case CodeNoCommitted:
		return "NoCommittedValue"
	case CodeIncompleteTick:
		return "IncompleteTickWrite"
	case CodeIndexOutOfRange:
		return "IndexOutOfRetainedRange"
	case CodeInvalidRange:
		return "InvalidRangeIndex"
	case CodeImmutableHistory:
		return "ImmutableHistory"
	case CodeHistoryDisabled:
		return "HistoryDisabled"
	case CodeInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Code(%d)", code)
	}
}

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Lookup errors
	ErrUnknownChannel   = errors.New("unknown channel")
	ErrNoCommittedValue = errors.New("no committed value")
	ErrHistoryDisabled  = errors.New("history tracking is disabled")

	// Barrier errors
	ErrIncompleteTick = errors.New("incomplete tick write")
	ErrPendingWrites  = errors.New("pending writes in flight")

	// Index errors
	ErrIndexOutOfRange = errors.New("index out of retained range")
	ErrInvalidRange    = errors.New("invalid range index")

	// Mutation errors
	ErrImmutableHistory = errors.New("history is immutable")

	// Validation errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrMissingField     = errors.New("missing required field")
	ErrDuplicateChannel = errors.New("duplicate channel")
	ErrInvalidCommand   = errors.New("invalid command")

	// Internal errors
	ErrInternal     = errors.New("internal error")
	ErrWriterClosed = errors.New("writer is closed")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// IsLookup returns true if err is a failed channel or value lookup.
func IsLookup(err error) bool {
	return errors.Is(err, ErrUnknownChannel) ||
		errors.Is(err, ErrNoCommittedValue) ||
		errors.Is(err, ErrHistoryDisabled)
}

// IsIndexError returns true if err came from retrospective indexing.
func IsIndexError(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrInvalidRange)
}

// IsBarrier returns true if err was raised by the tick write barrier.
func IsBarrier(err error) bool {
	return errors.Is(err, ErrIncompleteTick) ||
		errors.Is(err, ErrPendingWrites)
}

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrDuplicateChannel) ||
		errors.Is(err, ErrInvalidCommand)
}

// ============================================================================
// Error to code mapping
// ============================================================================

// ErrorToCode maps a sentinel error to its code.
func ErrorToCode(err error) int32 {
	if err == nil {
		return CodeUnknown
	}

	switch {
	case Is(err, ErrUnknownChannel):
		return CodeUnknownChannel
	case Is(err, ErrNoCommittedValue):
		return CodeNoCommitted
	case Is(err, ErrHistoryDisabled):
		return CodeHistoryDisabled
	case IsBarrier(err):
		return CodeIncompleteTick
	case Is(err, ErrIndexOutOfRange):
		return CodeIndexOutOfRange
	case Is(err, ErrInvalidRange):
		return CodeInvalidRange
	case Is(err, ErrImmutableHistory):
		return CodeImmutableHistory
	case IsValidation(err):
		return CodeInvalidConfig
	default:
		return CodeInternal
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns all collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
