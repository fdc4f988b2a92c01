package models

import (
	"fmt"
	"strings"
)

// ValidationError represents a data or parameter validation failure.
// Missing lists every absent required column when the failure is a schema check.
type ValidationError struct {
	Field   string
	Value   string
	Missing []string
	Message string
}

// NewMissingColumnsError reports the absent required columns
func NewMissingColumnsError(missing []string) *ValidationError {
	return &ValidationError{
		Field:   "columns",
		Missing: missing,
		Message: fmt.Sprintf("required column(s) not found in the data: %s", strings.Join(missing, ", ")),
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// ParseError is a cell that could not be parsed. Row is 1-based over data rows.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsTransient returns false; re-reading the same file fails the same way
func (e *ParseError) IsTransient() bool {
	return false
}

// EmptyDataError reports that a stage had nothing to work on.
// It is not fatal: callers surface it as a "no data" message.
type EmptyDataError struct {
	Stage   string
	Message string
}

func (e *EmptyDataError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: no data", e.Stage)
}

// IsTransient returns false
func (e *EmptyDataError) IsTransient() bool {
	return false
}
