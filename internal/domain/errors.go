package domain

import (
	"errors"
	"fmt"
)

// Common sentinel errors shared across the codec, tallies, and
// conversion strategies.
var (
	// ErrEmptyCandidatePool indicates an election with no declared candidates.
	ErrEmptyCandidatePool = errors.New("empty candidate pool")

	// ErrUnknownCandidate indicates a ballot referencing an undeclared candidate.
	ErrUnknownCandidate = errors.New("unknown candidate")

	// ErrDuplicateCandidate indicates a candidate token declared twice.
	ErrDuplicateCandidate = errors.New("duplicate candidate declaration")

	// ErrRatingOutOfBounds indicates a rating outside the declared range.
	ErrRatingOutOfBounds = errors.New("rating out of declared bounds")

	// ErrInvalidRank indicates a rank value that is not a positive integer.
	ErrInvalidRank = errors.New("invalid rank")

	// ErrInvalidQuantity indicates a ballot quantity below 1.
	ErrInvalidQuantity = errors.New("invalid ballot quantity")

	// ErrNoBallots indicates an operation that requires at least one ballot.
	ErrNoBallots = errors.New("no ballots")

	// ErrInvalidConfiguration indicates a method parameter that fails validation.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// FormatError reports malformed interchange text. Parsing fails fast:
// no partial ballot model is returned alongside a FormatError.
type FormatError struct {
	// Line is the 1-based line number of the offending input line.
	Line int

	// Text is the offending line, trimmed for context.
	Text string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for FormatError.
func (e *FormatError) Error() string {
	return fmt.Sprintf("format error at line %d (%q): %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As matching.
func (e *FormatError) Unwrap() error { return e.Err }

// NewFormatError creates a FormatError carrying line context.
func NewFormatError(line int, text string, err error) *FormatError {
	return &FormatError{Line: line, Text: text, Err: err}
}

// DataError reports a structurally valid but semantically inconsistent
// ballot model, such as an undeclared candidate reference or a rating
// outside the declared bounds. Data errors are never silently clamped
// or auto-corrected.
type DataError struct {
	// Token is the candidate token involved, when one is.
	Token string

	// Detail describes the inconsistency.
	Detail string

	// Suggestion optionally names the closest declared token, filled
	// in by callers that can compute one.
	Suggestion string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for DataError.
func (e *DataError) Error() string {
	msg := fmt.Sprintf("data error: %s", e.Detail)
	if e.Token != "" {
		msg += fmt.Sprintf(" (token %q)", e.Token)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As matching.
func (e *DataError) Unwrap() error { return e.Err }

// NewDataError creates a DataError for the given token and detail.
func NewDataError(token, detail string, err error) *DataError {
	return &DataError{Token: token, Detail: detail, Err: err}
}

// ConfigError reports an invalid method parameter or an election that
// cannot be tallied at all, such as one with an empty candidate pool.
// Config errors are raised before any computation begins.
type ConfigError struct {
	// Component names the tally or strategy rejecting the configuration.
	Component string

	// Detail describes what is invalid.
	Detail string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s: %v", e.Component, e.Detail, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As matching.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError for the given component.
func NewConfigError(component, detail string, err error) *ConfigError {
	return &ConfigError{Component: component, Detail: detail, Err: err}
}
