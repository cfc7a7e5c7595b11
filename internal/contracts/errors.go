package contracts

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a job failure.
// Every stage returns one of these kinds; the orchestrator maps the first
// failure to an error record.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "NOT_FOUND"   // config or input path absent
	KindParse       ErrorKind = "PARSE"       // malformed document
	KindValidation  ErrorKind = "VALIDATION"  // content present but unusable
	KindComputation ErrorKind = "COMPUTATION" // nothing to aggregate
	KindOutput      ErrorKind = "OUTPUT"      // result artifact could not be written
)

// Sentinel causes, matched with errors.Is
var (
	ErrMissingField     = errors.New("missing config field")
	ErrInvalidField     = errors.New("invalid config field")
	ErrEmptyInput       = errors.New("empty input")
	ErrMissingColumn    = errors.New("missing column")
	ErrDuplicateColumn  = errors.New("duplicate column")
	ErrAllValuesInvalid = errors.New("all values invalid")
	ErrEmptyRateWindow  = errors.New("empty rate window")
)

// Error is a classified job failure.
// Error() returns Message unchanged because it becomes error_message in the
// result record.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFoundError creates a KindNotFound error
func NotFoundError(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

// ParseError creates a KindParse error
func ParseError(message string, err error) *Error {
	return &Error{Kind: KindParse, Message: message, Err: err}
}

// ValidationError creates a KindValidation error
func ValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

// ComputationError creates a KindComputation error
func ComputationError(message string, err error) *Error {
	return &Error{Kind: KindComputation, Message: message, Err: err}
}

// OutputError creates a KindOutput error
func OutputError(message string, err error) *Error {
	return &Error{Kind: KindOutput, Message: message, Err: err}
}

// MissingFieldError reports an absent required config field
func MissingFieldError(field string) *Error {
	return ValidationError(fmt.Sprintf("Missing config field: %s", field), ErrMissingField)
}

// KindOf returns the kind of err, or "" when err is not a classified failure.
func KindOf(err error) ErrorKind {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}
	return ""
}
