package commit

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying each validation failure kind. Match them with
// errors.Is; the concrete error is always a *ValidationError.
var (
	ErrUnknownType              = errors.New("unknown commit type")
	ErrEmptySubject             = errors.New("subject must not be empty")
	ErrHeaderTooLong            = errors.New("header too long")
	ErrDisallowedBreakingChange = errors.New("breaking change not allowed for type")
	ErrDisallowedScope          = errors.New("scope not allowed")
	ErrInvalidScope             = errors.New("scope must not contain spaces, parentheses or line breaks")
	ErrMultilineSubject         = errors.New("subject must be a single line")
)

// ValidationError reports a single rejected answer.
type ValidationError struct {
	// Field is the answer field that failed, e.g. "type" or "subject".
	Field string
	// Value is the offending (trimmed) value.
	Value string
	// Detail is an optional human-readable hint.
	Detail string
	// Err is one of the sentinel errors above.
	Err error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, value string, err error, detail string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: err, Detail: detail}
}
