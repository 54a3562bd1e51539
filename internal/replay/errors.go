package replay

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed     = errors.New("malformed replay")
	ErrNotFound      = errors.New("replay not found")
	ErrUnknownServer = errors.New("unknown replay server")
)

// DecodeError reports a field of the positional payload that could not be
// decoded or failed validation.
type DecodeError struct {
	Field    string
	Position int // -1 when the error is not tied to a wire position
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("malformed replay: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed replay: %s (position %d): %v", e.Field, e.Position, e.Err)
}

// Unwrap exposes both ErrMalformed and the underlying cause
func (e *DecodeError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}

func fieldError(field string, pos int, err error) *DecodeError {
	return &DecodeError{Field: field, Position: pos, Err: err}
}

func invalid(field string, format string, args ...any) *DecodeError {
	return &DecodeError{Field: field, Position: -1, Err: fmt.Errorf(format, args...)}
}
