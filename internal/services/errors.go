package services

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups by ID that matched nothing. Callers render
// absence; it is never fatal.
var ErrNotFound = errors.New("not found")

// ValidationError is a user-correctable input problem. It is detected before
// any state changes and names the offending field when one exists.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
