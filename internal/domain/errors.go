// Package domain defines error types shared by the job's packages.
package domain

import "fmt"

// ValidationError indicates invalid input: a malformed row, schema, or option.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
