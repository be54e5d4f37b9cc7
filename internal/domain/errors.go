package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input or a violated business rule. The caller
// can correct the request and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity  string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(entity, format string, args ...any) error {
	return &NotFoundError{Entity: entity, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
