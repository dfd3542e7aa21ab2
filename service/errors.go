package service

import (
	"fmt"

	"github.com/pkg/errors"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

// ValidationError is raised for missing or malformed input
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

// InvalidStatusError is a validation error raised for unknown status transitions
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("status: invalid value %q", e.Status)
}

// AuthError is raised for missing or unrecognized credentials
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// NotFoundError is raised when a referenced record does not exist
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError is raised on uniqueness violations
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// RateLimitError is raised when a quota is exhausted
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// classify maps storage errors to the service taxonomy and wraps anything else
func classify(err error, resource, action string) error {
	switch {
	case err == nil:
		return nil
	case queries.IsNotFound(err):
		return notFound(resource)
	case queries.IsUniqueViolation(err):
		return &ConflictError{Message: resource + " already exists"}
	}
	return errors.Wrap(err, action)
}
