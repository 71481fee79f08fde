package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrNotFound    = errors.New("resource not found")
	ErrDuplicateID = errors.New("identifier already exists")

	// Validation errors
	ErrValidationFailed   = errors.New("validation failed")
	ErrEmailAlreadyExists = errors.New("email already in use")

	// Persistence errors
	ErrFormat = errors.New("invalid file format")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
)

// NewNotFoundError reports a missing entity of the given kind.
func NewNotFoundError(kind, id string) error {
	return &CustomError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %q not found", kind, id),
		Details: map[string]interface{}{"kind": kind, "id": id},
	}
}

// NewDuplicateIDError reports an identifier that is already taken in its collection.
func NewDuplicateIDError(kind, id string) error {
	return &CustomError{
		Err:     ErrDuplicateID,
		Message: fmt.Sprintf("duplicate %s_id: %s", kind, id),
		Details: map[string]interface{}{"kind": kind, "id": id},
	}
}

// NewEmailConflictError reports an email already used by another student or instructor.
func NewEmailConflictError(email string) error {
	return &CustomError{
		Err:     ErrEmailAlreadyExists,
		Message: "email already in use: " + email,
		Details: map[string]interface{}{"email": email},
	}
}

// NewValidationError reports a missing or malformed field.
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: fmt.Sprintf("%s: %s", field, message),
		Details: map[string]interface{}{"field": field},
	}
}

// NewFormatError reports an unreadable data file. cause may be nil.
func NewFormatError(message string, cause error) error {
	ce := &CustomError{
		Err:     ErrFormat,
		Message: message,
	}
	if cause != nil {
		ce.Message = message + ": " + cause.Error()
		ce.cause = cause
	}
	return ce
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}

	cause error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *CustomError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// Field returns the offending field of a validation error, if any.
func Field(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Details != nil {
		if f, ok := ce.Details["field"].(string); ok {
			return f
		}
	}
	return ""
}
