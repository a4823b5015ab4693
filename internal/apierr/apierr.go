// Package apierr translates failures into the uniform JSON error envelope.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Client-facing messages shared across packages.
const (
	MsgValidationFailed = "Validation failed"
	MsgInvalidJSON      = "Invalid JSON body"
	MsgBodyTooLarge     = "Request body too large"
	MsgInternal         = "Internal server error"
	MsgUnauthorized     = "Invalid or missing API key"
	MsgNotFound         = "Resource not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgRateLimited      = "Rate limit exceeded"
)

// Violation is one failed field constraint.
type Violation struct {
	Field   string `json:"property_path"`
	Message string `json:"message"`
}

// Error is a failure tagged with its response status.
// Message is sent to the client; Err is kept for logs and errors.Is.
type Error struct {
	Status     int
	Message    string
	Violations []Violation
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the response status.
func (e *Error) StatusCode() int { return e.Status }

// New returns a tagged error with status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap tags err with status and a client-facing message.
func Wrap(err error, status int, message string) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

// NotFound is a 404 with message.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Unauthorized is a 401 with message.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Validation is a 400 carrying every violation.
func Validation(violations ...Violation) *Error {
	return &Error{Status: http.StatusBadRequest, Message: MsgValidationFailed, Violations: violations}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Status == http.StatusBadRequest && len(e.Violations) > 0
	}
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// FromValidator maps validator errors to violations.
// Field names are whatever the validator reports, so register a json tag
// name function to get client-facing names.
func FromValidator(errs validator.ValidationErrors) []Violation {
	violations := make([]Violation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, Violation{Field: fe.Field(), Message: messageFor(fe)})
	}
	return violations
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Can not be blank"
	case "min":
		return fmt.Sprintf("Must contain minimum %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain maximum %s characters", fe.Param())
	case "email":
		return fmt.Sprintf("%v is not a valid email address", fe.Value())
	default:
		return "This value is not valid"
	}
}
