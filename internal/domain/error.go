// Package domain defines the application error model shared by the lookup
// client, validators and HTTP handlers.
//
// Every error that reaches a handler is reduced to a code (which picks the
// HTTP status) and a message (which is safe to show). Internal errors always
// show a generic message; the wrapped cause only goes to the logs.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes.
const (
	EINTERNAL    = "internal"        // 500
	EINVALID     = "invalid"         // 400
	ENOTFOUND    = "not_found"       // 404
	ENOTIMPL     = "not_implemented" // 501
	ETOOLARGE    = "too_large"       // 413
	ERATELIMIT   = "rate_limit"      // 429
	EUNAVAILABLE = "unavailable"     // 502, the lookup service failed
)

const genericMessage = "An internal error occurred. Please try again later."

// Error is a coded application error.
type Error struct {
	Code    string
	Message string // shown to users unless Code is EINTERNAL
	Op      string // e.g. "suggestions.list"; logs only
	Err     error  // cause; logs only
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" || e.Err == nil {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Coder is implemented by package errors (such as canadapost.ProviderError)
// that carry their own code without importing domain.
type Coder interface {
	ErrorCode() string
	ErrorMessage() string
}

// classify returns the code and public message of err.
func classify(err error) (code, message string) {
	var (
		e  *Error
		ve *ValidationError
		c  Coder
	)
	switch {
	case errors.As(err, &e):
		code, message = e.Code, e.Message
	case errors.As(err, &ve):
		code, message = EINVALID, "Validation failed"
	case errors.As(err, &c):
		code, message = c.ErrorCode(), c.ErrorMessage()
	default:
		code = EINTERNAL
	}

	if code == EINTERNAL {
		message = genericMessage
	}
	return code, message
}

// ErrorCode returns the code of err: "" for nil, EINTERNAL when err carries none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	code, _ := classify(err)
	return code
}

// ErrorMessage returns the user-facing message of err. Internal errors get a
// generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	_, message := classify(err)
	return message
}

// ErrorOp returns the operation recorded on err, if any.
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// IsCode reports whether err has the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// Errorf builds an error with a formatted message.
//
//	domain.Errorf(domain.EINVALID, "phone.format", "cursor out of range: %d", c)
func Errorf(code, op, format string, args ...any) error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a code, op and message to err. It returns nil for a nil err.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// NotFound reports a missing resource.
func NotFound(op, resource, identifier string) error {
	return Errorf(ENOTFOUND, op, "%s not found: %s", resource, identifier)
}

// Invalid reports bad input that is not tied to a single field.
func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// RateLimited reports a throttled client.
func RateLimited(op string) error {
	return &Error{Code: ERATELIMIT, Op: op, Message: "Too many requests. Please slow down."}
}

// Unavailable wraps an upstream failure. Users see message, logs see err.
func Unavailable(err error, op, message string) error {
	return &Error{Code: EUNAVAILABLE, Op: op, Message: message, Err: err}
}

// Internal wraps an unexpected failure. Users see a generic message.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// ValidationError holds per-field failures, keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
	Op     string
}

func (e *ValidationError) Error() string {
	var msg string
	if len(e.Fields) == 1 {
		for field, reason := range e.Fields {
			msg = field + ": " + reason
		}
	} else {
		msg = fmt.Sprintf("validation failed for %d fields", len(e.Fields))
	}

	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// NewValidationError reports a single invalid field.
func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError records another field failure on err, or starts a new
// ValidationError when err is not one.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{Fields: map[string]string{field: message}}
}

// GetValidationFields returns the field failures of err, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
