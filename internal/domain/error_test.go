package domain

import (
	"errors"
	"fmt"
	"testing"
)

// coded mimics a package error that reports its own code.
type coded struct{ code, msg string }

func (c *coded) Error() string        { return c.msg }
func (c *coded) ErrorCode() string    { return c.code }
func (c *coded) ErrorMessage() string { return c.msg }

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Code: EINVALID, Message: "invalid input"},
			expected: "invalid input",
		},
		{
			name:     "with operation",
			err:      &Error{Code: EINVALID, Op: "suggestions.list", Message: "invalid input"},
			expected: "suggestions.list: invalid input",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EUNAVAILABLE,
				Op:      "suggestions.list",
				Message: "lookup failed",
				Err:     errors.New("connection reset"),
			},
			expected: "suggestions.list: lookup failed: connection reset",
		},
		{
			name:     "wrapped error without op",
			err:      &Error{Code: EINTERNAL, Message: "lookup failed", Err: errors.New("connection reset")},
			expected: "lookup failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := WrapError(inner, EINTERNAL, "op", "outer")

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"domain error", Invalid("op", "bad"), EINVALID},
		{"wrapped domain error", fmt.Errorf("context: %w", RateLimited("op")), ERATELIMIT},
		{"validation error", NewValidationError("op", "province", "required"), EINVALID},
		{"coder", &coded{code: EUNAVAILABLE, msg: "down"}, EUNAVAILABLE},
		{"wrapped coder", fmt.Errorf("find: %w", &coded{code: EINVALID, msg: "blank"}), EINVALID},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"domain error", Invalid("op", "Query is too short"), "Query is too short"},
		{"internal hides details", Internal(errors.New("secret"), "op", "db password wrong"), genericMessage},
		{"unavailable shows message", Unavailable(errors.New("timeout"), "op", "Lookup unavailable"), "Lookup unavailable"},
		{"validation error", NewValidationError("op", "phone", "bad"), "Validation failed"},
		{"coder", &coded{code: EUNAVAILABLE, msg: "Try later"}, "Try later"},
		{"plain error", errors.New("boom"), genericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	if got := ErrorOp(Invalid("phone.format", "x")); got != "phone.format" {
		t.Errorf("ErrorOp() = %q", got)
	}
	if got := ErrorOp(errors.New("x")); got != "" {
		t.Errorf("ErrorOp() = %q, want empty", got)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "phone.format", "cursor out of range: %d", 42)

	if ErrorCode(err) != EINVALID {
		t.Errorf("code = %q", ErrorCode(err))
	}
	if ErrorMessage(err) != "cursor out of range: 42" {
		t.Errorf("message = %q", ErrorMessage(err))
	}
}

func TestWrapError_Nil(t *testing.T) {
	if err := WrapError(nil, EINTERNAL, "op", "msg"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(NotFound("route", "route", "/x"), ENOTFOUND) {
		t.Error("expected ENOTFOUND")
	}
	if IsCode(errors.New("x"), ENOTFOUND) {
		t.Error("plain error must not match ENOTFOUND")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("address.validate", "province", "Unknown province")
	if got := err.Error(); got != "address.validate: province: Unknown province" {
		t.Errorf("Error() = %q", got)
	}

	err = AddFieldError(err, "postal_code", "Invalid postal code")
	fields := GetValidationFields(err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields["postal_code"] != "Invalid postal code" {
		t.Errorf("postal_code = %q", fields["postal_code"])
	}
	if got := err.Error(); got != "address.validate: validation failed for 2 fields" {
		t.Errorf("Error() = %q", got)
	}

	if GetValidationFields(errors.New("x")) != nil {
		t.Error("expected nil fields for plain error")
	}

	fresh := AddFieldError(nil, "city", "required")
	if GetValidationFields(fresh)["city"] != "required" {
		t.Error("expected AddFieldError(nil, ...) to create a ValidationError")
	}
}
