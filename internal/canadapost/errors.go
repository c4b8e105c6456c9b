package canadapost

import "fmt"

// ============================================================================
// PROVIDER ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.

const (
	codeInvalid     = "invalid"
	codeUnavailable = "unavailable"
)

// ============================================================================
// PROVIDER ERROR TYPE
// ============================================================================

// ProviderError represents a lookup error with a code and message.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ProviderError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *ProviderError) ErrorMessage() string {
	return e.Message
}

func newProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

var (
	// ErrMissingAPIKey is returned when the client is built without a key.
	ErrMissingAPIKey = newProviderError(codeInvalid, "AddressComplete API key is required")

	// ErrEmptySearchTerm is returned when Find is called with a blank term.
	ErrEmptySearchTerm = newProviderError(codeInvalid, "Search term is required")
)

// ============================================================================
// API ERRORS
// ============================================================================

// APIError is an error reported in-band by AddressComplete. The service answers
// HTTP 200 with a single item carrying Error/Description/Cause/Resolution.
type APIError struct {
	Number      string
	Description string
	Cause       string
	Resolution  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("addresscomplete error %s: %s", e.Number, e.Description)
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *APIError) ErrorCode() string {
	return codeUnavailable
}

// ErrorMessage returns the user-facing message.
func (e *APIError) ErrorMessage() string {
	return "Address lookup is temporarily unavailable"
}
