package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeAuthInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeAuthRegistrationFailed ErrorCode = "AUTH-002"
	ErrCodeAuthTokenMissing       ErrorCode = "AUTH-003"
	ErrCodeAuthTokenExpired       ErrorCode = "AUTH-004"
	ErrCodeAuthTokenMalformed     ErrorCode = "AUTH-005"
	ErrCodeAuthResetFailed        ErrorCode = "AUTH-006"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionNotHydrated    ErrorCode = "SESSION-001"
	ErrCodeSessionTenantMismatch ErrorCode = "SESSION-002"
	ErrCodeSessionRestoreFailed  ErrorCode = "SESSION-003"
	ErrCodeSessionPersistFailed  ErrorCode = "SESSION-004"
	ErrCodeSessionStale          ErrorCode = "SESSION-005"

	// Access errors (ACCESS-001 to ACCESS-099)
	ErrCodeAccessUnknownFeature ErrorCode = "ACCESS-001"
	ErrCodeAccessUnknownRole    ErrorCode = "ACCESS-002"
	ErrCodeAccessTableInvalid   ErrorCode = "ACCESS-003"
	ErrCodeAccessDenied         ErrorCode = "ACCESS-004"

	// Realtime errors (RT-001 to RT-099)
	ErrCodeRealtimeNotAuthenticated ErrorCode = "RT-001"
	ErrCodeRealtimeDialFailed       ErrorCode = "RT-002"
	ErrCodeRealtimeBadPayload       ErrorCode = "RT-003"
	ErrCodeRealtimeClosed           ErrorCode = "RT-004"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequestFailed   ErrorCode = "API-001"
	ErrCodeAPIBadResponse     ErrorCode = "API-002"
	ErrCodeAPIServerError     ErrorCode = "API-003"
	ErrCodeAPIUnauthorized    ErrorCode = "API-004"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-004"
	ErrCodeFileMarshal     ErrorCode = "IO-005"
)

// PulseError represents an enhanced error with code, suggestions, and documentation
type PulseError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PulseError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PulseError) Unwrap() error {
	return e.Cause
}

// New creates a new PulseError
func New(code ErrorCode, message string) *PulseError {
	return &PulseError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PulseError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PulseError {
	return &PulseError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PulseError) WithSuggestion(suggestion string) *PulseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PulseError) WithSuggestions(suggestions ...string) *PulseError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PulseError) WithDocs(url string) *PulseError {
	e.DocsURL = url
	return e
}

// HasCode reports whether err is a PulseError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	if pe, ok := err.(*PulseError); ok {
		return pe.Code == code
	}
	return false
}

// Common error constructors for frequently used errors

// NewInvalidCredentialsError creates a login failure error
func NewInvalidCredentialsError() *PulseError {
	return New(ErrCodeAuthInvalidCredentials, "invalid email or password").
		WithSuggestion("Check your email address and password").
		WithSuggestion("Use 'pulse auth forgot-password' if you cannot remember your password")
}

// NewTokenMissingError creates an error for operations that need a stored token
func NewTokenMissingError() *PulseError {
	return New(ErrCodeAuthTokenMissing, "no access token stored").
		WithSuggestion("Run 'pulse auth login' to authenticate")
}

// NewTenantMismatchError creates a session consistency error
func NewTenantMismatchError(userCompanyID, companyID string) *PulseError {
	return New(ErrCodeSessionTenantMismatch,
		fmt.Sprintf("cached user belongs to company %s but cached company is %s", userCompanyID, companyID)).
		WithSuggestion("The local session was cleared; log in again")
}

// NewUnknownFeatureError creates an error for feature keys missing from the permission table
func NewUnknownFeatureError(feature string) *PulseError {
	return New(ErrCodeAccessUnknownFeature, fmt.Sprintf("unknown feature key: %s", feature)).
		WithSuggestion("Feature keys must be registered in the role permission table")
}

// NewConfigInvalidError creates a config validation error
func NewConfigInvalidError(details string) *PulseError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'pulse config show' to inspect the active configuration")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *PulseError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
