// Package domain defines the core domain models for PageGate.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes follow the PG-<AREA>-<NNNN> format; the first three digits of the
// numeric part are the HTTP status the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "PG-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// HTTPStatus returns the HTTP status code encoded in the error code.
// Returns 500 if the code does not carry one.
func (e *DomainError) HTTPStatus() int {
	n := len(e.Code)
	if n < 4 {
		return 500
	}
	status := 0
	for _, c := range e.Code[n-4 : n-1] {
		if c < '0' || c > '9' {
			return 500
		}
		status = status*10 + int(c-'0')
	}
	if status < 100 || status > 599 {
		return 500
	}
	return status
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrAuthRequired indicates the request carried no digest credentials.
	ErrAuthRequired = NewDomainError("PG-AUTH-4010", "authentication required")

	// ErrAuthMalformed indicates the Authorization header could not be parsed
	// or lacks required fields.
	ErrAuthMalformed = NewDomainError("PG-AUTH-4011", "malformed digest credentials")

	// ErrAuthRealm indicates the credentials were issued for another realm.
	ErrAuthRealm = NewDomainError("PG-AUTH-4012", "realm mismatch")

	// ErrAuthUnknownUser indicates the username is not provisioned.
	ErrAuthUnknownUser = NewDomainError("PG-AUTH-4013", "unknown user")

	// ErrAuthStaleNonce indicates the nonce was not issued by this server or has expired.
	ErrAuthStaleNonce = NewDomainError("PG-AUTH-4014", "stale nonce")

	// ErrAuthNonceReplay indicates a nonce count was reused.
	ErrAuthNonceReplay = NewDomainError("PG-AUTH-4015", "nonce replay detected")

	// ErrAuthMismatch indicates the digest response did not match.
	ErrAuthMismatch = NewDomainError("PG-AUTH-4016", "authentication failed")
)

// ============================================================================
// Path Errors (PATH)
// ============================================================================

var (
	// ErrIllegalPath indicates a traversal attempt or a path escaping the document root.
	ErrIllegalPath = NewDomainError("PG-PATH-4030", "illegal path")

	// ErrPathNotFound indicates the resolved file does not exist or cannot be read.
	ErrPathNotFound = NewDomainError("PG-PATH-4040", "page not found")
)

// ============================================================================
// Request Errors (REQ)
// ============================================================================

var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("PG-REQ-4000", "bad request")

	// ErrMethodNotAllowed indicates a method other than GET or POST.
	ErrMethodNotAllowed = NewDomainError("PG-REQ-4050", "method not allowed")

	// ErrBodyTooLarge indicates the declared body exceeds the configured limit.
	ErrBodyTooLarge = NewDomainError("PG-REQ-4130", "request body too large")

	// ErrHeaderTooLarge indicates the request line or header block exceeds protocol limits.
	ErrHeaderTooLarge = NewDomainError("PG-REQ-4310", "request header fields too large")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("PG-REQ-4290", "too many requests")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates a handler failure.
	ErrInternalServer = NewDomainError("PG-SYS-5000", "internal server error")

	// ErrNoDefaultHandler indicates the registry was built without a default handler.
	ErrNoDefaultHandler = NewDomainError("PG-CFG-5001", "no default handler configured")

	// ErrRegistryFrozen indicates a registration after the registry was built.
	ErrRegistryFrozen = NewDomainError("PG-CFG-5002", "handler registry is frozen")
)

// ============================================================================
// Operations Errors (OPS)
// ============================================================================

var (
	// ErrAccessDenied indicates an ops or admin client outside the allowlist.
	ErrAccessDenied = NewDomainError("PG-OPS-4030", "access denied")

	// ErrUnknownCommand indicates an admin socket command that is not supported.
	ErrUnknownCommand = NewDomainError("PG-OPS-4000", "unknown command")
)
