// Package domain defines the core domain models for the KubeCloudsInc client.
package domain

import (
	"context"
	"errors"
	"fmt"
)

// DomainError represents a client-side error with a structured error code.
//
// Codes follow KCI-{AREA}-{NNNN}; two errors with the same code compare
// equal under errors.Is regardless of message, details or cause.
type DomainError struct {
	Code    string // Error code (e.g., "KCI-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Status  int    // HTTP status code, when the error came from a response
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
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
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// WithStatus returns a copy of the error carrying an HTTP status code.
func (e *DomainError) WithStatus(status int) *DomainError {
	c := *e
	c.Status = status
	return &c
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

// HTTPStatusOf returns the HTTP status carried by err, or 0.
func HTTPStatusOf(err error) int {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Status
	}
	return 0
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrAuthRejected indicates the login endpoint answered with a non-2xx status.
	// Details carries the server's message, if it sent one.
	ErrAuthRejected = NewDomainError("KCI-AUTH-4010", "login rejected")

	// ErrAuthTransport indicates the login request never produced a response.
	ErrAuthTransport = NewDomainError("KCI-AUTH-5020", "login request failed")

	// ErrAuthMalformedResponse indicates a 2xx login response without a usable token.
	ErrAuthMalformedResponse = NewDomainError("KCI-AUTH-5021", "malformed login response")
)

// ============================================================================
// Fetch Errors (FETCH)
// ============================================================================

var (
	// ErrNoToken indicates a protected fetch was attempted without a token.
	ErrNoToken = NewDomainError("KCI-FETCH-4011", "no authentication token")

	// ErrFetchHTTPStatus indicates a protected fetch answered with a non-2xx status.
	ErrFetchHTTPStatus = NewDomainError("KCI-FETCH-4000", "unexpected http status")

	// ErrFetchTransport indicates a protected fetch never produced a response.
	ErrFetchTransport = NewDomainError("KCI-FETCH-5020", "fetch request failed")

	// ErrFetchMalformedResponse indicates a 2xx body that could not be decoded.
	ErrFetchMalformedResponse = NewDomainError("KCI-FETCH-5021", "malformed fetch response")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrCanceled indicates the operation was cancelled by the caller.
	ErrCanceled = NewDomainError("KCI-SYS-4990", "operation canceled")

	// ErrOperationInFlight indicates the same operation is already running.
	ErrOperationInFlight = NewDomainError("KCI-SYS-4090", "operation already in flight")

	// ErrStorage indicates the token store failed.
	ErrStorage = NewDomainError("KCI-SYS-5001", "storage error")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("KCI-ARG-1001", "invalid argument")
)

// User-visible fallbacks.
const (
	MsgLoginFailed   = "Login failed"
	MsgNoToken       = "No authentication token. Please log in."
	MsgFetchFailed   = "Failed to fetch employees."
	MsgCanceled      = "Request canceled."
	MsgUnexpectedErr = "Unexpected error."
)

// UserMessage converts err into the message shown to the user for the
// operation that produced it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var de *DomainError
	if !errors.As(err, &de) {
		if errors.Is(err, context.Canceled) {
			return MsgCanceled
		}
		return err.Error()
	}

	switch de.Code {
	case ErrAuthRejected.Code:
		if de.Details != "" {
			return de.Details
		}
		return MsgLoginFailed
	case ErrAuthTransport.Code:
		if de.Cause != nil {
			return de.Cause.Error()
		}
		return MsgLoginFailed
	case ErrAuthMalformedResponse.Code:
		return MsgLoginFailed
	case ErrNoToken.Code:
		return MsgNoToken
	case ErrFetchHTTPStatus.Code, ErrFetchTransport.Code, ErrFetchMalformedResponse.Code:
		return MsgFetchFailed
	case ErrCanceled.Code:
		return MsgCanceled
	case ErrInvalidArgument.Code:
		if de.Details != "" {
			return de.Details
		}
		return de.Message
	default:
		if de.Message != "" {
			return de.Message
		}
		return MsgUnexpectedErr
	}
}
