// Package apperr defines the structured errors the HTTP layer maps onto
// status codes. Domain and client packages return these so handlers never
// guess a status from error text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code string

const (
	CodeInvalidRequest Code = "INVALID_REQUEST"  // 400
	CodeNotFound       Code = "NOT_FOUND"        // 404
	CodeUpstream       Code = "UPSTREAM_ERROR"   // 502
	CodeUpstreamBusy   Code = "UPSTREAM_BUSY"    // 503
	CodeTimeout        Code = "UPSTREAM_TIMEOUT" // 504
	CodeInternal       Code = "INTERNAL"         // 500
)

// Error is a structured error with an HTTP status and optional detail
// fields for the JSON error body.
type Error struct {
	Code    Code
	Status  int
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// NewInvalidRequest is a 400 for malformed or out-of-range parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Status: http.StatusBadRequest, Message: msg}
}

// NewNotFound is a 404 for an unknown gene, transcript, or region.
func NewNotFound(kind, identifier string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewUpstream is a 502 for a failed annotation or sequence-ID request.
func NewUpstream(service string, cause error) *Error {
	msg := fmt.Sprintf("%s request failed", service)
	if cause != nil {
		msg = fmt.Sprintf("%s request failed: %v", service, cause)
	}
	return &Error{
		Code:    CodeUpstream,
		Status:  http.StatusBadGateway,
		Message: msg,
		Details: map[string]any{"service": service},
		cause:   cause,
	}
}

// NewUpstreamBusy is a 503 for a rate-limited upstream.
func NewUpstreamBusy(service string) *Error {
	return &Error{
		Code:    CodeUpstreamBusy,
		Status:  http.StatusServiceUnavailable,
		Message: fmt.Sprintf("%s is rate limiting requests, try again shortly", service),
		Details: map[string]any{"service": service},
	}
}

// NewTimeout is a 504 for an upstream poll that exceeded its deadline.
func NewTimeout(service string) *Error {
	return &Error{
		Code:    CodeTimeout,
		Status:  http.StatusGatewayTimeout,
		Message: fmt.Sprintf("%s did not respond in time", service),
		Details: map[string]any{"service": service},
	}
}

// NewInternal is a 500; the cause is kept for logging, not the client body.
func NewInternal(cause error) *Error {
	e := &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "an internal error occurred",
		Details: map[string]any{},
		cause:   cause,
	}
	if cause != nil {
		e.Details["internal_error"] = cause.Error()
	}
	return e
}

// Is reports whether err (or anything it wraps) is an *Error with code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
