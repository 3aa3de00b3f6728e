// Package errors provides custom error types for the Fixxy admin dashboard.
//
// Every call to the complaint API fails in one of three ways, and each screen
// reacts to them differently:
//   - TransportError: the request never produced a usable response
//   - ShapeError: the response did not match the expected schema
//   - RejectedError: the API answered but without its success message
//
// MissingParamError covers the detail route reached without both identifiers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// TransportError indicates that a request to the complaint API failed before
// a usable response was obtained.
//
// This error is returned when:
//   - The connection fails or the request context is cancelled
//   - The API answers with a non-2xx status and no business body applies
//   - The response body cannot be read or is not JSON
type TransportError struct {
	Op         string // API operation, e.g. "list complaints"
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: HTTP status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": transport failure"
}

// Unwrap returns the wrapped error for error chain inspection
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error with context
func NewTransportError(op string, statusCode int, err error) *TransportError {
	return &TransportError{Op: op, StatusCode: statusCode, Err: err}
}

// ShapeError indicates that a response body did not match the schema the
// dashboard expects for that endpoint.
//
// Details holds one line per schema violation.
type ShapeError struct {
	Op      string
	Details []string
}

func (e *ShapeError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: unexpected response format", e.Op)
	}
	return fmt.Sprintf("%s: unexpected response format: %s", e.Op, strings.Join(e.Details, "; "))
}

// NewShapeError creates a new shape error with context
func NewShapeError(op string, details ...string) *ShapeError {
	return &ShapeError{Op: op, Details: details}
}

// RejectedError indicates that the API processed the request but did not
// answer with the success sentinel for that operation, e.g. wrong
// credentials on login.
//
// Message is the server-provided reason and may be empty.
type RejectedError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected (HTTP status %d)", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
}

// NewRejectedError creates a new rejected error with context
func NewRejectedError(op string, statusCode int, message string) *RejectedError {
	return &RejectedError{Op: op, StatusCode: statusCode, Message: message}
}

// MissingParamError indicates that a route was reached without one of the
// identifiers it needs.
type MissingParamError struct {
	Params []string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("missing route parameter(s): %s", strings.Join(e.Params, ", "))
}

// NewMissingParamError creates a new missing parameter error
func NewMissingParamError(params ...string) *MissingParamError {
	return &MissingParamError{Params: params}
}

// IsTransport checks if the error chain contains a TransportError
func IsTransport(err error) bool {
	var target *TransportError
	return stderrors.As(err, &target)
}

// IsShape checks if the error chain contains a ShapeError
func IsShape(err error) bool {
	var target *ShapeError
	return stderrors.As(err, &target)
}

// AsRejected returns the RejectedError in the chain, if any
func AsRejected(err error) (*RejectedError, bool) {
	var target *RejectedError
	ok := stderrors.As(err, &target)
	return target, ok
}

// IsMissingParam checks if the error chain contains a MissingParamError
func IsMissingParam(err error) bool {
	var target *MissingParamError
	return stderrors.As(err, &target)
}
