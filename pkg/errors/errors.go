// Package errors provides structured error types for the flowcanvas CLI and
// HTTP API.
//
// Domain packages return plain sentinel errors (for example
// [flow.ErrSelfLoop]); this package attaches machine-readable codes to them
// at the surface, so callers can branch on a code and show a clean message.
//
// # Error Codes
//
// Codes follow a prefix convention:
//   - INVALID_*: input validation failures
//   - CONNECTION_*: rejected edge creation
//   - NOT_FOUND, CORRUPT_SNAPSHOT: persistence outcomes
//   - REMOTE_*: remote save
//   - INTERNAL_ERROR: anything unexpected
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLabel, "label cannot be empty")
//	if errors.Is(err, errors.ErrCodeInvalidLabel) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to reach %s", addr)
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidLabel    Code = "INVALID_LABEL"
	ErrCodeInvalidFlowName Code = "INVALID_FLOW_NAME"
	ErrCodeInvalidKind     Code = "INVALID_KIND"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Connection errors
	ErrCodeSelfLoop         Code = "CONNECTION_SELF_LOOP"
	ErrCodeMissingEndpoint  Code = "CONNECTION_MISSING_ENDPOINT"
	ErrCodeCapacityExceeded Code = "CONNECTION_CAPACITY_EXCEEDED"

	// Persistence errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeCorruptSnapshot Code = "CORRUPT_SNAPSHOT"
	ErrCodeNetwork         Code = "NETWORK_ERROR"

	// Remote save
	ErrCodeRemoteNotConfigured Code = "REMOTE_NOT_CONFIGURED"

	// Editor state
	ErrCodeLayoutPending Code = "LAYOUT_PENDING"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// FromConnection attaches a CONNECTION_* code to an error returned by
// [flow.Graph.Connect]. Errors that are not connection rejections are
// returned unchanged.
func FromConnection(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flow.ErrSelfLoop):
		return Wrap(ErrCodeSelfLoop, err, "a node cannot connect to itself")
	case errors.Is(err, flow.ErrMissingEndpoint):
		return Wrap(ErrCodeMissingEndpoint, err, "both endpoints must exist")
	case errors.Is(err, flow.ErrCapacityExceeded):
		return Wrap(ErrCodeCapacityExceeded, err, "source node has no free outgoing slot")
	default:
		return err
	}
}

// HTTPStatus maps an error to the status code used by the HTTP API.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidLabel, ErrCodeInvalidFlowName,
		ErrCodeInvalidKind, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeSelfLoop, ErrCodeMissingEndpoint, ErrCodeCapacityExceeded:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeLayoutPending:
		return http.StatusConflict
	case ErrCodeRemoteNotConfigured:
		return http.StatusNotImplemented
	case ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
