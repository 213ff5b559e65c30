package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes lifecycle failure semantics across aggregates.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "validation"
	CodeNotFound            ErrorCode = "not_found"
	CodeInvalidTransition   ErrorCode = "invalid_transition"
	CodeMissingPrecondition ErrorCode = "missing_precondition"
	CodeInvariantViolation  ErrorCode = "invariant_violation"
	CodeCascadeFailure      ErrorCode = "cascade_failure"
	CodeInternal            ErrorCode = "internal"
)

// Error is the canonical domain error wrapper. Target names the field or
// aggregate the failure refers to so the boundary layer can map it.
type Error struct {
	Code    ErrorCode
	Op      string
	Target  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a domain error with explicit code + operation.
func NewError(code ErrorCode, op, target, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Target:  strings.TrimSpace(target),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// InvalidTransition reports a status pair that is not in the transition table.
func InvalidTransition(op string, from, to string) error {
	return NewError(CodeInvalidTransition, op, "status", fmt.Sprintf("transition from %q to %q is not allowed", from, to), nil)
}

// MissingPrecondition reports a guard whose required decision or link is absent.
func MissingPrecondition(op, target, message string) error {
	return NewError(CodeMissingPrecondition, op, target, message, nil)
}

// InvariantViolation reports broken aggregate state detected before persistence.
func InvariantViolation(op, target, message string) error {
	return NewError(CodeInvariantViolation, op, target, message, nil)
}

// ValidationError reports rejected input at a service boundary.
func ValidationError(op, target, message string) error {
	return NewError(CodeValidation, op, target, message, nil)
}

// NotFound reports a missing referenced aggregate.
func NotFound(op, target, id string) error {
	return NewError(CodeNotFound, op, target, fmt.Sprintf("%s %s not found", target, id), nil)
}

// CascadeFailure wraps a downstream save failure surfaced mid-cascade. The
// transition has already been applied in memory and possibly partially
// persisted; callers get the cause but no rollback.
func CascadeFailure(op, target string, cause error) error {
	return NewError(CodeCascadeFailure, op, target, "cascade aborted", cause)
}

// Wrap annotates an existing error with domain error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, "", err.Error(), err)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var domErr *Error
	if !errors.As(err, &domErr) {
		return false
	}
	return domErr.Code == code
}

// CodeOf extracts the domain error code when available.
func CodeOf(err error) ErrorCode {
	var domErr *Error
	if !errors.As(err, &domErr) {
		return ""
	}
	return domErr.Code
}

// TargetOf extracts the target field when available.
func TargetOf(err error) string {
	var domErr *Error
	if !errors.As(err, &domErr) {
		return ""
	}
	return domErr.Target
}
