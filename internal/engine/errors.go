package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/dynq/internal/types"
)

// RuntimeError represents a failure while evaluating a compiled tree.
//
// Runtime errors include:
//   - Null reference: a member was reached through a null value
//   - Overflow: a checked conversion or aggregate sum did not fit
//   - Divide by zero: integral or decimal division by zero
//   - Empty sequence: Min, Max or Average over no elements
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Node is the formatted expression that failed, if known.
	Node string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	ErrCodeNullReference    RuntimeErrorCode = "NULL_REFERENCE"
	ErrCodeOverflow         RuntimeErrorCode = "OVERFLOW"
	ErrCodeDivideByZero     RuntimeErrorCode = "DIVIDE_BY_ZERO"
	ErrCodeInvalidCast      RuntimeErrorCode = "INVALID_CAST"
	ErrCodeIndexOutOfRange  RuntimeErrorCode = "INDEX_OUT_OF_RANGE"
	ErrCodeEmptySequence    RuntimeErrorCode = "EMPTY_SEQUENCE"
	ErrCodeUnboundParameter RuntimeErrorCode = "UNBOUND_PARAMETER"
	ErrCodeMemberFailed     RuntimeErrorCode = "MEMBER_FAILED"
	ErrCodeUnsupported      RuntimeErrorCode = "UNSUPPORTED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ErrorCode returns the code of the RuntimeError in err's chain.
func ErrorCode(err error) (RuntimeErrorCode, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}

// IsNullReference returns true if the error is a null reference error.
// Uses errors.As to handle wrapped errors.
func IsNullReference(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == ErrCodeNullReference
}

// IsOverflow returns true if the error is an arithmetic overflow.
func IsOverflow(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == ErrCodeOverflow
}

func newError(code RuntimeErrorCode, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// classify wraps an error returned by a member or a value conversion.
func classify(err error, fallback RuntimeErrorCode) *RuntimeError {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re
	}
	code := fallback
	switch {
	case types.IsNilTarget(err):
		code = ErrCodeNullReference
	case errors.Is(err, types.ErrOverflow):
		code = ErrCodeOverflow
	}
	return &RuntimeError{Code: code, Message: err.Error(), Err: err}
}
