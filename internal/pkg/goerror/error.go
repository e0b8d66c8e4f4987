package goerror

import (
	"errors"
	"fmt"
)

// Type classifies errors into high-level buckets.
type Type int

const (
	// TypeServer represents failures of the platform or the crypto primitives.
	TypeServer Type = iota
	// TypeValidation represents inputs the caller must fix.
	TypeValidation
	// TypeCanceled represents work abandoned because the caller gave up.
	TypeCanceled
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	case TypeCanceled:
		return "ERROR_TYPE_CANCELED"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier for a failure class.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidArgument indicates an input of the wrong shape or value.
	CodeInvalidArgument
	// CodeRandomnessUnavailable indicates the secure random source failed.
	CodeRandomnessUnavailable
	// CodeDerivationFailed indicates the key derivation primitive failed.
	CodeDerivationFailed
	// CodeCanceled indicates the context ended before work could start.
	CodeCanceled
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "ERROR_CODE_INVALID_ARGUMENT"
	case CodeRandomnessUnavailable:
		return "ERROR_CODE_RANDOMNESS_UNAVAILABLE"
	case CodeDerivationFailed:
		return "ERROR_CODE_DERIVATION_FAILED"
	case CodeCanceled:
		return "ERROR_CODE_CANCELED"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error is a structured error carrying a type, a stable code and an optional
// wrapped cause.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeCanceled:
		return "Operation canceled"
	case TypeServer:
		return "Internal error"
	default:
		return "Unknown error"
	}
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.code.String(),
		e.msg,
		e.err,
	)
}

// Msg returns the short message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

func new(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error. code should be one of the server
// codes (CodeInternal, CodeRandomnessUnavailable, CodeDerivationFailed).
func NewServer(err error, code Code) error {
	return new(err, "Internal server error", TypeServer, code)
}

// NewInvalidArgument creates a validation error wrapping err.
func NewInvalidArgument(err error) error {
	return new(err, "Invalid argument", TypeValidation, CodeInvalidArgument)
}

// NewCanceled creates a canceled error wrapping the context error.
func NewCanceled(err error) error {
	return new(err, "Operation canceled", TypeCanceled, CodeCanceled)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}
