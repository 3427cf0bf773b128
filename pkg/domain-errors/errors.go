// Package domainerrors provides coded errors for domain and service layers.
//
// Stores return infrastructure sentinels (pkg/platform/sentinel); services
// translate those into coded errors so callers can branch on the violation
// class without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeConstraintViolation covers unique-key and referential-integrity
	// breaches: duplicate tax_id, duplicate (account_id, as_of), foreign key
	// to a nonexistent parent.
	CodeConstraintViolation Code = "constraint_violation"

	// CodeInvalidState covers rejected lifecycle transitions: mutating a
	// terminal payment order, re-assigning a billed card transaction,
	// non-contiguous installment numbering.
	CodeInvalidState Code = "invalid_state"

	// CodeDomainValue covers values outside a closed enumeration, negative
	// amounts where positivity is implied, malformed currency codes.
	CodeDomainValue Code = "domain_value"

	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal"
)

// Error carries a code, a human-readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err (or any wrapped error) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
