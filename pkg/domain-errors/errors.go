// Package domainerrors carries coded errors that services return and the CLI
// maps to exit statuses and run-summary buckets.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeMissingRequiredField: a staging record lacks a field the merge needs.
	// Fatal for that record only.
	CodeMissingRequiredField Code = "missing_required_field"
	// CodeReferentialIntegrity: a staging reference could not be mapped to a
	// canonical id in this run. Fatal for that record only.
	CodeReferentialIntegrity Code = "referential_integrity"
	// CodeInvalidInput: malformed external input (ids, source names).
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	// CodeDatabase: connectivity loss or constraint violation. Aborts the run.
	CodeDatabase Code = "database"
	// CodeLockHeld: another run of the same source holds the run lock.
	CodeLockHeld Code = "lock_held"
	CodeInternal Code = "internal"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when none is present.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any coded error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// IsRecordError reports whether err only invalidates the record being
// processed. The batch continues past these; everything else aborts it.
func IsRecordError(err error) bool {
	switch CodeOf(err) {
	case CodeMissingRequiredField, CodeReferentialIntegrity, CodeInvalidInput:
		return true
	default:
		return false
	}
}
