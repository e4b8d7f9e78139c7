package logstore

import (
	"errors"
	"fmt"
)

// Kind classifies the errors the public surface can signal, per the error taxonomy.
type Kind int

const (
	KindNone Kind = iota
	KindFileNotFound
	KindLogFileExistsAlready
	KindInvalidLogFileFormat
	KindFileVersionNotSupported
	KindReadOnlyViolation
	KindArgumentOutOfRange
	KindAlreadyDisposed
	KindLogFileError
)

func (k Kind) String() string {
	switch k {
	case KindFileNotFound:
		return "FileNotFound"
	case KindLogFileExistsAlready:
		return "LogFileExistsAlready"
	case KindInvalidLogFileFormat:
		return "InvalidLogFileFormat"
	case KindFileVersionNotSupported:
		return "FileVersionNotSupported"
	case KindReadOnlyViolation:
		return "ReadOnlyViolation"
	case KindArgumentOutOfRange:
		return "ArgumentOutOfRange"
	case KindAlreadyDisposed:
		return "AlreadyDisposed"
	case KindLogFileError:
		return "LogFileError"
	default:
		return "None"
	}
}

// Error is the typed error surfaced by every public operation on the core. It carries a
// Kind for programmatic dispatch, a human-readable Message, and (for wrapped engine
// failures) the underlying Cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can write
// errors.Is(err, logstore.ErrAlreadyDisposed) against the sentinel values below.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.Kind == e.Kind
	}
	return false
}

func newErr(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapErr(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// wrapEngineErr wraps an underlying engine failure as a KindLogFileError, preserving the
// cause for errors.Is/As while giving callers a stable, typed error to switch on.
func wrapEngineErr(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return wrapErr(KindLogFileError, op, cause)
}

// Sentinel values for errors.Is comparisons against a Kind, independent of Message/Cause.
var (
	ErrFileNotFound            = newErr(KindFileNotFound, "")
	ErrLogFileExistsAlready    = newErr(KindLogFileExistsAlready, "")
	ErrInvalidLogFileFormat    = newErr(KindInvalidLogFileFormat, "")
	ErrFileVersionNotSupported = newErr(KindFileVersionNotSupported, "")
	ErrReadOnlyViolation       = newErr(KindReadOnlyViolation, "")
	ErrArgumentOutOfRange      = newErr(KindArgumentOutOfRange, "")
	ErrAlreadyDisposed         = newErr(KindAlreadyDisposed, "")
)
