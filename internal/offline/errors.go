package offline

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is or the Is* helpers to classify a returned error.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPersistFailed      = errors.New("persist failed")
	ErrReadFailed         = errors.New("read failed")
	ErrDeleteFailed       = errors.New("delete failed")
)

// errClosedDuringOpen fails the waiters of an open that Close overtook.
var errClosedDuringOpen = errors.New("store closed while opening")

// Error describes a failed offline store operation.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Op names the public operation (e.g. "save invoice").
	Op string

	// ID is the offending invoice id, empty when not applicable.
	ID string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.ID != "" {
		msg = fmt.Sprintf("%s (id=%s)", msg, e.ID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// IsStorageUnavailable reports whether err means the database could not be opened.
func IsStorageUnavailable(err error) bool { return errors.Is(err, ErrStorageUnavailable) }

// IsPersistFailed reports whether err came from a failed save.
func IsPersistFailed(err error) bool { return errors.Is(err, ErrPersistFailed) }

// IsReadFailed reports whether err came from a failed read.
func IsReadFailed(err error) bool { return errors.Is(err, ErrReadFailed) }

// IsDeleteFailed reports whether err came from a failed delete.
func IsDeleteFailed(err error) bool { return errors.Is(err, ErrDeleteFailed) }

func newError(kind error, op, id string, cause error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Err: cause}
}
