package domain

import "errors"

// Error kinds returned by the storage core. Callers match them with
// errors.Is; the concrete error usually wraps one of these with context.
var (
	ErrInvalidDocument  = errors.New("invalid document")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidName      = errors.New("invalid collection name")
	ErrIO               = errors.New("i/o error")
	ErrDiskFull         = errors.New("disk full")
	ErrPermissionDenied = errors.New("permission denied")
	ErrCorrupt          = errors.New("corrupt collection artifact")
)

// IsPersistenceError reports whether err is one of the durable-write failures.
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrIO) || errors.Is(err, ErrDiskFull) || errors.Is(err, ErrPermissionDenied)
}
