package htreemap

import "errors"

// Invalid-argument errors.
var (
	ErrKeyAbsent    = errors.New("htreemap: key must not be absent")
	ErrValueAbsent  = errors.New("htreemap: value must not be absent")
	ErrBadGeometry  = errors.New("htreemap: invalid concShift/dirShift/levels")
	ErrHashUnstable = errors.New("htreemap: key hash changed across serialization round-trip")
	ErrKeySetValue  = errors.New("htreemap: KeySet entries may only hold the present marker")
)

// Illegal-state errors.
var (
	ErrIteratorState = errors.New("htreemap: Remove called with no preceding Next")
	ErrClosed        = errors.New("htreemap: map is closed")
)

// ErrCorruption wraps a non-recoverable structural inconsistency detected
// during normal operation or Verify. It is always returned to
// the caller except when encountered during background eviction, where
// it is logged and the sweep continues.
type ErrCorruption struct {
	Detail string
	Err    error
}

func (e *ErrCorruption) Error() string {
	if e.Err != nil {
		return "htreemap: data corruption: " + e.Detail + ": " + e.Err.Error()
	}
	return "htreemap: data corruption: " + e.Detail
}

func (e *ErrCorruption) Unwrap() error { return e.Err }

func corrupt(detail string, err error) error {
	return &ErrCorruption{Detail: detail, Err: err}
}
