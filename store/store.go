// Package store defines the recid-addressed blob store contract HMap's
// segments are built on, plus a reference in-memory
// implementation used by tests and by embedders who don't need
// persistence.
package store

import "errors"

// ErrClosed is returned by any Store method called after Close.
var ErrClosed = errors.New("store: closed")

// ErrNotFound is returned by Get/Update/Delete for an unknown recid.
var ErrNotFound = errors.New("store: recid not found")

// Recid is an opaque 64-bit store identifier. 0 is never a valid recid.
type Recid = int64

// Store maps recids to opaque blobs. One instance per segment; instances
// may alias across segments.
type Store interface {
	// Put writes blob as a new record and returns its recid.
	Put(blob []byte) (Recid, error)
	// Get reads the record at recid, or (nil, false, nil) if absent.
	Get(recid Recid) ([]byte, bool, error)
	// Update overwrites the record at recid. recid must already exist,
	// including ids returned by Preallocate (whose contents are
	// uninitialized until the first Update).
	Update(recid Recid, blob []byte) error
	// Preallocate reserves a recid whose contents are uninitialized. Used
	// by the create-queue two-phase leaf/node wiring.
	Preallocate() (Recid, error)
	// Delete removes the record at recid.
	Delete(recid Recid) error
	// IsClosed reports whether the store has been closed.
	IsClosed() bool
	// AssertThreadSafe panics if the store was not constructed for
	// concurrent use; a no-op for naturally thread-safe stores.
	AssertThreadSafe()
}

// SizeReporter is an optional capability: stores that can report free and
// total space support size-based eviction and compaction
// threshold checks.
type SizeReporter interface {
	FileTail() int64
	GetFreeSize() int64
	GetTotalSize() int64
}

// Compactable is an optional capability: stores that support reclaiming
// free space support HMap's expireCompactThreshold trigger.
type Compactable interface {
	Compact() error
}
