// Package indextree defines the sparse index→recid mapping HMap's
// segments route through, plus two reference implementations:
// a plain mutex+map default and a github.com/google/btree-backed variant.
package indextree

// IndexTree maps a 64-bit index to a 64-bit
// recid. One instance per segment; Get returns 0 for an absent index,
// since 0 is never a valid recid.
type IndexTree interface {
	Get(index int64) (int64, error)
	Put(index int64, recid int64) error
	RemoveKey(index int64) error
	IsEmpty() (bool, error)
	// ForEachKeyValue visits every (index, recid) pair. Iteration order is
	// unspecified.
	ForEachKeyValue(fn func(index, recid int64) error) error
}

// Verifiable is an optional capability: index trees that can self-check
// structural integrity support HMap.Verify's component (a).
type Verifiable interface {
	Verify() error
}
