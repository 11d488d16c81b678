package htreemap

import (
	"encoding/binary"

	"github.com/Krishna8167/htreemap/store"
)

// counter is a per-segment entry-count cell, initialized at a
// caller-supplied recid via the segment's store. All
// counter mutations happen while the segment's write lock is already
// held by the calling operation, so the in-memory value itself needs no
// additional synchronization; it is still persisted through to the
// store on every change so a reopened store reflects the last count.
type counter struct {
	st    store.Store
	recid int64
	val   int64
}

func newCounter(st store.Store, recid int64) (*counter, error) {
	c := &counter{st: st, recid: recid}
	b, ok, err := st.Get(recid)
	if err != nil {
		return nil, err
	}
	if ok && len(b) == 8 {
		c.val = int64(binary.BigEndian.Uint64(b))
	}
	return c, nil
}

func (c *counter) get() int64 { return c.val }

func (c *counter) add(delta int64) error {
	c.val += delta
	return c.flush()
}

func (c *counter) set(v int64) error {
	c.val = v
	return c.flush()
}

func (c *counter) flush() error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(c.val))
	return c.st.Update(c.recid, b[:])
}
