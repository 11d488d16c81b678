package htreemap

// EntryIterator is a live, best-effort snapshot view over the map. It
// traverses segments in order; within a segment it snapshots
// the set of occupied indices once, then reads one leaf at a time under a
// freshly re-acquired read lock, so cross-leaf atomicity is not provided
// and a concurrently removed index is simply skipped.
type EntryIterator[K, V any] struct {
	m *HMap[K, V]

	segIdx  int
	indices []int64
	pos     int

	curTriples []triple[K, V]
	curPos     int

	lastKey K
	hasLast bool
	done    bool
}

// Entries returns a live iterator over the map's (key, value) pairs.
func (m *HMap[K, V]) Entries() *EntryIterator[K, V] {
	it := &EntryIterator[K, V]{m: m}
	it.advanceSegment()
	return it
}

func (it *EntryIterator[K, V]) advanceSegment() {
	for it.segIdx < len(it.m.segments) {
		seg := it.m.segments[it.segIdx]
		seg.lock.RLock()
		var indices []int64
		_ = seg.indexTree.ForEachKeyValue(func(idx, _ int64) error {
			indices = append(indices, idx)
			return nil
		})
		seg.lock.RUnlock()

		it.indices = indices
		it.pos = 0
		it.curTriples = nil
		it.curPos = 0
		if len(indices) > 0 {
			return
		}
		it.segIdx++
	}
	it.done = true
}

func (it *EntryIterator[K, V]) loadNextLeaf() bool {
	seg := it.m.segments[it.segIdx]
	for it.pos < len(it.indices) {
		index := it.indices[it.pos]
		it.pos++

		seg.lock.RLock()
		leafRecid, err := seg.indexTree.Get(index)
		if err != nil || leafRecid == 0 {
			seg.lock.RUnlock()
			continue
		}
		triples, err := it.m.readLeaf(seg, leafRecid)
		seg.lock.RUnlock()
		if err != nil || len(triples) == 0 {
			continue
		}
		it.curTriples = triples
		it.curPos = 0
		return true
	}
	return false
}

// Next yields the next (key, value) pair, or ok=false once exhausted.
func (it *EntryIterator[K, V]) Next() (key K, value V, ok bool, err error) {
	for !it.done {
		if it.curPos < len(it.curTriples) {
			t := it.curTriples[it.curPos]
			it.curPos++

			seg := it.m.segments[it.segIdx]
			seg.lock.RLock()
			v, err := it.m.unwrapValue(seg, t)
			seg.lock.RUnlock()
			if err != nil {
				return key, value, false, err
			}
			it.lastKey, it.hasLast = t.Key, true
			return t.Key, v, true, nil
		}
		if it.loadNextLeaf() {
			continue
		}
		it.segIdx++
		it.advanceSegment()
	}
	return key, value, false, nil
}

// Remove removes the entry most recently returned by Next, by remembering
// the last yielded key and removing it by key. Calling it without a
// preceding Next fails with ErrIteratorState.
func (it *EntryIterator[K, V]) Remove() (bool, error) {
	if !it.hasLast {
		return false, ErrIteratorState
	}
	it.hasLast = false
	return it.m.RemoveBoolean(it.lastKey)
}

// KeyIterator adapts EntryIterator to yield only keys.
type KeyIterator[K, V any] struct{ inner *EntryIterator[K, V] }

func (m *HMap[K, V]) Keys() *KeyIterator[K, V] { return &KeyIterator[K, V]{inner: m.Entries()} }

func (it *KeyIterator[K, V]) Next() (K, bool, error) {
	k, _, ok, err := it.inner.Next()
	return k, ok, err
}

func (it *KeyIterator[K, V]) Remove() (bool, error) { return it.inner.Remove() }

// ValueIterator adapts EntryIterator to yield only values.
type ValueIterator[K, V any] struct{ inner *EntryIterator[K, V] }

func (m *HMap[K, V]) Values() *ValueIterator[K, V] { return &ValueIterator[K, V]{inner: m.Entries()} }

func (it *ValueIterator[K, V]) Next() (V, bool, error) {
	_, v, ok, err := it.inner.Next()
	return v, ok, err
}

func (it *ValueIterator[K, V]) Remove() (bool, error) { return it.inner.Remove() }

// ForEach drains an EntryIterator, calling fn for every entry. It stops and
// returns fn's error, or any error the iterator itself raised.
func (m *HMap[K, V]) ForEach(fn func(key K, value V) error) error {
	it := m.Entries()
	for {
		k, v, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
}
