package htreemap

// Remove deletes key and returns its previous value, if any.
func (m *HMap[K, V]) Remove(key K) (V, bool, error) {
	var zero V
	if err := m.checkClosed(); err != nil {
		return zero, false, err
	}
	if isAbsent(key) {
		return zero, false, ErrKeyAbsent
	}
	segIdx, index, _ := m.route(key)
	seg := m.segments[segIdx]
	seg.lock.Lock()
	defer seg.lock.Unlock()
	if m.closed {
		return zero, false, ErrClosed
	}
	if err := m.maybeForegroundEvict(seg); err != nil {
		return zero, false, err
	}

	leafRecid, err := seg.indexTree.Get(index)
	if err != nil {
		return zero, false, err
	}
	if leafRecid == 0 {
		return zero, false, nil
	}
	triples, err := m.readLeaf(seg, leafRecid)
	if err != nil {
		return zero, false, err
	}
	for i := range triples {
		if m.cfg.KeyHasher.Equals(triples[i].Key, key) {
			v, err := m.removeEntryFromLeaf(seg, index, leafRecid, triples, i, false)
			return v, true, err
		}
	}
	return zero, false, nil
}

// RemoveBoolean removes key and reports whether it was present, without
// materializing the old value.
func (m *HMap[K, V]) RemoveBoolean(key K) (bool, error) {
	_, ok, err := m.Remove(key)
	return ok, err
}

// RemoveValue removes key only if its current value equals value per the
// configured ValueHasher.
func (m *HMap[K, V]) RemoveValue(key K, value V) (bool, error) {
	if err := m.checkClosed(); err != nil {
		return false, err
	}
	if isAbsent(key) {
		return false, ErrKeyAbsent
	}
	segIdx, index, _ := m.route(key)
	seg := m.segments[segIdx]
	seg.lock.Lock()
	defer seg.lock.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	if err := m.maybeForegroundEvict(seg); err != nil {
		return false, err
	}

	leafRecid, err := seg.indexTree.Get(index)
	if err != nil {
		return false, err
	}
	if leafRecid == 0 {
		return false, nil
	}
	triples, err := m.readLeaf(seg, leafRecid)
	if err != nil {
		return false, err
	}
	for i := range triples {
		if !m.cfg.KeyHasher.Equals(triples[i].Key, key) {
			continue
		}
		cur, err := m.unwrapValue(seg, triples[i])
		if err != nil {
			return false, err
		}
		if !m.cfg.ValueHasher.Equals(cur, value) {
			return false, nil
		}
		_, err = m.removeEntryFromLeaf(seg, index, leafRecid, triples, i, false)
		return err == nil, err
	}
	return false, nil
}

// removeEntryFromLeaf unlinks the triple at matchIdx. evicted=true means the queue
// node has already been consumed by the caller's TakeUntil walk and must
// not be removed again.
func (m *HMap[K, V]) removeEntryFromLeaf(seg *segment[K, V], index, leafRecid int64, triples []triple[K, V], matchIdx int, evicted bool) (V, error) {
	seg.assertWriteLocked()
	t := triples[matchIdx]
	oldVal, err := m.unwrapValue(seg, t)
	if err != nil {
		return oldVal, err
	}

	if !evicted {
		tag, nodeRecid, err := decodeExpireID(t.ExpireID)
		if err != nil {
			return oldVal, err
		}
		if tag != tagNone {
			if q := seg.queueByTag(tag); q != nil {
				if _, err := q.Remove(nodeRecid, true); err != nil {
					return oldVal, err
				}
			}
		}
	}

	if len(triples) == 1 {
		if err := seg.indexTree.RemoveKey(index); err != nil {
			return oldVal, err
		}
		if err := seg.store.Delete(leafRecid); err != nil {
			return oldVal, err
		}
	} else {
		rest := append(append([]triple[K, V]{}, triples[:matchIdx]...), triples[matchIdx+1:]...)
		if err := m.writeLeaf(seg, leafRecid, rest); err != nil {
			return oldVal, err
		}
	}

	if m.codec.hasValues && !m.codec.valueInline {
		if err := seg.store.Delete(t.ValueRecid); err != nil {
			return oldVal, err
		}
	}
	if seg.counter != nil {
		if err := seg.counter.add(-1); err != nil {
			return oldVal, err
		}
	}
	m.cfg.Recorder.Remove()
	if evicted {
		m.cfg.Recorder.Evicted(seg.id)
	}
	notifyAll(m.cfg.Listeners, t.Key, oldVal, true, oldVal, false, evicted)
	return oldVal, nil
}
