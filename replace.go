package htreemap

// PutIfAbsent inserts value only if key is absent, returning the existing
// value when it was already present.
func (m *HMap[K, V]) PutIfAbsent(key K, value V) (V, bool, error) {
	var zero V
	if err := m.checkClosed(); err != nil {
		return zero, false, err
	}
	if isAbsent(key) {
		return zero, false, ErrKeyAbsent
	}
	if isAbsent(value) {
		return zero, false, ErrValueAbsent
	}
	if err := m.checkHashStability(key); err != nil {
		return zero, false, err
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

	if leafRecid, err := seg.indexTree.Get(index); err != nil {
		return zero, false, err
	} else if leafRecid != 0 {
		triples, err := m.readLeaf(seg, leafRecid)
		if err != nil {
			return zero, false, err
		}
		for i := range triples {
			if m.cfg.KeyHasher.Equals(triples[i].Key, key) {
				v, err := m.unwrapValue(seg, triples[i])
				return v, true, err
			}
		}
	}
	_, _, err := m.putLocked(seg, index, key, value, false, false)
	return zero, false, err
}

// PutIfAbsentBoolean is PutIfAbsent without materializing the existing
// value.
func (m *HMap[K, V]) PutIfAbsentBoolean(key K, value V) (bool, error) {
	if err := m.checkClosed(); err != nil {
		return false, err
	}
	if isAbsent(key) {
		return false, ErrKeyAbsent
	}
	if isAbsent(value) {
		return false, ErrValueAbsent
	}
	if err := m.checkHashStability(key); err != nil {
		return false, err
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

	if leafRecid, err := seg.indexTree.Get(index); err != nil {
		return false, err
	} else if leafRecid != 0 {
		triples, err := m.readLeaf(seg, leafRecid)
		if err != nil {
			return false, err
		}
		for i := range triples {
			if m.cfg.KeyHasher.Equals(triples[i].Key, key) {
				return true, nil
			}
		}
	}
	_, _, err := m.putLocked(seg, index, key, value, false, false)
	return false, err
}

// ReplaceIfEquals replaces key's value with newVal only if its current
// value equals oldVal per the configured ValueHasher.
func (m *HMap[K, V]) ReplaceIfEquals(key K, oldVal, newVal V) (bool, error) {
	if err := m.checkClosed(); err != nil {
		return false, err
	}
	if isAbsent(key) {
		return false, ErrKeyAbsent
	}
	if isAbsent(newVal) {
		return false, ErrValueAbsent
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
		if !m.cfg.ValueHasher.Equals(cur, oldVal) {
			return false, nil
		}
		_, _, err = m.putLocked(seg, index, key, newVal, false, false)
		return err == nil, err
	}
	return false, nil
}

// Replace overwrites key's value unconditionally if present, returning
// the previous value.
func (m *HMap[K, V]) Replace(key K, newVal V) (V, bool, error) {
	var zero V
	if err := m.checkClosed(); err != nil {
		return zero, false, err
	}
	if isAbsent(key) {
		return zero, false, ErrKeyAbsent
	}
	if isAbsent(newVal) {
		return zero, false, ErrValueAbsent
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
		if !m.cfg.KeyHasher.Equals(triples[i].Key, key) {
			continue
		}
		cur, err := m.unwrapValue(seg, triples[i])
		if err != nil {
			return zero, false, err
		}
		_, _, err = m.putLocked(seg, index, key, newVal, false, false)
		return cur, true, err
	}
	return zero, false, nil
}
