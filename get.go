package htreemap

// Get returns the current value for key, or absent. If a value loader is
// configured and the key is missing, it synthesizes and inserts one.
func (m *HMap[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if err := m.checkClosed(); err != nil {
		return zero, false, err
	}
	segIdx, index, _ := m.route(key)
	seg := m.segments[segIdx]

	v, ok, missed, err := m.getLocked(seg, index, key)
	if err != nil || !missed {
		return v, ok, err
	}
	if m.cfg.ValueLoader == nil {
		return zero, false, nil
	}
	return m.loadAndInsert(seg, index, key)
}

// getLocked takes a write lock iff getQueue is configured or a value
// loader exists, read otherwise. Taking the write
// lock up front (rather than upgrading after a miss) keeps this one
// critical section instead of two, at the cost of holding the write lock
// on what may turn out to be a hit.
func (m *HMap[K, V]) getLocked(seg *segment[K, V], index int64, key K) (v V, ok bool, missed bool, err error) {
	useWrite := seg.getQueue != nil || m.cfg.ValueLoader != nil
	if useWrite {
		seg.lock.Lock()
		defer seg.lock.Unlock()
	} else {
		seg.lock.RLock()
		defer seg.lock.RUnlock()
	}
	if m.closed {
		return v, false, false, ErrClosed
	}

	if useWrite && seg.getQueue != nil {
		if err := m.maybeForegroundEvictForGet(seg); err != nil {
			return v, false, false, err
		}
	}

	leafRecid, err := seg.indexTree.Get(index)
	if err != nil {
		return v, false, false, err
	}
	if leafRecid == 0 {
		m.cfg.Recorder.GetMiss()
		return v, false, true, nil
	}

	triples, err := m.readLeaf(seg, leafRecid)
	if err != nil {
		return v, false, false, err
	}
	for i := range triples {
		if !m.cfg.KeyHasher.Equals(triples[i].Key, key) {
			continue
		}
		val, err := m.unwrapValue(seg, triples[i])
		if err != nil {
			return v, false, false, err
		}
		if seg.getQueue != nil {
			newExpireID, err := m.advanceQueue(seg, leafRecid, triples[i].ExpireID, seg.getQueue, tagGet, m.cfg.ExpireGetTTL)
			if err != nil {
				return v, false, false, err
			}
			triples[i].ExpireID = newExpireID
			if err := m.writeLeaf(seg, leafRecid, triples); err != nil {
				return v, false, false, err
			}
		}
		m.cfg.Recorder.GetHit()
		return val, true, false, nil
	}

	m.cfg.Recorder.GetMiss()
	return v, false, true, nil
}

// loadAndInsert runs the configured value loader outside any segment lock
// so a slow loader never blocks other operations on the segment;
// concurrent misses for the same key collapse into one loader call via
// the segment's singleflight group.
func (m *HMap[K, V]) loadAndInsert(seg *segment[K, V], index int64, key K) (V, bool, error) {
	var zero V
	groupKey, err := m.cfg.KeySer.Marshal(key)
	if err != nil {
		return zero, false, err
	}

	result, err, _ := seg.loaderGroup.Do(string(groupKey), func() (any, error) {
		loaded, ok := m.cfg.ValueLoader(key)
		if !ok {
			return (*V)(nil), nil
		}
		m.cfg.Recorder.GetLoaderTriggered()
		seg.lock.Lock()
		defer seg.lock.Unlock()
		if m.closed {
			return nil, ErrClosed
		}
		if _, _, err := m.putLocked(seg, index, key, loaded, false, true); err != nil {
			return nil, err
		}
		return &loaded, nil
	})
	if err != nil {
		return zero, false, err
	}
	vp, _ := result.(*V)
	if vp == nil {
		return zero, false, nil
	}
	return *vp, true, nil
}
