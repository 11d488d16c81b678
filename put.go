package htreemap

import "github.com/Krishna8167/htreemap/queue"

// Put inserts or updates key, returning the previous value if any.
func (m *HMap[K, V]) Put(key K, value V) (V, bool, error) {
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
	return m.putLocked(seg, index, key, value, true, false)
}

// PutOnly is Put without materializing the previous value.
func (m *HMap[K, V]) PutOnly(key K, value V) error {
	if err := m.checkClosed(); err != nil {
		return err
	}
	if isAbsent(key) {
		return ErrKeyAbsent
	}
	if isAbsent(value) {
		return ErrValueAbsent
	}
	if err := m.checkHashStability(key); err != nil {
		return err
	}
	segIdx, index, _ := m.route(key)
	seg := m.segments[segIdx]
	seg.lock.Lock()
	defer seg.lock.Unlock()
	if m.closed {
		return ErrClosed
	}
	if err := m.maybeForegroundEvict(seg); err != nil {
		return err
	}
	_, _, err := m.putLocked(seg, index, key, value, false, false)
	return err
}

// putLocked performs the insert-or-update under seg's already-held write
// lock. triggered marks the notification as loader/eviction-caused rather
// than an explicit caller mutation.
func (m *HMap[K, V]) putLocked(seg *segment[K, V], index int64, key K, value V, wantOld, triggered bool) (oldVal V, oldOK bool, err error) {
	seg.assertWriteLocked()
	leafRecid, err := seg.indexTree.Get(index)
	if err != nil {
		return oldVal, false, err
	}

	if leafRecid == 0 {
		lr, err := m.createLeaf(seg, key, value, seg.createQueue, tagCreate, m.cfg.ExpireCreateTTL)
		if err != nil {
			return oldVal, false, err
		}
		if err := seg.indexTree.Put(index, lr); err != nil {
			return oldVal, false, err
		}
		if seg.counter != nil {
			if err := seg.counter.add(1); err != nil {
				return oldVal, false, err
			}
		}
		m.cfg.Recorder.PutMiss()
		notifyAll(m.cfg.Listeners, key, oldVal, false, value, true, triggered)
		return oldVal, false, nil
	}

	triples, err := m.readLeaf(seg, leafRecid)
	if err != nil {
		return oldVal, false, err
	}

	for i := range triples {
		if !m.cfg.KeyHasher.Equals(triples[i].Key, key) {
			continue
		}
		// Listeners must see the true previous value even when the caller
		// itself doesn't need it, so a registered listener forces the
		// unwrap regardless of wantOld.
		if wantOld || len(m.cfg.Listeners) > 0 {
			ov, err := m.unwrapValue(seg, triples[i])
			if err != nil {
				return oldVal, false, err
			}
			oldVal, oldOK = ov, true
		}

		newExpireID, err := m.advanceQueue(seg, leafRecid, triples[i].ExpireID, seg.updateQueue, tagUpdate, m.cfg.ExpireUpdateTTL)
		if err != nil {
			return oldVal, false, err
		}
		triples[i].ExpireID = newExpireID

		switch {
		case !m.codec.hasValues:
			// KeySet put: no value slot to rewrite.
		case m.codec.valueInline:
			triples[i].Value = value
		default:
			vb, err := m.cfg.ValueSer.Marshal(value)
			if err != nil {
				return oldVal, false, err
			}
			if err := seg.store.Update(triples[i].ValueRecid, vb); err != nil {
				return oldVal, false, err
			}
		}

		if err := m.writeLeaf(seg, leafRecid, triples); err != nil {
			return oldVal, false, err
		}
		m.cfg.Recorder.PutHit()
		notifyAll(m.cfg.Listeners, key, oldVal, oldOK, value, true, triggered)
		return oldVal, oldOK, nil
	}

	nt, err := m.appendTriple(seg, leafRecid, key, value, seg.createQueue, tagCreate, m.cfg.ExpireCreateTTL)
	if err != nil {
		return oldVal, false, err
	}
	triples = append(triples, nt)
	if err := m.writeLeaf(seg, leafRecid, triples); err != nil {
		return oldVal, false, err
	}
	if seg.counter != nil {
		if err := seg.counter.add(1); err != nil {
			return oldVal, false, err
		}
	}
	m.cfg.Recorder.PutMiss()
	notifyAll(m.cfg.Listeners, key, oldVal, false, value, true, triggered)
	return oldVal, false, nil
}

// createLeaf builds a brand-new single-triple leaf for a bucket that has
// none yet. When createQueue is configured the leaf recid and queue node
// reference each other, so the leaf recid is preallocated first and the
// leaf content written in a second pass to resolve the cyclic reference.
func (m *HMap[K, V]) createLeaf(seg *segment[K, V], key K, value V, q queue.QueueLong, tag queueTag, ttl int64) (int64, error) {
	t, err := m.buildValueTriple(seg, key, value)
	if err != nil {
		return 0, err
	}

	if q == nil {
		b, err := m.codec.encode([]triple[K, V]{t})
		if err != nil {
			return 0, err
		}
		return seg.store.Put(b)
	}

	leafRecid, err := seg.store.Preallocate()
	if err != nil {
		return 0, err
	}
	nodeRecid, err := q.Put(ttlTimestamp(ttl), leafRecid)
	if err != nil {
		return 0, err
	}
	t.ExpireID = encodeExpireID(nodeRecid, tag)
	b, err := m.codec.encode([]triple[K, V]{t})
	if err != nil {
		return 0, err
	}
	if err := seg.store.Update(leafRecid, b); err != nil {
		return 0, err
	}
	return leafRecid, nil
}

// appendTriple builds a new triple for a leaf that already has a recid
// — no preallocate dance needed.
func (m *HMap[K, V]) appendTriple(seg *segment[K, V], leafRecid int64, key K, value V, q queue.QueueLong, tag queueTag, ttl int64) (triple[K, V], error) {
	t, err := m.buildValueTriple(seg, key, value)
	if err != nil {
		return t, err
	}
	if q != nil {
		nodeRecid, err := q.Put(ttlTimestamp(ttl), leafRecid)
		if err != nil {
			return t, err
		}
		t.ExpireID = encodeExpireID(nodeRecid, tag)
	}
	return t, nil
}

func (m *HMap[K, V]) buildValueTriple(seg *segment[K, V], key K, value V) (triple[K, V], error) {
	t := triple[K, V]{Key: key}
	if !m.codec.hasValues {
		return t, nil
	}
	if m.codec.valueInline {
		t.Value = value
		return t, nil
	}
	vb, err := m.cfg.ValueSer.Marshal(value)
	if err != nil {
		return t, err
	}
	recid, err := seg.store.Put(vb)
	if err != nil {
		return t, err
	}
	t.ValueRecid = recid
	return t, nil
}

func (m *HMap[K, V]) unwrapValue(seg *segment[K, V], t triple[K, V]) (V, error) {
	if !m.codec.hasValues || m.codec.valueInline {
		return t.Value, nil
	}
	b, ok, err := seg.store.Get(t.ValueRecid)
	if err != nil {
		return t.Value, err
	}
	if !ok {
		return t.Value, corrupt("value recid resolves to no record", nil)
	}
	return m.cfg.ValueSer.Unmarshal(b)
}

// advanceQueue implements the "bump / transfer / insert" logic shared by
// put's update path and get's access-tracking path: ensures the triple's
// queue node ends up in q with a refreshed timestamp, returning the
// expireId to store back in the triple.
func (m *HMap[K, V]) advanceQueue(seg *segment[K, V], leafRecid, currentExpireID int64, q queue.QueueLong, tag queueTag, ttl int64) (int64, error) {
	if q == nil {
		return currentExpireID, nil
	}
	ts := ttlTimestamp(ttl)
	if currentExpireID == 0 {
		nodeRecid, err := q.Put(ts, leafRecid)
		if err != nil {
			return 0, err
		}
		return encodeExpireID(nodeRecid, tag), nil
	}

	curTag, nodeRecid, err := decodeExpireID(currentExpireID)
	if err != nil {
		return 0, err
	}
	if curTag == tag {
		if err := q.Bump(nodeRecid, ts); err != nil {
			return 0, err
		}
		return currentExpireID, nil
	}

	oldQueue := seg.queueByTag(curTag)
	if oldQueue == nil {
		return 0, corrupt("expireId names a queue that isn't configured", nil)
	}
	if _, err := oldQueue.Remove(nodeRecid, false); err != nil {
		return 0, err
	}
	if _, err := q.Put(ts, leafRecid, nodeRecid); err != nil {
		return 0, err
	}
	return encodeExpireID(nodeRecid, tag), nil
}
