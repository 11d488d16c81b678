package htreemap

import "github.com/Krishna8167/htreemap/queue"

// Clear notify modes.
const (
	ClearSilent  = 0 // no listener notifications
	ClearNotify  = 1 // normal (k, oldV, absent, triggered=false) notifications
	ClearExpired = 2 // notify as if every entry expired (triggered=true)
)

// Clear empties every segment. It is not guaranteed to be linearizable
// against concurrent mutators on the same map.
func (m *HMap[K, V]) Clear(mode int) error {
	if err := m.checkClosed(); err != nil {
		return err
	}
	for _, seg := range m.segments {
		if err := m.clearSegment(seg, mode); err != nil {
			return err
		}
	}
	return nil
}

func (m *HMap[K, V]) clearSegment(seg *segment[K, V], mode int) error {
	seg.lock.Lock()
	defer seg.lock.Unlock()
	if m.closed {
		return ErrClosed
	}

	var leafRecids []int64
	if err := seg.indexTree.ForEachKeyValue(func(_, leafRecid int64) error {
		leafRecids = append(leafRecids, leafRecid)
		return nil
	}); err != nil {
		return err
	}

	for _, leafRecid := range leafRecids {
		triples, err := m.readLeaf(seg, leafRecid)
		if err != nil {
			return err
		}
		for _, t := range triples {
			if mode != ClearSilent {
				ov, err := m.unwrapValue(seg, t)
				if err != nil {
					return err
				}
				notifyAll(m.cfg.Listeners, t.Key, ov, true, ov, false, mode == ClearExpired)
			}
			if m.codec.hasValues && !m.codec.valueInline {
				if err := seg.store.Delete(t.ValueRecid); err != nil {
					return err
				}
			}
		}
		if err := seg.store.Delete(leafRecid); err != nil {
			return err
		}
	}

	for _, q := range []queue.QueueLong{seg.createQueue, seg.updateQueue, seg.getQueue} {
		if q == nil {
			continue
		}
		if err := q.Clear(); err != nil {
			return err
		}
	}

	if err := m.resetIndexTree(seg); err != nil {
		return err
	}
	if seg.counter != nil {
		if err := seg.counter.set(0); err != nil {
			return err
		}
	}
	return nil
}

func (m *HMap[K, V]) resetIndexTree(seg *segment[K, V]) error {
	var indices []int64
	if err := seg.indexTree.ForEachKeyValue(func(idx, _ int64) error {
		indices = append(indices, idx)
		return nil
	}); err != nil {
		return err
	}
	for _, idx := range indices {
		if err := seg.indexTree.RemoveKey(idx); err != nil {
			return err
		}
	}
	return nil
}
