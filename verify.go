package htreemap

import (
	"github.com/Krishna8167/htreemap/indextree"
	"github.com/Krishna8167/htreemap/queue"
)

// Verify walks every segment's index tree, leaves, and queues, checking
// that index entries resolve to leaves, leaf triples resolve to live
// queue nodes, and queue nodes resolve back to leaf triples, all under
// each segment's read lock. It returns the first problem found:
// inconsistencies as *ErrCorruption, store read errors as returned by the
// store.
func (m *HMap[K, V]) Verify() error {
	if err := m.checkClosed(); err != nil {
		return err
	}
	for segIdx, seg := range m.segments {
		if err := m.verifySegment(segIdx, seg); err != nil {
			return err
		}
	}
	return nil
}

func (m *HMap[K, V]) verifySegment(segIdx int, seg *segment[K, V]) error {
	seg.lock.RLock()
	defer seg.lock.RUnlock()

	if v, ok := seg.indexTree.(indextree.Verifiable); ok {
		if err := v.Verify(); err != nil {
			return corrupt("index tree verify", err)
		}
	}

	seenLeafRecid := make(map[int64]bool)
	expectedNodes := make(map[queueTag]map[int64]int64) // tag -> nodeRecid -> leafRecid

	err := seg.indexTree.ForEachKeyValue(func(index, leafRecid int64) error {
		if seenLeafRecid[leafRecid] {
			return corrupt("duplicate leaf recid across index-tree entries", nil)
		}
		seenLeafRecid[leafRecid] = true

		triples, err := m.readLeaf(seg, leafRecid)
		if err != nil {
			return err
		}
		for _, t := range triples {
			h := m.cfg.KeyHasher.HashCode(t.Key, 0)
			wantIndex := hashToIndex(h, m.cfg.Levels, m.cfg.DirShift)
			wantSeg := int(hashToSegment(h, m.cfg.Levels, m.cfg.DirShift, m.cfg.ConcShift))
			if wantIndex != index || wantSeg != segIdx {
				return corrupt("triple routes to a different (segment, index) than its leaf", nil)
			}
			tag, nodeRecid, err := decodeExpireID(t.ExpireID)
			if err != nil {
				return err
			}
			if tag == tagNone {
				continue
			}
			if expectedNodes[tag] == nil {
				expectedNodes[tag] = make(map[int64]int64)
			}
			if _, dup := expectedNodes[tag][nodeRecid]; dup {
				return corrupt("duplicate nodeRecid referenced by two triples", nil)
			}
			expectedNodes[tag][nodeRecid] = leafRecid
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, qd := range []struct {
		q   queue.QueueLong
		tag queueTag
	}{
		{seg.createQueue, tagCreate},
		{seg.updateQueue, tagUpdate},
		{seg.getQueue, tagGet},
	} {
		if qd.q == nil {
			continue
		}
		if v, ok := qd.q.(queue.Verifiable); ok {
			if err := v.Verify(); err != nil {
				return corrupt("queue verify", err)
			}
		}
		want := expectedNodes[qd.tag]
		err := qd.q.ForEach(func(node queue.Node) error {
			leafRecid, ok := want[node.NodeRecid]
			if !ok {
				return corrupt("queue node has no matching leaf triple", nil)
			}
			if leafRecid != node.Value {
				return corrupt("queue node's leaf recid doesn't match its triple's leaf", nil)
			}
			delete(want, node.NodeRecid)
			return nil
		})
		if err != nil {
			return err
		}
		if len(want) != 0 {
			return corrupt("leaf triples reference queue nodes that no longer exist", nil)
		}
	}
	return nil
}
