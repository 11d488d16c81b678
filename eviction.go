package htreemap

import (
	"time"

	"github.com/Krishna8167/htreemap/queue"
	"github.com/Krishna8167/htreemap/store"
	"go.uber.org/zap"
)

// maybeForegroundEvict runs expireEvictSegment inline under the caller's
// already-held write lock when no background executor is configured and
// at least one expiration queue exists.
func (m *HMap[K, V]) maybeForegroundEvict(seg *segment[K, V]) error {
	if m.stopExec != nil || !seg.hasAnyQueue() {
		return nil
	}
	return m.expireEvictSegment(seg)
}

// maybeForegroundEvictForGet is maybeForegroundEvict's get-specific
// variant: get only evicts in foreground when getQueue specifically is
// configured.
func (m *HMap[K, V]) maybeForegroundEvictForGet(seg *segment[K, V]) error {
	if m.stopExec != nil || seg.getQueue == nil {
		return nil
	}
	return m.expireEvictSegment(seg)
}

// expireEvictSegment runs one eviction sweep over seg under its
// already-held write lock.
func (m *HMap[K, V]) expireEvictSegment(seg *segment[K, V]) error {
	currTimestamp := now()

	var numberToTake int64
	if m.cfg.ExpireMaxSize > 0 && seg.counter != nil {
		segmentCount := int64(len(m.segments))
		n := (seg.counter.get()*segmentCount - m.cfg.ExpireMaxSize) / segmentCount
		if n > 0 {
			numberToTake = n
		}
	}

	order := []struct {
		q   queue.QueueLong
		tag queueTag
	}{
		{seg.getQueue, tagGet},
		{seg.updateQueue, tagUpdate},
		{seg.createQueue, tagCreate},
	}
	for _, o := range order {
		if o.q == nil {
			continue
		}
		pred := func(node queue.Node) bool {
			if numberToTake > 0 {
				numberToTake--
				return true
			}
			if node.Timestamp != 0 && node.Timestamp < currTimestamp {
				return true
			}
			if m.cfg.ExpireStoreSize != 0 {
				if sr, ok := seg.store.(store.SizeReporter); ok {
					if sr.FileTail()-sr.GetFreeSize() > m.cfg.ExpireStoreSize {
						return true
					}
				}
			}
			return false
		}
		if err := o.q.TakeUntil(pred, func(node queue.Node) error {
			return m.expireEvictEntry(seg, node.Value, node.NodeRecid)
		}); err != nil {
			return err
		}
	}

	if m.cfg.ExpireCompactThreshold > 0 {
		if sr, ok := seg.store.(store.SizeReporter); ok {
			if total := sr.GetTotalSize(); total > 0 && float64(sr.GetFreeSize())/float64(total) > m.cfg.ExpireCompactThreshold {
				if c, ok := seg.store.(store.Compactable); ok {
					if err := c.Compact(); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// expireEvictEntry locates the triple a consumed queue node belongs to and
// removes it as evicted.
func (m *HMap[K, V]) expireEvictEntry(seg *segment[K, V], leafRecid, nodeRecid int64) error {
	triples, err := m.readLeaf(seg, leafRecid)
	if err != nil {
		return err
	}
	for i, t := range triples {
		tag, nr, err := decodeExpireID(t.ExpireID)
		if err != nil {
			return err
		}
		if tag == tagNone || nr != nodeRecid {
			continue
		}
		segIdx, index, _ := m.route(t.Key)
		if m.segments[segIdx] != seg {
			return corrupt("evicted triple routes to a different segment", nil)
		}
		_, err = m.removeEntryFromLeaf(seg, index, leafRecid, triples, i, true)
		return err
	}
	return corrupt("expireId node has no matching leaf triple", nil)
}

// startExecutor launches one goroutine per segment running
// expireEvictSegment at a fixed rate, each with an independent initial
// jitter so segments don't all sweep in lockstep.
func (m *HMap[K, V]) startExecutor() {
	m.stopExec = make(chan struct{})
	for _, seg := range m.segments {
		seg := seg
		m.execWG.Add(1)
		go func() {
			defer m.execWG.Done()
			timer := time.NewTimer(jitter(m.cfg.ExpireExecutorPeriod))
			defer timer.Stop()
			for {
				select {
				case <-m.stopExec:
					return
				case <-timer.C:
					start := time.Now()
					seg.lock.Lock()
					if err := m.expireEvictSegment(seg); err != nil {
						m.cfg.Logger.Error("htreemap: background eviction failed",
							zap.Int("segment", seg.id), zap.Error(err))
					}
					seg.lock.Unlock()
					timer.Reset(m.cfg.ExpireExecutorPeriod - time.Since(start))
				}
			}
		}()
	}
}
