// Package htreemap implements a concurrent, segmented, persistable hash
// map. Entries are located by a user-supplied hash function through a
// sparse index tree mapping integer indices to recids in a pluggable
// store (see the store, indextree, queue and hash packages). Values may
// be inlined into the leaf record or stored as separate records. The map
// optionally enforces TTL expiration on entry creation, update and/or
// access, plus max-entry and max-store-size caps, via per-segment
// doubly-linked expiration queues.
//
package htreemap

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Krishna8167/htreemap/hash"
	"github.com/Krishna8167/htreemap/metrics"
	"go.uber.org/zap"
)

// HMap is the concurrent segmented map.
type HMap[K, V any] struct {
	cfg      Config[K, V]
	segments []*segment[K, V]
	codec    *leafCodec[K, V]

	closed bool
	// closeMu guards `closed` and serializes Close against itself; the
	// actual quiescing of operations happens by taking every segment's
	// write lock in order.
	closeMu sync.Mutex

	hashChecked bool // best-effort, non-thread-safe one-shot

	stopExec chan struct{}
	execWG   sync.WaitGroup
}

// New builds an HMap from the given options, using the functional-options
// pattern. Unset fields take the defaults below
// (4 segments, 2-level/4-bit-shift index tree, inlined values, no
// expiration, in-memory reference collaborators, gob+xxhash defaults).
func New[K, V any](opts ...Option[K, V]) (*HMap[K, V], error) {
	cfg := Config[K, V]{
		ConcShift:    2,
		DirShift:     4,
		Levels:       2,
		ValueInline:  true,
		HasValues:    true,
		IsThreadSafe: true,
	}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.ConcShift < 0 || cfg.DirShift < 0 || cfg.Levels < 0 {
		return nil, ErrBadGeometry
	}
	if !cfg.HasValues && !cfg.ValueInline {
		return nil, ErrBadGeometry
	}

	applyDefaults(&cfg)

	segmentCount := 1 << uint(cfg.ConcShift)
	m := &HMap[K, V]{
		cfg: cfg,
		codec: &leafCodec[K, V]{
			keySer:      cfg.KeySer,
			valSer:      cfg.ValueSer,
			valueInline: cfg.ValueInline,
			hasValues:   cfg.HasValues,
		},
	}

	if span := geometrySpan(cfg.ConcShift, cfg.DirShift, cfg.Levels); span > geometryWarnThreshold {
		cfg.Logger.Warn("htreemap: configured index space exceeds 2^31+1000; proceeding",
			zap.Uint64("span", span))
	}

	m.segments = make([]*segment[K, V], segmentCount)
	for i := 0; i < segmentCount; i++ {
		seg := &segment[K, V]{
			id:        i,
			store:     cfg.StoreFactory(i),
			indexTree: cfg.IndexTreeFactory(i),
		}
		if cfg.CreateQueueFactory != nil {
			seg.createQueue = cfg.CreateQueueFactory(i)
		}
		if cfg.UpdateQueueFactory != nil {
			seg.updateQueue = cfg.UpdateQueueFactory(i)
		}
		if cfg.GetQueueFactory != nil {
			seg.getQueue = cfg.GetQueueFactory(i)
		}
		recid, enabled := cfg.CounterFactory(i)
		if enabled {
			if recid < 0 {
				var err error
				recid, err = seg.store.Preallocate()
				if err != nil {
					return nil, err
				}
				if err := seg.store.Update(recid, make([]byte, 8)); err != nil {
					return nil, err
				}
			}
			c, err := newCounter(seg.store, recid)
			if err != nil {
				return nil, err
			}
			seg.counter = c
		}
		m.segments[i] = seg
	}

	if cfg.ExpireExecutorPeriod > 0 {
		m.startExecutor()
	}
	return m, nil
}

func applyDefaults[K, V any](cfg *Config[K, V]) {
	if cfg.KeySer == nil {
		cfg.KeySer = hash.NewGobSerializer[K]()
	}
	if cfg.ValueSer == nil {
		cfg.ValueSer = hash.NewGobSerializer[V]()
	}
	if cfg.KeyHasher == nil {
		cfg.KeyHasher = hash.NewDefaultHasher(cfg.KeySer)
	}
	if cfg.ValueHasher == nil {
		cfg.ValueHasher = hash.NewDefaultHasher(cfg.ValueSer)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Noop{}
	}
	if cfg.StoreFactory == nil {
		cfg.StoreFactory = defaultStoreFactory
	}
	if cfg.IndexTreeFactory == nil {
		cfg.IndexTreeFactory = defaultIndexTreeFactory
	}
	if cfg.CreateQueueFactory == nil && cfg.ExpireCreateTTL != TTLDisabled {
		cfg.CreateQueueFactory = defaultQueueFactory
	}
	if cfg.UpdateQueueFactory == nil && cfg.ExpireUpdateTTL != TTLDisabled {
		cfg.UpdateQueueFactory = defaultQueueFactory
	}
	if cfg.GetQueueFactory == nil && cfg.ExpireGetTTL != TTLDisabled {
		cfg.GetQueueFactory = defaultQueueFactory
	}
	if cfg.CounterFactory == nil {
		cfg.CounterFactory = defaultCounterFactory
	}
}

// now returns the current unix-millis timestamp used throughout the
// expiration subsystem.
func now() int64 { return time.Now().UnixMilli() }

func jitter(period time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(period)))
}

// Close stops the background executor (if any) and marks the map closed,
// taking every segment's write lock in order first.
func (m *HMap[K, V]) Close() error {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	if m.closed {
		return nil
	}
	for _, seg := range m.segments {
		seg.lock.Lock()
	}
	m.closed = true
	for i := len(m.segments) - 1; i >= 0; i-- {
		m.segments[i].lock.Unlock()
	}
	if m.stopExec != nil {
		close(m.stopExec)
		m.execWG.Wait()
	}
	return nil
}

func (m *HMap[K, V]) checkClosed() error {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// route computes the routing hash, segment id and bucket index for key
//. The routing hash always uses seed 0.
func (m *HMap[K, V]) route(key K) (segIdx int, index int64, h uint32) {
	h = m.cfg.KeyHasher.HashCode(key, 0)
	index = hashToIndex(h, m.cfg.Levels, m.cfg.DirShift)
	segIdx = int(hashToSegment(h, m.cfg.Levels, m.cfg.DirShift, m.cfg.ConcShift))
	m.assertRouting(key, segIdx)
	return
}

// checkHashStability asserts that the key hasher is stable across a
// marshal/unmarshal round trip. It is a best-effort, non-thread-safe
// one-shot: performing it more than once (e.g. under a benign data race
// on hashChecked) is harmless.
func (m *HMap[K, V]) checkHashStability(key K) error {
	if m.hashChecked || m.cfg.KeySer.Trusted() {
		return nil
	}
	m.hashChecked = true
	b, err := m.cfg.KeySer.Marshal(key)
	if err != nil {
		return nil
	}
	clone, err := m.cfg.KeySer.Unmarshal(b)
	if err != nil {
		return nil
	}
	if m.cfg.KeyHasher.HashCode(key, 0) != m.cfg.KeyHasher.HashCode(clone, 0) {
		return ErrHashUnstable
	}
	return nil
}

func (m *HMap[K, V]) readLeaf(seg *segment[K, V], leafRecid int64) ([]triple[K, V], error) {
	b, ok, err := seg.store.Get(leafRecid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, corrupt("leaf recid resolves to no leaf", nil)
	}
	return m.codec.decode(b)
}

func (m *HMap[K, V]) writeLeaf(seg *segment[K, V], leafRecid int64, triples []triple[K, V]) error {
	b, err := m.codec.encode(triples)
	if err != nil {
		return err
	}
	return seg.store.Update(leafRecid, b)
}

// ttlTimestamp converts a TTL in milliseconds to an absolute deadline:
// TTLNoExpiry (-1) always yields 0 ("no time-based expiration"),
// otherwise now+ttl.
func ttlTimestamp(ttlMillis int64) int64 {
	if ttlMillis == TTLNoExpiry {
		return 0
	}
	return now() + ttlMillis
}

// Size returns the number of entries across all segments, saturating to
// math.MaxInt32. If counters are present it sums them under
// each segment's read lock; otherwise it sums leaf.size/3 over every
// leaf, segment by segment.
func (m *HMap[K, V]) Size() (int32, error) {
	var total int64
	for _, seg := range m.segments {
		n, err := m.segmentSize(seg)
		if err != nil {
			return 0, err
		}
		total += n
	}
	m.cfg.Recorder.SetSize(total)
	if total > int64(1<<31-1) {
		return 1<<31 - 1, nil
	}
	return int32(total), nil
}

func (m *HMap[K, V]) segmentSize(seg *segment[K, V]) (int64, error) {
	seg.lock.RLock()
	defer seg.lock.RUnlock()
	if seg.counter != nil {
		return seg.counter.get(), nil
	}
	var n int64
	err := seg.indexTree.ForEachKeyValue(func(_, recid int64) error {
		triples, err := m.readLeaf(seg, recid)
		if err != nil {
			return err
		}
		n += int64(len(triples))
		return nil
	})
	return n, err
}

// IsEmpty reports whether the map holds no entries.
func (m *HMap[K, V]) IsEmpty() (bool, error) {
	for _, seg := range m.segments {
		seg.lock.RLock()
		empty, err := seg.indexTree.IsEmpty()
		seg.lock.RUnlock()
		if err != nil {
			return false, err
		}
		if !empty {
			return false, nil
		}
	}
	return true, nil
}
