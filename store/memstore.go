package store

import "sync"

// Mem is a plain in-memory Store: a recid-keyed map guarded by a mutex.
// It is the default backing store for tests and for embedders who only
// need the map's concurrency/expiration semantics without persistence. It
// implements SizeReporter and Compactable so expireStoreSize caps and
// expireCompactThreshold can be exercised without a real disk-backed
// store.
type Mem struct {
	mu       sync.Mutex
	records  map[Recid][]byte
	nextID   Recid
	closed   bool
	freed    int64 // bytes reclaimed by Delete/overwritten-shrink, never reused until Compact
	fileTail int64 // monotonically increasing high-water mark of bytes ever written
}

func NewMem() *Mem {
	return &Mem{records: make(map[Recid][]byte), nextID: 1}
}

func (m *Mem) Put(blob []byte) (Recid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	id := m.nextID
	m.nextID++
	cp := append([]byte(nil), blob...)
	m.records[id] = cp
	m.fileTail += int64(len(cp))
	return id, nil
}

func (m *Mem) Preallocate() (Recid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	id := m.nextID
	m.nextID++
	m.records[id] = nil
	return id, nil
}

func (m *Mem) Get(recid Recid) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	b, ok := m.records[recid]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *Mem) Update(recid Recid, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	old, ok := m.records[recid]
	if !ok {
		return ErrNotFound
	}
	cp := append([]byte(nil), blob...)
	if len(cp) < len(old) {
		m.freed += int64(len(old) - len(cp))
	}
	if len(cp) > len(old) {
		m.fileTail += int64(len(cp) - len(old))
	}
	m.records[recid] = cp
	return nil
}

func (m *Mem) Delete(recid Recid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	old, ok := m.records[recid]
	if !ok {
		return ErrNotFound
	}
	m.freed += int64(len(old))
	delete(m.records, recid)
	return nil
}

func (m *Mem) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mem) AssertThreadSafe() {}

func (m *Mem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Mem) FileTail() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fileTail
}

func (m *Mem) GetFreeSize() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.freed
}

func (m *Mem) GetTotalSize() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := int64(0)
	for _, b := range m.records {
		total += int64(len(b))
	}
	return total + m.freed
}

// Compact reclaims free space bookkeeping. Mem never actually shrinks a
// Go map's backing array, so Compact just resets the free-size counter —
// enough to exercise HMap's expireCompactThreshold trigger in tests.
func (m *Mem) Compact() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.freed = 0
	return nil
}
