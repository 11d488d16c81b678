package indextree

import "sync"

// Mem is the zero-dependency default IndexTree: a plain map guarded by a
// mutex. Sufficient whenever the fixed index space ((1<<dirShift)^levels
// per segment) doesn't warrant an ordered structure.
type Mem struct {
	mu   sync.Mutex
	data map[int64]int64
}

func NewMem() *Mem {
	return &Mem{data: make(map[int64]int64)}
}

func (m *Mem) Get(index int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[index], nil
}

func (m *Mem) Put(index int64, recid int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[index] = recid
	return nil
}

func (m *Mem) RemoveKey(index int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, index)
	return nil
}

func (m *Mem) IsEmpty() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data) == 0, nil
}

func (m *Mem) ForEachKeyValue(fn func(index, recid int64) error) error {
	m.mu.Lock()
	snapshot := make(map[int64]int64, len(m.data))
	for k, v := range m.data {
		snapshot[k] = v
	}
	m.mu.Unlock()
	for k, v := range snapshot {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
