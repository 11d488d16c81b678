package queue

import (
	"container/list"
	"sync"
)

// Mem is the container/list-backed reference QueueLong: a doubly-linked
// list plus a map from recid to list element, generalized from a
// string-keyed LRU list to recid-addressed nodes.
type Mem struct {
	mu      sync.Mutex
	order   *list.List // doubly-linked FIFO; Front() is oldest, new nodes are pushed at Back()
	byRecid map[int64]*list.Element
	nextID  int64
}

type elem struct {
	recid     int64
	value     int64
	timestamp int64
}

func NewMem() *Mem {
	return &Mem{
		order:   list.New(),
		byRecid: make(map[int64]*list.Element),
		nextID:  1,
	}
}

func (m *Mem) Put(timestamp, value int64, nodeRecid ...int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id int64
	if len(nodeRecid) > 0 {
		id = nodeRecid[0]
	} else {
		id = m.nextID
		m.nextID++
	}
	e := m.order.PushBack(&elem{recid: id, value: value, timestamp: timestamp})
	m.byRecid[id] = e
	return id, nil
}

func (m *Mem) Bump(nodeRecid int64, newTimestamp int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byRecid[nodeRecid]
	if !ok {
		return ErrUnknownNode
	}
	e.Value.(*elem).timestamp = newTimestamp
	return nil
}

func (m *Mem) Remove(nodeRecid int64, removeNode bool) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byRecid[nodeRecid]
	if !ok {
		return Node{}, ErrUnknownNode
	}
	v := e.Value.(*elem)
	node := Node{NodeRecid: v.recid, Value: v.value, Timestamp: v.timestamp}
	m.order.Remove(e)
	delete(m.byRecid, nodeRecid)
	// removeNode only distinguishes caller intent (permanent delete vs.
	// in-flight transfer to another queue); this in-memory queue has no
	// separate node-storage to reclaim so both paths behave the same.
	_ = removeNode
	return node, nil
}

func (m *Mem) TakeUntil(pred Predicate, onTake func(node Node) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		front := m.order.Front()
		if front == nil {
			return nil
		}
		v := front.Value.(*elem)
		node := Node{NodeRecid: v.recid, Value: v.value, Timestamp: v.timestamp}
		if !pred(node) {
			return nil
		}
		m.order.Remove(front)
		delete(m.byRecid, v.recid)
		if onTake != nil {
			if err := onTake(node); err != nil {
				return err
			}
		}
	}
}

func (m *Mem) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.byRecid = make(map[int64]*list.Element)
	return nil
}

func (m *Mem) ForEach(fn func(node Node) error) error {
	m.mu.Lock()
	nodes := make([]Node, 0, m.order.Len())
	for e := m.order.Front(); e != nil; e = e.Next() {
		v := e.Value.(*elem)
		nodes = append(nodes, Node{NodeRecid: v.recid, Value: v.value, Timestamp: v.timestamp})
	}
	m.mu.Unlock()
	for _, n := range nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mem) Verify() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.order.Len() != len(m.byRecid) {
		return ErrInconsistent
	}
	seen := make(map[int64]bool, m.order.Len())
	for e := m.order.Front(); e != nil; e = e.Next() {
		v := e.Value.(*elem)
		if seen[v.recid] {
			return ErrInconsistent
		}
		seen[v.recid] = true
		if m.byRecid[v.recid] != e {
			return ErrInconsistent
		}
	}
	return nil
}
