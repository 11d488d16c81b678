package indextree

import (
	"sync"

	"github.com/google/btree"
)

// pairItem is the btree.Item stored for each (index, recid) pair, ordered
// by index.
type pairItem struct {
	index, recid int64
}

func (p pairItem) Less(than btree.Item) bool {
	return p.index < than.(pairItem).index
}

// BTreeIndex is the github.com/google/btree-backed IndexTree. It behaves
// identically to Mem for point lookups but keeps index→recid pairs
// ordered, which is useful for embedders who want to walk a segment's
// entries in index order for diagnostics. The map itself makes no
// iteration-order guarantee; this is purely an implementation choice
// available to callers who construct HMap with it.
type BTreeIndex struct {
	mu   sync.Mutex
	tree *btree.BTree
}

// NewBTreeIndex constructs an empty index tree with the given btree
// degree. A degree below 2 is replaced by 32, a reasonable default for
// in-memory use.
func NewBTreeIndex(degree int) *BTreeIndex {
	if degree < 2 {
		degree = 32
	}
	return &BTreeIndex{tree: btree.New(degree)}
}

func (b *BTreeIndex) Get(index int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item := b.tree.Get(pairItem{index: index})
	if item == nil {
		return 0, nil
	}
	return item.(pairItem).recid, nil
}

func (b *BTreeIndex) Put(index int64, recid int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.ReplaceOrInsert(pairItem{index: index, recid: recid})
	return nil
}

func (b *BTreeIndex) RemoveKey(index int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.Delete(pairItem{index: index})
	return nil
}

func (b *BTreeIndex) IsEmpty() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tree.Len() == 0, nil
}

func (b *BTreeIndex) ForEachKeyValue(fn func(index, recid int64) error) error {
	b.mu.Lock()
	pairs := make([]pairItem, 0, b.tree.Len())
	b.tree.Ascend(func(item btree.Item) bool {
		pairs = append(pairs, item.(pairItem))
		return true
	})
	b.mu.Unlock()
	for _, p := range pairs {
		if err := fn(p.index, p.recid); err != nil {
			return err
		}
	}
	return nil
}
