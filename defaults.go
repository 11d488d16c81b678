package htreemap

import (
	"github.com/Krishna8167/htreemap/indextree"
	"github.com/Krishna8167/htreemap/queue"
	"github.com/Krishna8167/htreemap/store"
)

// Reference collaborator factories used whenever New isn't given an
// explicit *Factory option. Each segment gets its own, unaliased instance.

func defaultStoreFactory(_ int) store.Store {
	return store.NewMem()
}

func defaultIndexTreeFactory(_ int) indextree.IndexTree {
	return indextree.NewMem()
}

func defaultQueueFactory(_ int) queue.QueueLong {
	return queue.NewMem()
}

// defaultCounterFactory enables a counter for every segment and asks New
// to allocate its backing recid (recid<0 is New's "preallocate" sentinel).
func defaultCounterFactory(_ int) (int64, bool) {
	return -1, true
}
