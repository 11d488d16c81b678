package htreemap

import (
	"sync"

	"github.com/Krishna8167/htreemap/indextree"
	"github.com/Krishna8167/htreemap/queue"
	"github.com/Krishna8167/htreemap/store"
	"golang.org/x/sync/singleflight"
)

// segment bundles one shard's store, index tree, optional counter and
// expiration queues, and its guarding lock. HMap holds segmentCount of
// these.
type segment[K, V any] struct {
	id int

	store     store.Store
	indexTree indextree.IndexTree
	counter   *counter // nil if counters disabled

	createQueue queue.QueueLong // nil if expireCreateTTL's queue is disabled
	updateQueue queue.QueueLong // nil if expireUpdateTTL's queue is disabled
	getQueue    queue.QueueLong // nil if expireGetTTL's queue is disabled

	lock sync.RWMutex

	// loaderGroup collapses concurrent Get-triggered value-loader calls
	// for the same key into one invocation; it never
	// participates in the correctness of the write path, only in reducing
	// redundant loader calls before the write lock is taken.
	loaderGroup singleflight.Group
}

func (s *segment[K, V]) hasAnyQueue() bool {
	return s.createQueue != nil || s.updateQueue != nil || s.getQueue != nil
}

// queueByTag resolves a queue pointer from its tag, or nil if that queue
// isn't configured (which would itself be a corruption condition if a
// leaf still names it — callers check).
func (s *segment[K, V]) queueByTag(tag queueTag) queue.QueueLong {
	switch tag {
	case tagCreate:
		return s.createQueue
	case tagUpdate:
		return s.updateQueue
	case tagGet:
		return s.getQueue
	default:
		return nil
	}
}
