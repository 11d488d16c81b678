package htreemap

import (
	"time"

	"github.com/Krishna8167/htreemap/hash"
	"github.com/Krishna8167/htreemap/indextree"
	"github.com/Krishna8167/htreemap/metrics"
	"github.com/Krishna8167/htreemap/queue"
	"github.com/Krishna8167/htreemap/store"
	"go.uber.org/zap"
)

// TTL sentinels.
const (
	TTLDisabled  = int64(0)  // queue not created at all
	TTLNoExpiry  = int64(-1) // queued, timestamp is always 0 ("never time-expires")
)

// Config holds HMap's immutable-after-construction configuration. It is
// built with New(...Option[K,V]) using the functional-options pattern.
type Config[K, V any] struct {
	ConcShift int
	DirShift  int
	Levels    int

	HashSeed uint32

	ValueInline bool
	HasValues   bool

	// TTLs in milliseconds; 0 disables the queue, -1 queues with no
	// time-based expiration.
	ExpireCreateTTL int64
	ExpireUpdateTTL int64
	ExpireGetTTL    int64

	ExpireMaxSize          int64
	ExpireStoreSize        int64
	ExpireExecutorPeriod   time.Duration
	ExpireCompactThreshold float64 // 0 disables

	IsThreadSafe bool

	KeyHasher   hash.Hasher[K]
	ValueHasher hash.Hasher[V]
	KeySer      hash.Serializer[K]
	ValueSer    hash.Serializer[V]

	// StoreFactory/IndexTreeFactory build one collaborator per segment.
	// Factories may return the same aliased instance for multiple
	// segments.
	StoreFactory     func(segment int) store.Store
	IndexTreeFactory func(segment int) indextree.IndexTree

	// QueueFactory builders return nil to disable that queue entirely.
	CreateQueueFactory func(segment int) queue.QueueLong
	UpdateQueueFactory func(segment int) queue.QueueLong
	GetQueueFactory    func(segment int) queue.QueueLong

	// CounterFactory, if set, returns the recid each segment's counter is
	// persisted at. Counters are required for ExpireMaxSize.
	CounterFactory func(segment int) (recid int64, enabled bool)

	Logger   *zap.Logger
	Recorder metrics.Recorder

	Listeners []ModificationListener[K, V]

	// ValueLoader synthesizes a value for a missed Get. Nil
	// disables the feature.
	ValueLoader func(key K) (V, bool)
}

// Option configures a Config via the functional-options pattern (the
// teacher's options.go, generalized).
type Option[K, V any] func(*Config[K, V])

func WithGeometry[K, V any](concShift, dirShift, levels int) Option[K, V] {
	return func(c *Config[K, V]) {
		c.ConcShift, c.DirShift, c.Levels = concShift, dirShift, levels
	}
}

func WithHashSeed[K, V any](seed uint32) Option[K, V] {
	return func(c *Config[K, V]) { c.HashSeed = seed }
}

func WithValueInline[K, V any](inline bool) Option[K, V] {
	return func(c *Config[K, V]) { c.ValueInline = inline }
}

func WithHasValues[K, V any](hasValues bool) Option[K, V] {
	return func(c *Config[K, V]) { c.HasValues = hasValues }
}

func WithExpireCreateTTL[K, V any](ttlMillis int64) Option[K, V] {
	return func(c *Config[K, V]) { c.ExpireCreateTTL = ttlMillis }
}

func WithExpireUpdateTTL[K, V any](ttlMillis int64) Option[K, V] {
	return func(c *Config[K, V]) { c.ExpireUpdateTTL = ttlMillis }
}

func WithExpireGetTTL[K, V any](ttlMillis int64) Option[K, V] {
	return func(c *Config[K, V]) { c.ExpireGetTTL = ttlMillis }
}

func WithExpireMaxSize[K, V any](n int64) Option[K, V] {
	return func(c *Config[K, V]) { c.ExpireMaxSize = n }
}

func WithExpireStoreSize[K, V any](bytes int64) Option[K, V] {
	return func(c *Config[K, V]) { c.ExpireStoreSize = bytes }
}

// WithExecutor attaches a background eviction executor with the given
// period. Without this option, eviction
// only runs in foreground, inline with put/get/remove/replace.
func WithExecutor[K, V any](period time.Duration) Option[K, V] {
	return func(c *Config[K, V]) { c.ExpireExecutorPeriod = period }
}

func WithCompactThreshold[K, V any](fraction float64) Option[K, V] {
	return func(c *Config[K, V]) { c.ExpireCompactThreshold = fraction }
}

func WithHashers[K, V any](keyHasher hash.Hasher[K], valueHasher hash.Hasher[V]) Option[K, V] {
	return func(c *Config[K, V]) { c.KeyHasher, c.ValueHasher = keyHasher, valueHasher }
}

func WithSerializers[K, V any](keySer hash.Serializer[K], valueSer hash.Serializer[V]) Option[K, V] {
	return func(c *Config[K, V]) { c.KeySer, c.ValueSer = keySer, valueSer }
}

func WithStoreFactory[K, V any](f func(segment int) store.Store) Option[K, V] {
	return func(c *Config[K, V]) { c.StoreFactory = f }
}

func WithIndexTreeFactory[K, V any](f func(segment int) indextree.IndexTree) Option[K, V] {
	return func(c *Config[K, V]) { c.IndexTreeFactory = f }
}

func WithCreateQueueFactory[K, V any](f func(segment int) queue.QueueLong) Option[K, V] {
	return func(c *Config[K, V]) { c.CreateQueueFactory = f }
}

func WithUpdateQueueFactory[K, V any](f func(segment int) queue.QueueLong) Option[K, V] {
	return func(c *Config[K, V]) { c.UpdateQueueFactory = f }
}

func WithGetQueueFactory[K, V any](f func(segment int) queue.QueueLong) Option[K, V] {
	return func(c *Config[K, V]) { c.GetQueueFactory = f }
}

func WithCounters[K, V any](f func(segment int) (recid int64, enabled bool)) Option[K, V] {
	return func(c *Config[K, V]) { c.CounterFactory = f }
}

func WithLogger[K, V any](l *zap.Logger) Option[K, V] {
	return func(c *Config[K, V]) { c.Logger = l }
}

func WithRecorder[K, V any](r metrics.Recorder) Option[K, V] {
	return func(c *Config[K, V]) { c.Recorder = r }
}

func WithModificationListener[K, V any](l ModificationListener[K, V]) Option[K, V] {
	return func(c *Config[K, V]) { c.Listeners = append(c.Listeners, l) }
}

func WithValueLoader[K, V any](loader func(key K) (V, bool)) Option[K, V] {
	return func(c *Config[K, V]) { c.ValueLoader = loader }
}
