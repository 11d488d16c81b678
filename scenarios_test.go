package htreemap

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario 1: basic put/get/remove/size round trip with the geometry named
// in the testable-properties scenario.
func TestScenarioBasicRoundTrip(t *testing.T) {
	m, err := New[string, int](WithGeometry[string, int](2, 4, 2), WithValueInline[string, int](true))
	require.NoError(t, err)
	defer m.Close()

	for _, kv := range []struct {
		k string
		v int
	}{{"a", 1}, {"b", 2}, {"c", 3}} {
		_, _, err := m.Put(kv.k, kv.v)
		require.NoError(t, err)
	}

	n, err := m.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	v, ok, err := m.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	old, ok, err := m.Remove("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, old)

	_, ok, err = m.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = m.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

// scenario 2: two keys forced into the same (segment, index) bucket via a
// constant-hash stub share one leaf; removing each shrinks/empties it.
func TestScenarioCollidingKeysShareLeaf(t *testing.T) {
	m, err := New[string, int](WithHashers[string, int](constHasher{h: 7}, nil))
	require.NoError(t, err)
	defer m.Close()

	_, _, err = m.Put("a", 1)
	require.NoError(t, err)
	_, _, err = m.Put("b", 2)
	require.NoError(t, err)

	segIdx, index, _ := m.route("a")
	seg := m.segments[segIdx]
	leafRecid, err := seg.indexTree.Get(index)
	require.NoError(t, err)

	triples, err := m.readLeaf(seg, leafRecid)
	require.NoError(t, err)
	assert.Len(t, triples, 2)

	_, removed, err := m.Remove("a")
	require.NoError(t, err)
	assert.True(t, removed)

	leafRecid, err = seg.indexTree.Get(index)
	require.NoError(t, err)
	triples, err = m.readLeaf(seg, leafRecid)
	require.NoError(t, err)
	assert.Len(t, triples, 1)

	_, removed, err = m.Remove("b")
	require.NoError(t, err)
	assert.True(t, removed)

	leafRecid, err = seg.indexTree.Get(index)
	require.NoError(t, err)
	assert.Zero(t, leafRecid)
}

// scenario 3: a create-TTL entry is evicted in the foreground by the next
// Get once its deadline has passed, and the listener observes
// triggered=true for that eviction. Get only runs the foreground sweep when
// a get queue is configured, so one is enabled here with TTLNoExpiry.
func TestScenarioForegroundEvictionOnGet(t *testing.T) {
	var lastTriggered bool
	var sawEvent bool
	m, err := New[string, int](
		WithExpireCreateTTL[string, int](50),
		WithExpireGetTTL[string, int](TTLNoExpiry),
		WithModificationListener[string, int](func(key string, oldVal int, oldOK bool, newVal int, newOK bool, triggered bool) {
			if key == "x" && oldOK && !newOK {
				sawEvent = true
				lastTriggered = triggered
			}
		}),
	)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.PutOnly("x", 1))
	time.Sleep(60 * time.Millisecond)

	_, ok, err := m.Get("x")
	require.NoError(t, err)
	assert.False(t, ok)
	require.True(t, sawEvent)
	assert.True(t, lastTriggered)
}

// scenario 4: expireMaxSize caps the map at (approximately) that size once
// an eviction sweep runs, preferring the oldest created entries.
func TestScenarioMaxSizeEviction(t *testing.T) {
	// mapHasher pins each key to a specific (segment, index) so the 4
	// entries split exactly 2-and-2 across the 2 segments, making the
	// "at most expireMaxSize" outcome deterministic instead of depending
	// on where the default hasher happens to land them.
	hashes := map[string]uint32{
		"a": 0x001,
		"b": 0x002,
		"c": 0x101,
		"d": 0x102,
	}
	m, err := New[string, int](
		WithGeometry[string, int](1, 4, 2),
		WithHashers[string, int](mapHasher(hashes), nil),
		WithExpireMaxSize[string, int](2),
		WithExpireCreateTTL[string, int](TTLNoExpiry),
	)
	require.NoError(t, err)
	defer m.Close()

	for _, kv := range []struct {
		k string
		v int
	}{{"a", 1}, {"b", 2}, {"c", 3}, {"d", 4}} {
		require.NoError(t, m.PutOnly(kv.k, kv.v))
	}

	for _, seg := range m.segments {
		seg.lock.Lock()
		err := m.expireEvictSegment(seg)
		seg.lock.Unlock()
		require.NoError(t, err)
	}

	n, err := m.Size()
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int32(2))
}

// scenario 5: with values stored externally, overwriting and then removing
// a key returns the external value record count to zero.
func TestScenarioExternalValueReclaimedOnRemove(t *testing.T) {
	m, err := New[string, string](WithValueInline[string, string](false))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.PutOnly("k", "v1"))
	require.NoError(t, m.PutOnly("k", "v2"))

	segIdx, index, _ := m.route("k")
	seg := m.segments[segIdx]
	leafRecid, err := seg.indexTree.Get(index)
	require.NoError(t, err)
	triples, err := m.readLeaf(seg, leafRecid)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	valueRecid := triples[0].ValueRecid

	_, ok, err := m.Remove("k")
	require.NoError(t, err)
	require.True(t, ok)

	_, found, err := seg.store.Get(valueRecid)
	require.NoError(t, err)
	assert.False(t, found, "external value record must be deleted on remove")
}

// scenario 6: a mixed random workload of put/get/replace/remove/evict
// completes without error and leaves the map internally consistent.
func TestScenarioMixedWorkloadThenVerify(t *testing.T) {
	m, err := New[string, int](
		WithExpireCreateTTL[string, int](5),
		WithExpireUpdateTTL[string, int](5),
		WithExpireGetTTL[string, int](5),
	)
	require.NoError(t, err)
	defer m.Close()

	rng := rand.New(rand.NewSource(1))
	keys := make([]string, 20)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	for i := 0; i < 1000; i++ {
		k := keys[rng.Intn(len(keys))]
		switch rng.Intn(5) {
		case 0:
			_, _, err = m.Put(k, i)
		case 1:
			_, _, err = m.Get(k)
		case 2:
			_, _, err = m.Replace(k, i)
		case 3:
			_, _, err = m.Remove(k)
		case 4:
			for _, seg := range m.segments {
				seg.lock.Lock()
				err = m.expireEvictSegment(seg)
				seg.lock.Unlock()
				if err != nil {
					break
				}
			}
		}
		require.NoError(t, err)
	}

	assert.NoError(t, m.Verify())
}
