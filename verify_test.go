package htreemap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPassesOnHealthyMap(t *testing.T) {
	m, err := New[string, int](
		WithExpireCreateTTL[string, int](TTLNoExpiry),
		WithExpireUpdateTTL[string, int](TTLNoExpiry),
		WithExpireGetTTL[string, int](TTLNoExpiry),
	)
	require.NoError(t, err)
	defer m.Close()

	for i := 0; i < 50; i++ {
		_, _, err := m.Put(string(rune('a'+i%26))+string(rune('0'+i/26)), i)
		require.NoError(t, err)
	}
	for i := 0; i < 50; i++ {
		_, _, err := m.Get(string(rune('a'+i%26)) + string(rune('0'+i/26)))
		require.NoError(t, err)
	}

	assert.NoError(t, m.Verify())
}

func TestVerifyCatchesDanglingQueueNode(t *testing.T) {
	m, err := New[string, int](WithExpireCreateTTL[string, int](TTLNoExpiry))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.PutOnly("a", 1))

	segIdx, _, _ := m.route("a")
	seg := m.segments[segIdx]
	// Directly inject an orphan queue node with no corresponding leaf
	// triple, simulating the corruption Verify's queue cross-check exists
	// to catch.
	_, err = seg.createQueue.Put(0, 9999)
	require.NoError(t, err)

	err = m.Verify()
	require.Error(t, err)
	var corruption *ErrCorruption
	assert.ErrorAs(t, err, &corruption)
}

func TestVerifyAfterEvictionSweepStillConsistent(t *testing.T) {
	m, err := New[string, int](WithExpireCreateTTL[string, int](5))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.PutOnly("a", 1))
	require.NoError(t, m.PutOnly("b", 2))
	time.Sleep(15 * time.Millisecond)

	for _, seg := range m.segments {
		seg.lock.Lock()
		err := m.expireEvictSegment(seg)
		seg.lock.Unlock()
		require.NoError(t, err)
	}

	assert.NoError(t, m.Verify())
}

func TestClearEmptiesEverySegment(t *testing.T) {
	var evictedLike int
	m, err := New[string, int](WithModificationListener[string, int](
		func(key string, oldVal int, oldOK bool, newVal int, newOK bool, triggered bool) {
			if triggered {
				evictedLike++
			}
		}))
	require.NoError(t, err)
	defer m.Close()

	for i := 0; i < 10; i++ {
		_, _, err := m.Put(string(rune('a'+i)), i)
		require.NoError(t, err)
	}

	require.NoError(t, m.Clear(ClearExpired))

	empty, err := m.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	n, err := m.Size()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 10, evictedLike)

	assert.NoError(t, m.Verify())
}
