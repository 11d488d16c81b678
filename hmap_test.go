package htreemap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constHasher routes every key to the same hash, used to force bucket
// collisions deterministically instead of relying on
// luck with the default xxhash hasher.
type constHasher struct{ h uint32 }

func (c constHasher) HashCode(v string, seed uint32) uint32 { return c.h }
func (c constHasher) Equals(a, b string) bool               { return a == b }

// mapHasher looks up each key's hash from a fixed table, used to pin keys
// to specific (segment, index) buckets deterministically in tests.
type mapHasher map[string]uint32

func (m mapHasher) HashCode(v string, seed uint32) uint32 { return m[v] }
func (m mapHasher) Equals(a, b string) bool               { return a == b }

func TestNewRejectsBadGeometry(t *testing.T) {
	_, err := New[string, int](WithGeometry[string, int](-1, 4, 2))
	assert.ErrorIs(t, err, ErrBadGeometry)
}

func TestNewRejectsNoValuesAndNotInline(t *testing.T) {
	_, err := New[string, int](WithHasValues[string, int](false), WithValueInline[string, int](false))
	assert.ErrorIs(t, err, ErrBadGeometry)
}

func TestPutGetRemoveRoundTrip(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	old, ok, err := m.Put("a", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, old)

	old, ok, err = m.Put("a", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, old)

	v, ok, err := m.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	removed, ok, err := m.Remove("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, removed)

	_, ok, err = m.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutRejectsAbsentKeyAndValue(t *testing.T) {
	m, err := New[*int, *int]()
	require.NoError(t, err)
	defer m.Close()

	one := 1
	_, _, err = m.Put(nil, &one)
	assert.ErrorIs(t, err, ErrKeyAbsent)

	_, _, err = m.Put(&one, nil)
	assert.ErrorIs(t, err, ErrValueAbsent)
}

func TestClosedMapRejectsOperations(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, _, err = m.Put("a", 1)
	assert.ErrorIs(t, err, ErrClosed)

	_, _, err = m.Get("a")
	assert.ErrorIs(t, err, ErrClosed)

	// Close is idempotent.
	assert.NoError(t, m.Close())
}

func TestGetWithValueLoaderSynthesizesMiss(t *testing.T) {
	loaderCalls := 0
	m, err := New[string, int](WithValueLoader[string, int](func(k string) (int, bool) {
		loaderCalls++
		if k == "known" {
			return 42, true
		}
		return 0, false
	}))
	require.NoError(t, err)
	defer m.Close()

	v, ok, err := m.Get("known")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, loaderCalls)

	// Second Get hits the now-inserted entry without calling the loader again.
	v, ok, err = m.Get("known")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, loaderCalls)

	_, ok, err = m.Get("unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceAndPutIfAbsent(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	existing, present, err := m.PutIfAbsent("a", 1)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Equal(t, 0, existing)

	existing, present, err = m.PutIfAbsent("a", 2)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, 1, existing)

	ok, err := m.ReplaceIfEquals("a", 99, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.ReplaceIfEquals("a", 1, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	old, ok, err := m.Replace("a", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, old)

	_, ok, err = m.Replace("missing", 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModificationListenerNotifiedOnPutAndRemove(t *testing.T) {
	type event struct {
		key               string
		oldVal, newVal    int
		oldOK, newOK      bool
		triggered         bool
	}
	var events []event
	m, err := New[string, int](WithModificationListener[string, int](
		func(key string, oldVal int, oldOK bool, newVal int, newOK bool, triggered bool) {
			events = append(events, event{key, oldVal, newVal, oldOK, newOK, triggered})
		}))
	require.NoError(t, err)
	defer m.Close()

	_, _, err = m.Put("a", 1)
	require.NoError(t, err)
	_, _, err = m.Remove("a")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.False(t, events[0].oldOK)
	assert.True(t, events[0].newOK)
	assert.False(t, events[0].triggered)
	assert.True(t, events[1].oldOK)
	assert.False(t, events[1].newOK)
}

func TestCollidingKeysShareLeafAndRouteToSameIndex(t *testing.T) {
	m, err := New[string, int](WithHashers[string, int](constHasher{h: 0}, nil))
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
	require.NotZero(t, leafRecid)

	triples, err := m.readLeaf(seg, leafRecid)
	require.NoError(t, err)
	assert.Len(t, triples, 2)
}

func TestIsEmptyAndSize(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	empty, err := m.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	_, _, err = m.Put("a", 1)
	require.NoError(t, err)

	empty, err = m.IsEmpty()
	require.NoError(t, err)
	assert.False(t, empty)

	n, err := m.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestTTLNoExpiryNeverExpires(t *testing.T) {
	m, err := New[string, int](WithExpireCreateTTL[string, int](TTLNoExpiry))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.PutOnly("a", 1))
	time.Sleep(5 * time.Millisecond)

	v, ok, err := m.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
