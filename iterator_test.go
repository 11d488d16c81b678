package htreemap

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntriesVisitsEveryInsertedPairExactlyOnce(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	want := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}
	for k, v := range want {
		_, _, err := m.Put(k, v)
		require.NoError(t, err)
	}

	got := map[string]int{}
	visits := 0
	it := m.Entries()
	for {
		k, v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got[k] = v
		visits++
	}
	assert.Equal(t, want, got)
	assert.Equal(t, len(want), visits)
}

func TestForEachVisitsEveryEntry(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	for i := 0; i < 10; i++ {
		_, _, err := m.Put(string(rune('a'+i)), i)
		require.NoError(t, err)
	}

	var keys []string
	require.NoError(t, m.ForEach(func(k string, v int) error {
		keys = append(keys, k)
		return nil
	}))
	sort.Strings(keys)
	assert.Len(t, keys, 10)
}

func TestIteratorRemoveDeletesLastYielded(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	_, _, err = m.Put("a", 1)
	require.NoError(t, err)

	it := m.Entries()
	k, _, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", k)

	removed, err := it.Remove()
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err = m.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIteratorRemoveWithoutNextFails(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	it := m.Entries()
	_, err = it.Remove()
	assert.ErrorIs(t, err, ErrIteratorState)
}

func TestKeysAndValuesIterators(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	_, _, err = m.Put("a", 1)
	require.NoError(t, err)
	_, _, err = m.Put("b", 2)
	require.NoError(t, err)

	var keys []string
	ki := m.Keys()
	for {
		k, ok, err := ki.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)

	var values []int
	vi := m.Values()
	for {
		v, ok, err := vi.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		values = append(values, v)
	}
	sort.Ints(values)
	assert.Equal(t, []int{1, 2}, values)
}

func TestKeySetViewAddContainsRemove(t *testing.T) {
	m, err := NewSet[string]()
	require.NoError(t, err)
	defer m.Close()

	ks := m.AsKeySet()
	require.NoError(t, ks.Add("x"))

	ok, err := ks.Contains("x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ks.Remove("x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ks.Contains("x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeySetAddRejectedWhenMapHasRealValues(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	ks := m.AsKeySet()
	err = ks.Add("x")
	assert.ErrorIs(t, err, ErrKeySetValue)
}
