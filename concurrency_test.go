package htreemap

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestConcurrentAccess stress-tests Put/Get/Remove from many goroutines at
once. It asserts only the absence of panics/data races and that the map
is left in a verifiably consistent state — run with `go test -race` for
the race-detector pass this is designed for.
*/
func TestConcurrentAccess(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "key"
			_, _, _ = m.Put(key, i)
			_, _, _ = m.Get(key)
			_, _, _ = m.Remove(key)
		}(i)
	}
	wg.Wait()

	assert.NoError(t, m.Verify())
}

// TestConcurrentPutIfAbsentHasExactlyOneWinner checks that concurrent
// PutIfAbsent calls from N goroutines on the same key yield exactly one
// winner, and every other caller observes that winner's value.
func TestConcurrentPutIfAbsentHasExactlyOneWinner(t *testing.T) {
	m, err := New[string, int]()
	require.NoError(t, err)
	defer m.Close()

	const n = 50
	var wins int32
	results := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			existing, present, err := m.PutIfAbsent("shared", i)
			assert.NoError(t, err)
			if !present {
				atomic.AddInt32(&wins, 1)
				results[i] = i
			} else {
				results[i] = existing
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)

	final, ok, err := m.Get("shared")
	require.NoError(t, err)
	require.True(t, ok)
	for _, r := range results {
		assert.Equal(t, final, r)
	}
}

func TestConcurrentDistinctKeysAllSurvive(t *testing.T) {
	m, err := New[string, int](WithGeometry[string, int](3, 4, 2))
	require.NoError(t, err)
	defer m.Close()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			_, _, _ = m.Put(key, i)
		}(i)
	}
	wg.Wait()

	size, err := m.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 26, size)
	assert.NoError(t, m.Verify())
}
