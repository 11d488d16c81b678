package htreemap_test

import (
	"fmt"
	"time"

	"github.com/Krishna8167/htreemap"
)

// ExampleHMap demonstrates create-TTL expiration: an entry put with a short
// TTL is gone once that TTL has elapsed, reclaimed by the foreground
// eviction check that runs inline on the next mutating call.
func ExampleHMap() {
	m, err := htreemap.New[string, string](
		htreemap.WithExpireCreateTTL[string, string](5),
	)
	if err != nil {
		fmt.Println("new:", err)
		return
	}
	defer m.Close()

	if err := m.PutOnly("name", "krishna"); err != nil {
		fmt.Println("put:", err)
		return
	}

	time.Sleep(20 * time.Millisecond)

	// Remove is a mutating call, so it runs the foreground eviction sweep
	// before looking the key up.
	if _, ok, err := m.Remove("name"); err == nil && !ok {
		fmt.Println("expired")
	}

	// Output:
	// expired
}
