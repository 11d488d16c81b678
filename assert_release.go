//go:build !htreemap_paranoid

package htreemap

// assertRouting and assertWriteLocked are no-ops in release builds:
// paranoid assertions must not run in production. Build with
// -tags htreemap_paranoid to enable the checked variants in
// assert_paranoid.go.
func (m *HMap[K, V]) assertRouting(key K, segIdx int) {}

func (seg *segment[K, V]) assertWriteLocked() {}
