package htreemap

// KeySetView is the "keys as a set" view supplement:
// a thin wrapper that only makes sense to mutate through Add when the
// owning map was built in set mode (HasValues false, ValueInline true, as
// NewSet does) — i.e. when this behaves as a pure key set rather than a
// key view of a real key/value map.
type KeySetView[K, V any] struct {
	m *HMap[K, V]
}

// AsKeySet returns a set-style view over m's keys.
func (m *HMap[K, V]) AsKeySet() *KeySetView[K, V] { return &KeySetView[K, V]{m: m} }

// Contains reports whether k is present.
func (ks *KeySetView[K, V]) Contains(k K) (bool, error) {
	_, ok, err := ks.m.Get(k)
	return ok, err
}

// Remove deletes k, reporting whether it was present.
func (ks *KeySetView[K, V]) Remove(k K) (bool, error) {
	return ks.m.RemoveBoolean(k)
}

// Add inserts k with the present marker. It fails with ErrKeySetValue when
// the underlying map actually carries real values, since there is then no sensible value to synthesize.
func (ks *KeySetView[K, V]) Add(k K) error {
	if ks.m.codec.hasValues {
		return ErrKeySetValue
	}
	var zero V
	return ks.m.PutOnly(k, zero)
}

// ForEach visits every key in the set.
func (ks *KeySetView[K, V]) ForEach(fn func(k K) error) error {
	it := ks.m.Keys()
	for {
		k, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(k); err != nil {
			return err
		}
	}
}
