package hash

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// SerializerHasher adapts any Serializer into a Hasher by hashing and
// comparing the marshaled byte representation. This is the default
// KeyHasher/ValueHasher used when a caller doesn't supply a custom pair,
// mirroring how most of the structures in this family hash whatever the
// wire encoding of the key already is rather than inspecting the Go value.
type SerializerHasher[T any] struct {
	Ser T2Serializer[T]
}

// T2Serializer is an alias kept local to this file so SerializerHasher
// doesn't force every caller to import the hash package twice for the same
// generic parameter; it is exactly Serializer[T].
type T2Serializer[T any] = Serializer[T]

func NewDefaultHasher[T any](ser Serializer[T]) *SerializerHasher[T] {
	return &SerializerHasher[T]{Ser: ser}
}

// HashCode marshals v and folds the seed into the xxhash digest, so two
// equal values always hash the same under a given seed, while distinct
// seeds still produce distinct structural hash codes. Bucket routing
// always passes seed 0; other seeds are for structural/external hashing.
func (h *SerializerHasher[T]) HashCode(v T, seed uint32) uint32 {
	b, err := h.Ser.Marshal(v)
	if err != nil {
		return seed
	}
	d := xxhash.New()
	_, _ = d.Write(b)
	sum := d.Sum64()
	if seed != 0 {
		var seedBuf [4]byte
		seedBuf[0] = byte(seed)
		seedBuf[1] = byte(seed >> 8)
		seedBuf[2] = byte(seed >> 16)
		seedBuf[3] = byte(seed >> 24)
		_, _ = d.Write(seedBuf[:])
		sum = d.Sum64()
	}
	return uint32(sum) ^ uint32(sum>>32)
}

func (h *SerializerHasher[T]) Equals(a, b T) bool {
	ab, errA := h.Ser.Marshal(a)
	bb, errB := h.Ser.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
