package htreemap

import (
	"bytes"

	"github.com/Krishna8167/htreemap/hash"
)

// triple is one (key, wrappedValue, expireId) slot of a leaf.
// Which of Value/ValueRecid is meaningful depends on the owning map's
// valueInline/hasValues configuration.
type triple[K, V any] struct {
	Key        K
	Value      V
	ValueRecid int64
	ExpireID   int64
}

// leafCodec encodes/decodes the on-store leaf record. Leaves
// hold all collisions sharing one (segment, index) bucket; a leaf always
// holds at least one triple, and an empty leaf is deleted rather than
// stored.
type leafCodec[K, V any] struct {
	keySer      hash.Serializer[K]
	valSer      hash.Serializer[V]
	valueInline bool
	hasValues   bool
}

func (c *leafCodec[K, V]) encode(triples []triple[K, V]) ([]byte, error) {
	var buf bytes.Buffer
	packUvarint(&buf, uint64(len(triples)))
	for _, t := range triples {
		kb, err := c.keySer.Marshal(t.Key)
		if err != nil {
			return nil, err
		}
		packBytes(&buf, kb)

		switch {
		case !c.hasValues:
			// KeySet: no value slot at all.
		case c.valueInline:
			vb, err := c.valSer.Marshal(t.Value)
			if err != nil {
				return nil, err
			}
			packBytes(&buf, vb)
		default:
			packUvarint(&buf, uint64(t.ValueRecid))
		}
		packUvarint(&buf, uint64(t.ExpireID))
	}
	return buf.Bytes(), nil
}

func (c *leafCodec[K, V]) decode(b []byte) ([]triple[K, V], error) {
	r := bytes.NewReader(b)
	n, err := unpackUvarint(r)
	if err != nil {
		return nil, corrupt("leaf header", err)
	}
	out := make([]triple[K, V], 0, n)
	for i := uint64(0); i < n; i++ {
		kb, err := unpackBytes(r)
		if err != nil {
			return nil, corrupt("leaf key", err)
		}
		key, err := c.keySer.Unmarshal(kb)
		if err != nil {
			return nil, corrupt("leaf key unmarshal", err)
		}
		t := triple[K, V]{Key: key}
		switch {
		case !c.hasValues:
			// value is the literal present-marker; caller synthesizes it.
		case c.valueInline:
			vb, err := unpackBytes(r)
			if err != nil {
				return nil, corrupt("leaf value", err)
			}
			v, err := c.valSer.Unmarshal(vb)
			if err != nil {
				return nil, corrupt("leaf value unmarshal", err)
			}
			t.Value = v
		default:
			recid, err := unpackUvarint(r)
			if err != nil {
				return nil, corrupt("leaf value recid", err)
			}
			t.ValueRecid = int64(recid)
		}
		expireID, err := unpackUvarint(r)
		if err != nil {
			return nil, corrupt("leaf expireId", err)
		}
		t.ExpireID = int64(expireID)
		out = append(out, t)
	}
	return out, nil
}
