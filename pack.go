package htreemap

import (
	"bytes"
	"encoding/binary"
	"io"
)

// pack/unpack implement the leaf wire format's variable-length integer
// framing for size, expireId, and valueRecid fields. encoding/binary's
// uvarint is the standard idiom for framing lengths and ids this way.

func packUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func unpackUvarint(r *bytes.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func packBytes(buf *bytes.Buffer, b []byte) {
	packUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func unpackBytes(r *bytes.Reader) ([]byte, error) {
	n, err := unpackUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
