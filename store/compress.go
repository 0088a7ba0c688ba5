// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Values in the blocks and accounts column families may optionally carry a
// one-byte tag identifying whether the remainder is raw or LZ4-compressed
// (spec §4.4: "LZ4 compression... is acceptable but not required by
// consensus" — so the tag must be self-describing, since a reader cannot
// otherwise tell whether the writer had compression enabled).
const (
	valueTagRaw byte = 0x00
	valueTagLZ4 byte = 0x01
)

func encodeValue(raw []byte, compress bool) []byte {
	if !compress {
		return append([]byte{valueTagRaw}, raw...)
	}

	bound := lz4.CompressBlockBound(len(raw))
	compressed := make([]byte, bound)
	var c lz4.Compressor
	n, err := c.CompressBlock(raw, compressed)
	if err != nil || n == 0 || n >= len(raw) {
		// Incompressible, or lz4 declined (n==0 is its "no gain" signal):
		// fall back to storing it raw rather than paying compression
		// overhead for nothing.
		return append([]byte{valueTagRaw}, raw...)
	}

	out := make([]byte, 1+4+n)
	out[0] = valueTagLZ4
	binary.LittleEndian.PutUint32(out[1:5], uint32(len(raw)))
	copy(out[5:], compressed[:n])
	return out
}

func decodeValue(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, storeError(ErrCorrupted, "value: empty record")
	}
	tag, body := data[0], data[1:]
	switch tag {
	case valueTagRaw:
		return body, nil
	case valueTagLZ4:
		if len(body) < 4 {
			return nil, storeError(ErrCorrupted, "value: truncated lz4 header")
		}
		rawLen := binary.LittleEndian.Uint32(body[0:4])
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(body[4:], out)
		if err != nil {
			return nil, storeError(ErrCorrupted, fmt.Sprintf("value: lz4 decompress failed: %v", err))
		}
		return out[:n], nil
	default:
		return nil, storeError(ErrCorrupted, fmt.Sprintf("value: unknown tag %d", tag))
	}
}
