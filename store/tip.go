// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/ponknot/ponc/chainhash"
)

// TipSize is the fixed length of a serialized Tip record.
const TipSize = chainhash.HashSize + 4 + 32

// Tip identifies the current best chain (spec §4.4 get_tip). AccumulatedTarget
// is the running total of per-block work (the inverse of each block's
// target), used to compare competing chains for the longest-accumulated-work
// reorg policy (spec §4.4 "Reorganization").
type Tip struct {
	Hash              chainhash.Hash
	Height            uint32
	AccumulatedTarget [32]byte
}

func (t Tip) serialize() []byte {
	buf := make([]byte, TipSize)
	off := 0
	copy(buf[off:], t.Hash[:])
	off += chainhash.HashSize
	binary.LittleEndian.PutUint32(buf[off:], t.Height)
	off += 4
	copy(buf[off:], t.AccumulatedTarget[:])
	return buf
}

func parseTip(data []byte) (Tip, error) {
	if len(data) != TipSize {
		return Tip{}, storeError(ErrCorrupted, fmt.Sprintf("tip: want %d bytes, got %d", TipSize, len(data)))
	}
	var t Tip
	off := 0
	copy(t.Hash[:], data[off:off+chainhash.HashSize])
	off += chainhash.HashSize
	t.Height = binary.LittleEndian.Uint32(data[off:])
	off += 4
	copy(t.AccumulatedTarget[:], data[off:off+32])
	return t, nil
}
