// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ponc

import (
	"encoding/binary"

	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// chunkSize is the width in bytes of one scratchpad chunk (spec §4.2).
const chunkSize = chainhash.HashSize // 32

// Scratchpad is the memory-hard buffer mixed into every nonce evaluation
// for a given (parent block, miner address) pair (spec §4.2). It is
// rebuilt only when either input changes, which is what makes PoNC
// memory-hard against ASIC designs that would otherwise reuse a
// scratchpad across many distinct miner identities.
type Scratchpad struct {
	bytes []byte // len == numChunks*chunkSize
}

// NewScratchpad deterministically builds a scratchpad of scratchpadBytes
// total size for the given parent hash and miner address (spec §4.2):
//
//	seed        = SHA3_256(parent_hash || miner_address)
//	chunk[i]    = SHA3_256(seed || LE_u64(i))      for i in [0, N)
//
// scratchpadBytes must be a positive power of two so index selection in
// EvaluateNonce can mask instead of reducing modulo N.
func NewScratchpad(parentHash chainhash.Hash, miner wire.Address, scratchpadBytes uint64) (*Scratchpad, error) {
	if scratchpadBytes == 0 || scratchpadBytes%chunkSize != 0 {
		return nil, ruleError(ErrUnsupportedPoNCParams, "scratchpad size must be a positive multiple of 32")
	}
	numChunks := scratchpadBytes / chunkSize
	if numChunks&(numChunks-1) != 0 {
		return nil, ruleError(ErrUnsupportedPoNCParams, "scratchpad chunk count must be a power of two")
	}

	seed := chainhash.Sum(parentHash[:], miner[:])

	buf := make([]byte, scratchpadBytes)
	var idxBuf [8]byte
	for i := uint64(0); i < numChunks; i++ {
		binary.LittleEndian.PutUint64(idxBuf[:], i)
		chunk := chainhash.Sum(seed[:], idxBuf[:])
		copy(buf[i*chunkSize:(i+1)*chunkSize], chunk[:])
	}

	return &Scratchpad{bytes: buf}, nil
}

// NumChunks returns the number of 32-byte chunks in the scratchpad.
func (s *Scratchpad) NumChunks() uint64 {
	return uint64(len(s.bytes)) / chunkSize
}

// chunkAt returns the chunk at the given index without bounds checking
// beyond the caller's responsibility to mask the index against
// NumChunks()-1 first.
func (s *Scratchpad) chunkAt(idx uint64) []byte {
	return s.bytes[idx*chunkSize : (idx+1)*chunkSize]
}
