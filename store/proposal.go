// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/ponknot/ponc/wire"
)

// Voter records one account's recorded weight against a proposal. Weight
// is fixed at the moment the vote is recorded (spec §4.6 governance
// aggregation: "if cumulative weight crosses 51%... "); a voter's weight
// is never re-derived later even if their contributions change.
type Voter struct {
	Address   wire.Address
	WeightBps uint32
}

// Proposal is a governance target's accumulated vote record (spec §4.7).
// Created on first vote, lives forever (spec §3 "Lifecycle"). Passed and
// ActivationHeight are set together: the applier delays parameter
// application by a fixed 1000 blocks (blockchain's
// governanceActivationDelay) after a proposal first crosses its pass
// threshold (spec §4.6 "Governance aggregation").
type Proposal struct {
	CumulativeWeightBps uint64
	Passed              bool
	ActivationHeight    uint32
	Applied             bool
	Voters              []Voter
}

// HasVoted reports whether addr already has recorded weight against this
// proposal, preventing the double-counting spec §4.6 forbids.
func (p *Proposal) HasVoted(addr wire.Address) bool {
	for _, v := range p.Voters {
		if v.Address == addr {
			return true
		}
	}
	return false
}

// Serialize encodes the proposal. The voter list is variable-length, so
// unlike Account and TunableParameters this record is not fixed-size; it
// is never hashed into consensus data, only persisted, so variable length
// is safe here.
func (p *Proposal) Serialize() []byte {
	const fixedLen = 8 + 1 + 4 + 1 + 4
	buf := make([]byte, fixedLen+len(p.Voters)*(wire.AddressSize+4))
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], p.CumulativeWeightBps)
	off += 8
	buf[off] = boolByte(p.Passed)
	off++
	binary.LittleEndian.PutUint32(buf[off:], p.ActivationHeight)
	off += 4
	buf[off] = boolByte(p.Applied)
	off++
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(p.Voters)))
	off += 4
	for _, v := range p.Voters {
		copy(buf[off:], v.Address[:])
		off += wire.AddressSize
		binary.LittleEndian.PutUint32(buf[off:], v.WeightBps)
		off += 4
	}
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// ParseProposal decodes a proposal from its Serialize encoding.
func ParseProposal(data []byte) (*Proposal, error) {
	const fixedLen = 8 + 1 + 4 + 1 + 4
	if len(data) < fixedLen {
		return nil, storeError(ErrCorrupted, fmt.Sprintf("proposal: truncated header, got %d bytes", len(data)))
	}
	p := &Proposal{}
	off := 0
	p.CumulativeWeightBps = binary.LittleEndian.Uint64(data[off:])
	off += 8
	p.Passed = data[off] != 0
	off++
	p.ActivationHeight = binary.LittleEndian.Uint32(data[off:])
	off += 4
	p.Applied = data[off] != 0
	off++
	voterCount := binary.LittleEndian.Uint32(data[off:])
	off += 4

	const voterSize = wire.AddressSize + 4
	want := fixedLen + int(voterCount)*voterSize
	if len(data) != want {
		return nil, storeError(ErrCorrupted, fmt.Sprintf("proposal: want %d bytes for %d voters, got %d", want, voterCount, len(data)))
	}
	p.Voters = make([]Voter, voterCount)
	for i := range p.Voters {
		var v Voter
		copy(v.Address[:], data[off:off+wire.AddressSize])
		off += wire.AddressSize
		v.WeightBps = binary.LittleEndian.Uint32(data[off:])
		off += 4
		p.Voters[i] = v
	}
	return p, nil
}
