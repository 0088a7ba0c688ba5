// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"

	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// Column families are implemented as key prefixes over a single goleveldb
// database rather than separate databases, since no example in the pack
// retains a real multi-database ffldb-style wrapper; goleveldb's own
// ordered-keyspace semantics make a single prefixed keyspace equivalent in
// behavior (spec §4.4) while keeping one WAL and one set of file handles.
const (
	cfBlocks        byte = 0x01
	cfHashByHeight  byte = 0x02
	cfAccounts      byte = 0x03
	cfTip           byte = 0x04
	cfProposals     byte = 0x05
	cfParams        byte = 0x06
	cfReferralIndex byte = 0x07
)

// tipKey and paramsKey are singleton keys: both column families hold
// exactly one live record, the current tip and the currently active
// tunables.
var (
	tipKey    = []byte{cfTip}
	paramsKey = []byte{cfParams}
)

func blockKey(hash chainhash.Hash) []byte {
	k := make([]byte, 1+chainhash.HashSize)
	k[0] = cfBlocks
	copy(k[1:], hash[:])
	return k
}

// heightKey encodes the height big-endian so hash_by_height iterates in
// ascending height order, matching goleveldb's natural key ordering.
func heightKey(height uint32) []byte {
	k := make([]byte, 1+4)
	k[0] = cfHashByHeight
	binary.BigEndian.PutUint32(k[1:], height)
	return k
}

func accountKey(addr wire.Address) []byte {
	k := make([]byte, 1+wire.AddressSize)
	k[0] = cfAccounts
	copy(k[1:], addr[:])
	return k
}

func proposalKey(target chainhash.Hash) []byte {
	k := make([]byte, 1+chainhash.HashSize)
	k[0] = cfProposals
	copy(k[1:], target[:])
	return k
}

func referralIndexKey(code [wire.PrivacyCodeSize]byte) []byte {
	k := make([]byte, 1+wire.PrivacyCodeSize)
	k[0] = cfReferralIndex
	copy(k[1:], code[:])
	return k
}
