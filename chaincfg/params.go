// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateNet describes an error where the parameters for a network
// could not be registered because the name is already registered.
var ErrDuplicateNet = errors.New("duplicate network")

// TunableParameters holds the subset of consensus parameters spec.md
// calls out as deployment-tunable (spec §4.2, §4.3, §4.7, §9 Open
// Question 3). Values outside the listed ranges must be rejected by
// whatever constructs a Params at startup; this package only carries the
// defaults and the bounds, it does not enforce them.
type TunableParameters struct {
	// GovernanceCapBps is the maximum basis-points weight any single
	// account's governance vote may carry (spec §4.3). Default 1000
	// (10%), valid range [500, 2000].
	GovernanceCapBps uint32

	// PoNCRounds is the number of scratchpad-mixing rounds R performed
	// per nonce evaluation (spec §4.2). Default 512, valid range
	// [256, 2048].
	PoNCRounds uint32

	// ScratchpadBytes is the size N*32 of the PoNC scratchpad in bytes
	// (spec §4.2). Default 2 MiB, valid range [2 MiB, 256 MiB]. Must be
	// a power of two so scratchpad index selection can mask instead of
	// taking a remainder.
	ScratchpadBytes uint64

	// MaxBlockBytes bounds the serialized size of a block (spec §4.6).
	MaxBlockBytes uint32

	// DisputeWindow is the governance dispute window, in blocks (spec
	// §4.7). It is persisted with the other tunables and governance can
	// change it, but no validation code in this module reads it: votes on
	// a proposal are tallied at any height and voting never closes.
	DisputeWindow uint32

	// MaxInboundConnections and MaxOutboundConnections bound the node's
	// peer-connection fan-out. The consensus core in this module does
	// not dial or accept connections itself (spec §1 places P2P
	// transport out of scope) but carries these limits so a future
	// transport layer has a single source of truth for them.
	MaxInboundConnections  uint32
	MaxOutboundConnections uint32
}

// DefaultTunableParameters returns spec.md's default tunables (spec §4.2,
// §4.3, §4.7).
func DefaultTunableParameters() TunableParameters {
	return TunableParameters{
		GovernanceCapBps:       1000,
		PoNCRounds:             512,
		ScratchpadBytes:        2 * 1024 * 1024,
		MaxBlockBytes:          4 * 1024 * 1024,
		DisputeWindow:          2016,
		MaxInboundConnections:  125,
		MaxOutboundConnections: 8,
	}
}

// TunableParametersSize is the length in bytes of TunableParameters'
// fixed binary encoding, as persisted in the store's params column family
// (spec §4.4, §4.7).
const TunableParametersSize = 4 + 4 + 8 + 4 + 4 + 4 + 4

// Serialize encodes the tunables into their fixed-size binary form. Kept
// as plain integer fields with no reflection or text encoding, matching
// the rest of the consensus core's "pure integer, no stringification"
// rule (spec §4.3).
func (t TunableParameters) Serialize() []byte {
	buf := make([]byte, TunableParametersSize)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], t.GovernanceCapBps)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], t.PoNCRounds)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], t.ScratchpadBytes)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], t.MaxBlockBytes)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], t.DisputeWindow)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], t.MaxInboundConnections)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], t.MaxOutboundConnections)
	off += 4
	return buf
}

// ParseTunableParameters decodes a TunableParameters value from its fixed
// binary encoding.
func ParseTunableParameters(data []byte) (TunableParameters, error) {
	if len(data) != TunableParametersSize {
		return TunableParameters{}, fmt.Errorf("tunable parameters: want %d bytes, got %d", TunableParametersSize, len(data))
	}
	var t TunableParameters
	off := 0
	t.GovernanceCapBps = binary.LittleEndian.Uint32(data[off:])
	off += 4
	t.PoNCRounds = binary.LittleEndian.Uint32(data[off:])
	off += 4
	t.ScratchpadBytes = binary.LittleEndian.Uint64(data[off:])
	off += 8
	t.MaxBlockBytes = binary.LittleEndian.Uint32(data[off:])
	off += 4
	t.DisputeWindow = binary.LittleEndian.Uint32(data[off:])
	off += 4
	t.MaxInboundConnections = binary.LittleEndian.Uint32(data[off:])
	off += 4
	t.MaxOutboundConnections = binary.LittleEndian.Uint32(data[off:])
	off += 4
	return t, nil
}

// Params defines a PONC network by its consensus parameters. Unlike the
// teacher's btcsuite-derived Params, there is no script-deployment
// machinery (no BIP9 bit/threshold table, no address version bytes, no HD
// key magics) since PONC has neither a script layer nor key-derivation
// concerns in its consensus core.
type Params struct {
	// Name is a human-readable network identifier, e.g. "mainnet".
	Name string

	// GenesisTimestamp is the unix-seconds timestamp stamped into the
	// genesis block header (spec §9 Open Question 3: genesis content is
	// a deployment parameter, not a hardcoded constant).
	GenesisTimestamp uint32

	// GenesisMessage is an arbitrary byte string committed to by the
	// genesis coinbase (spec §9 Open Question 3). Networks may use this
	// for a launch commitment the way the teacher embeds a constitution
	// hash and timestamp-proof headline.
	GenesisMessage []byte

	// GenesisTarget is the initial PoW target for block 1 (spec §4.2).
	GenesisTarget [32]byte

	// RetargetInterval is the number of blocks between difficulty
	// retargets (spec §4.2). Default 60.
	RetargetInterval uint32

	// TargetBlockTime is the desired time between blocks, in seconds
	// (spec §4.2). Default 60.
	TargetBlockTime uint32

	// RetargetClampFactor bounds the ratio by which actual elapsed time
	// may deviate from TargetBlockTime*RetargetInterval before being
	// clamped, in either direction (spec §4.2). Default 4, i.e. actual
	// time is clamped to [expected/4, expected*4].
	RetargetClampFactor uint32

	// EmissionPhase1EndHeight is the height at which the linear reward
	// ramp of emission phase 1 ends (spec §4.3). Default 262,800.
	EmissionPhase1EndHeight uint32

	// EmissionPhase2EndHeight is the height at which the constant-reward
	// emission phase 2 ends (spec §4.3). Default 525,600.
	EmissionPhase2EndHeight uint32

	// ReferralWindowBlocks records the referral window, in blocks, that a
	// referrer's last_mined_height may lag the current height (spec
	// §4.3). Default 2,880. The referral rule itself does not read this
	// field: rewards.ReferralBonus uses its own rewards.ReferralWindowBlocks
	// constant, so changing this value does not change consensus.
	ReferralWindowBlocks uint32

	// ReferralBonusBps records the referral bonus rate in basis points of
	// the base reward (spec §4.3). Default 500 (5%). Like
	// ReferralWindowBlocks it is not read by rewards.ReferralBonus, which
	// uses its own rewards.ReferralBonusBps constant.
	ReferralBonusBps uint32

	// Tunables holds the deployment-tunable parameters (spec §9 Open
	// Question 3).
	Tunables TunableParameters
}

// MainNetParams defines the default PONC mainnet parameters.
var MainNetParams = Params{
	Name:                    "mainnet",
	GenesisTimestamp:        1798761600, // 2027-01-01T00:00:00Z
	GenesisMessage:          []byte("PONC genesis block"),
	RetargetInterval:        60,
	TargetBlockTime:         60,
	RetargetClampFactor:     4,
	EmissionPhase1EndHeight: 262800,
	EmissionPhase2EndHeight: 525600,
	ReferralWindowBlocks:    2880,
	ReferralBonusBps:        500,
	Tunables:                DefaultTunableParameters(),
}

func init() {
	// GenesisTarget is the maximum PoW target (lowest difficulty):
	// 2^256 - 1 in big-endian bytes, i.e. all 0xFF.
	for i := range MainNetParams.GenesisTarget {
		MainNetParams.GenesisTarget[i] = 0xff
	}
}

// TestNetParams defines a low-difficulty network for integration tests
// and local development, sharing mainnet's economic schedule but with a
// distinct genesis so the two chains never collide.
var TestNetParams = func() Params {
	p := MainNetParams
	p.Name = "testnet"
	p.GenesisTimestamp = 1798761600
	p.GenesisMessage = []byte("PONC testnet genesis")
	p.Tunables.ScratchpadBytes = 2 * 1024 * 1024
	p.Tunables.PoNCRounds = 64
	return p
}()

// String returns the network's human-readable name.
func (p Params) String() string {
	return p.Name
}

// RetargetTimespan returns the expected wall-clock duration of one full
// retarget window (spec §4.2).
func (p Params) RetargetTimespan() time.Duration {
	return time.Duration(p.RetargetInterval) * time.Duration(p.TargetBlockTime) * time.Second
}
