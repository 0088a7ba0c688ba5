// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements spec §4.6's block validator/applier: the
// single accept_block operation that takes an unvalidated block, runs it
// through pre-checks, a shadow-state transaction loop, coinbase and
// governance application, and an atomic commit. It is the consensus
// core's single writer (spec §5): AcceptBlock serializes behind Chain's
// mutex exactly as the teacher's BlockChain serializes behind chainLock
// for the same reason — one code path ever advances the tip.
package blockchain

import (
	"sync"
	"time"

	"github.com/btcsuite/btclog"

	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/mempool"
	"github.com/ponknot/ponc/rewards"
	"github.com/ponknot/ponc/store"
	"github.com/ponknot/ponc/wire"
)

// log is a logger that is initialized with no output filters. This means
// the package will not perform any logging by default until the caller
// requests it.
var log btclog.Logger

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

// maxFutureBlockTime is how far into the future a block's timestamp may
// sit and still be accepted (spec §4.6: "block.time < now + 2*3600").
const maxFutureBlockTime = 2 * time.Hour

// Config wires a Chain to the rest of the node without the node package
// needing to reach back into blockchain's internals (spec §9 design
// note: explicit NodeContext, no globals).
type Config struct {
	// Store is the durable chain-state store. Required.
	Store *store.Store

	// Params are this network's static consensus parameters (retarget
	// schedule, emission phase boundaries, genesis values). Required.
	Params chaincfg.Params

	// VerifySignature reports whether sig is valid over msg under pubKey
	// (spec §4.6: "the core treats it as an opaque verify(pk, msg, sig)
	// -> bool"). Required.
	VerifySignature func(pubKey, msg, sig []byte) bool

	// AddressFromPubKey derives the address a public key controls (spec
	// §4.6 "address_from_pubkey(pk) == tx.sender"). Required.
	AddressFromPubKey func(pubKey []byte) wire.Address

	// Mempool, if non-nil, is notified via HandleTipChange after every
	// committed block so it can evict transactions the new tip
	// invalidates (spec §4.5 "Eviction").
	Mempool *mempool.TxPool

	// Now returns the current time. Defaults to time.Now; overridable so
	// tests can exercise the timestamp checks deterministically.
	Now func() time.Time
}

// Chain is the block validator/applier. All exported methods are safe
// for concurrent use; AcceptBlock internally serializes on writeMu so
// only one block is ever being committed at a time.
type Chain struct {
	writeMu sync.Mutex

	store             *store.Store
	params            chaincfg.Params
	verifySignature   func(pubKey, msg, sig []byte) bool
	addressFromPubKey func(pubKey []byte) wire.Address
	mempool           *mempool.TxPool
	now               func() time.Time
}

// New returns a Chain backed by cfg. The store must already be
// bootstrapped with a genesis block (see store.Store.Bootstrap); New
// does not create one.
func New(cfg Config) *Chain {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Chain{
		store:             cfg.Store,
		params:            cfg.Params,
		verifySignature:   cfg.VerifySignature,
		addressFromPubKey: cfg.AddressFromPubKey,
		mempool:           cfg.Mempool,
		now:               now,
	}
}

// BestSnapshot returns the current tip's height and hash.
func (c *Chain) BestSnapshot() (uint32, chainhash.Hash, error) {
	tip, ok, err := c.store.GetTip()
	if err != nil {
		return 0, chainhash.Hash{}, err
	}
	if !ok {
		return 0, chainhash.Hash{}, ruleError(ErrBadParent, "chain has not been bootstrapped")
	}
	return tip.Height, tip.Hash, nil
}

// CurrentParams returns the tunables currently in force, falling back to
// this chain's static defaults before genesis.
func (c *Chain) CurrentParams() (chaincfg.TunableParameters, error) {
	params, ok, err := c.store.GetParams()
	if err != nil {
		return chaincfg.TunableParameters{}, err
	}
	if !ok {
		return c.params.Tunables, nil
	}
	return params, nil
}

// expectedTarget returns the PoW target the next block (tip.Height+1)
// must carry (spec §4.6 check 5: "block.target = expected_target_for_height").
// Within a retarget window every block carries the same target as its
// predecessor, so the common case is a single block fetch; only the
// first block of a new window (height % RetargetInterval == 0) pays for
// the retarget computation, which needs just the window's two boundary
// timestamps, never a full history replay.
func (c *Chain) expectedTarget(tip store.Tip) ([32]byte, error) {
	tipBlock, err := c.store.GetBlock(tip.Hash)
	if err != nil {
		return [32]byte{}, err
	}
	if tipBlock == nil {
		return [32]byte{}, ruleError(ErrBadParent, "tip block missing from store")
	}
	currentTarget := tipBlock.Header.Target

	nextHeight := tip.Height + 1
	if nextHeight == 0 || nextHeight%c.params.RetargetInterval != 0 {
		return currentTarget, nil
	}

	windowStart := nextHeight - c.params.RetargetInterval
	startHash, err := c.store.GetHashAt(windowStart)
	if err != nil {
		return [32]byte{}, err
	}
	if startHash == nil {
		return currentTarget, nil
	}
	startBlock, err := c.store.GetBlock(*startHash)
	if err != nil {
		return [32]byte{}, err
	}
	if startBlock == nil {
		return currentTarget, nil
	}

	actual := int64(tipBlock.Header.Timestamp) - int64(startBlock.Header.Timestamp)
	expected := int64(c.params.RetargetInterval) * int64(c.params.TargetBlockTime)
	return rewards.Retarget(currentTarget, actual, expected, c.params.RetargetClampFactor), nil
}
