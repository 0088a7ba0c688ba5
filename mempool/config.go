// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements PONC's fee-priority transaction pool (spec
// §4.5). It is adapted from the teacher's UTXO-keyed, ancestor/descendant
// aware mempool down to the shape an account/nonce model actually needs:
// there is no orphan pool (a transaction either matches the sender's
// current expected nonce or it is rejected outright — no future-nonce
// queueing) and no ancestor/descendant graph (replacement is a single
// (sender, nonce) slot, not a package of chained spends).
package mempool

import (
	"github.com/ponknot/ponc/wire"
)

// Policy bounds what the pool will admit (spec §4.5 "Admission").
type Policy struct {
	// MaxTxBytes is the largest serialized transaction size admitted.
	MaxTxBytes uint32

	// MaxPoolBytes is the total serialized size the pool may hold before
	// ErrMempoolFull is returned. A replacement is measured net of the
	// size of the transaction it replaces.
	MaxPoolBytes uint32

	// MaxPoolCount is the total transaction count ceiling, independent of
	// byte size.
	MaxPoolCount int
}

// DefaultPolicy mirrors the teacher's conservative defaults, scaled down
// for PONC's much smaller fixed-shape transactions.
func DefaultPolicy() Policy {
	return Policy{
		MaxTxBytes:   100 * 1024,
		MaxPoolBytes: 64 * 1024 * 1024,
		MaxPoolCount: 50_000,
	}
}

// Config wires the pool to the rest of the node without importing
// blockchain or store directly, avoiding an import cycle (spec §9 design
// note: explicit NodeContext, no globals).
type Config struct {
	Policy Policy

	// GetAccount returns the committed-tip account for addr, or nil for
	// an address that has never been credited (spec §4.4 absent
	// sentinel). The mempool never sees uncommitted state.
	GetAccount func(addr wire.Address) (*wire.Account, error)

	// VerifySignature reports whether tx's signature verifies against its
	// claimed sender's public key (delegated to crypto/pqsig, spec §4.6
	// "the core treats it as an opaque verify(pk, msg, sig) -> bool").
	VerifySignature func(tx *wire.Transaction) bool
}
