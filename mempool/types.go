// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// TxDesc wraps a pooled transaction with the bookkeeping the pool needs to
// order and evict it, in the shape of the teacher's mining.TxDesc.
type TxDesc struct {
	Tx    *wire.Transaction
	TxID  chainhash.Hash
	Size  uint32
	Fee   wire.Amount
	Added time.Time

	// feeRateMicro is fee*1_000_000/size, precomputed at admission so
	// ordering never recomputes it per comparison. Integer, not floating
	// point, and large enough that two distinct (fee, size) pairs rarely
	// tie by accident — ties are still broken deterministically by txid.
	feeRateMicro uint64
}

type senderNonceKey struct {
	sender wire.Address
	nonce  uint64
}

func keyOf(tx *wire.Transaction) senderNonceKey {
	return senderNonceKey{sender: tx.Sender, nonce: tx.Nonce}
}
