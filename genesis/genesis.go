// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package genesis constructs a network's genesis block from its
// chaincfg.Params. Genesis content — timestamp, commitment message, and
// initial target — is a deployment parameter rather than a hardcoded
// constant (spec §9 Open Question 3), so this package takes Params in
// and returns a fully formed block; it never reaches for package-level
// network state.
package genesis

import (
	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// NewGenesisBlock constructs the genesis block for the given network
// parameters. Like every later block's coinbase, the genesis coinbase
// transaction itself carries a zero Amount: the height-0 base reward it
// earns is credited straight to the miner address by the caller that
// bootstraps a store with this block, the same way applyTransactions
// credits every later block's reward, never through the coinbase tx's
// own Amount field. The coinbase commits to params.GenesisMessage the
// way the teacher's genesis coinbase commits to a constitution-hash and
// timestamp-proof headline, generalized here to an arbitrary
// caller-supplied message.
func NewGenesisBlock(params chaincfg.Params) *wire.Block {
	coinbase := wire.Transaction{
		Version:   wire.TxVersion,
		Sender:    wire.ZeroAddress,
		Recipient: wire.ZeroAddress,
		Amount:    0,
		Fee:       0,
		Nonce:     0,
		PubKey:    append([]byte(nil), params.GenesisMessage...),
	}

	header := wire.BlockHeader{
		Version:      wire.BlockVersion,
		PrevBlock:    chainhash.ZeroHash,
		Timestamp:    params.GenesisTimestamp,
		Target:       params.GenesisTarget,
		MinerAddress: wire.ZeroAddress,
		Height:       0,
		Nonce:        0,
	}

	block := &wire.Block{
		Header:       header,
		Transactions: []wire.Transaction{coinbase},
	}

	root, err := wire.MerkleRoot(block.Transactions)
	if err != nil {
		// Only possible if the fixed genesis coinbase fails to
		// serialize, which cannot happen for a well-formed
		// Transaction literal.
		panic(err)
	}
	block.Header.MerkleRoot = root

	return block
}
