// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node wires the consensus core's independent packages (store,
// mempool, blockchain, the PoNC engine, and the governance registrar)
// into a single context a composition root constructs once at startup
// (spec §9 design note 1: an explicit context replacing ad hoc process
// globals). Nothing in this package reaches for package-level mutable
// state the way the teacher's original cfg/activeNetParams pair does;
// every dependency a Context method needs is either a field set at New
// or an argument the caller passes in, mirroring how mempool.Config and
// blockchain.Config are themselves built from explicit dependencies
// rather than globals.
package node

import (
	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/mempool"
)

// Config describes how to construct a Context.
type Config struct {
	// DataDir is the directory holding the durable store. Ignored when
	// Memory is true.
	DataDir string

	// Memory, when true, opens an in-memory store instead of one
	// rooted at DataDir. Intended for tests and short-lived tooling.
	Memory bool

	// Compress enables LZ4 compression of the blocks and accounts
	// column families (spec §4.4; not consensus-relevant).
	Compress bool

	// Params are this network's consensus parameters.
	Params chaincfg.Params

	// MempoolPolicy bounds what the pool will admit. Zero value selects
	// mempool.DefaultPolicy().
	MempoolPolicy mempool.Policy
}
