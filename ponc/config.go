// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ponc

import (
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// Params bundles the tunable PoNC parameters an Engine evaluates against
// (spec §4.2, §9 Open Question 3). They mirror chaincfg.TunableParameters'
// PoNCRounds and ScratchpadBytes fields but are taken independently here
// so this package never needs to import chaincfg.
type Params struct {
	// Rounds is the number of scratchpad-mixing rounds R performed per
	// nonce evaluation.
	Rounds uint32

	// ScratchpadBytes is the total scratchpad size N*32 in bytes. Must
	// be a positive power-of-two multiple of 32.
	ScratchpadBytes uint64
}

// Config describes a mining instance (spec §4.2, §6). It mirrors the
// teacher's mining/randomx Config descriptor — a block-template
// generator, a chain-tip accessor, and a block submission callback — with
// the RandomX-specific dataset/cache/seed-rotation fields replaced by
// PoNC's Params, since PoNC has no external cache/dataset lifecycle to
// manage.
type Config struct {
	// Params are the PoNC parameters new nonce evaluations run under.
	Params Params

	// NumWorkers specifies the number of goroutines searching for a
	// solution concurrently.
	NumWorkers uint32

	// UpdateNumWorkers is listened to for requests to change the worker
	// count while mining is in progress.
	UpdateNumWorkers chan struct{}

	// BlockTemplateGenerator returns a new block, complete except for
	// its PoW nonce, ready to be solved.
	BlockTemplateGenerator func() (*wire.Block, error)

	// BestSnapshot returns the current best known chain tip: its height
	// and block hash.
	BestSnapshot func() (uint32, chainhash.Hash, error)

	// SubmitBlock submits a solved block for full consensus validation
	// and, if accepted, extension of the chain tip.
	SubmitBlock func(*wire.Block) error

	// IsCurrent reports whether the node believes it has caught up to
	// the best known chain tip. Mining should pause while this is
	// false.
	IsCurrent func() bool
}
