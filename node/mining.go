// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/ponknot/ponc/ponc"
	"github.com/ponknot/ponc/wire"
)

// StartMining starts the PoNC engine mining blocks credited to
// minerAddress with numWorkers worker goroutines. Calling it while
// already mining has no effect (ponc.Engine.Start's own idempotence).
// This node never peers, so IsCurrent always reports true: there is no
// external tip to fall behind.
func (c *Context) StartMining(minerAddress wire.Address, numWorkers uint32) {
	c.Engine.Start(&ponc.Config{
		Params: ponc.Params{
			Rounds:          c.Params.Tunables.PoNCRounds,
			ScratchpadBytes: c.Params.Tunables.ScratchpadBytes,
		},
		NumWorkers:       numWorkers,
		UpdateNumWorkers: make(chan struct{}),
		BlockTemplateGenerator: func() (*wire.Block, error) {
			tmpl, err := c.Chain.MakeTemplate(minerAddress)
			if err != nil {
				return nil, err
			}
			return tmpl.Block, nil
		},
		BestSnapshot: c.Chain.BestSnapshot,
		SubmitBlock: func(blk *wire.Block) error {
			raw, err := blk.Serialize()
			if err != nil {
				return err
			}
			_, err = c.SubmitBlock(raw)
			return err
		},
		IsCurrent: func() bool { return true },
	})
}

// StopMining signals the PoNC engine to stop and blocks until it has.
func (c *Context) StopMining() {
	c.Engine.Stop()
}
