// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/ponknot/ponc/rewards"
	"github.com/ponknot/ponc/wire"
)

// BlockTemplate is the pre-coinbase-nonce block a miner solves (spec §6
// "make_template"): every field AcceptBlock will check is already filled
// in except Header.Nonce, which the caller iterates.
type BlockTemplate struct {
	Block          *wire.Block
	ExpectedReward wire.Amount
}

// MakeTemplate assembles a BlockTemplate for minerAddress against the
// current tip: a coinbase crediting minerAddress, as many pooled
// transactions as fit the block size ceiling in fee-priority order, and a
// header carrying the next expected target and a merkle root already
// computed over the selected transactions (spec §6). The caller still
// has to search for a Nonce satisfying Header.Target before submitting
// the result back through AcceptBlock.
func (c *Chain) MakeTemplate(minerAddress wire.Address) (*BlockTemplate, error) {
	tip, ok, err := c.store.GetTip()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ruleError(ErrBadParent, "chain has not been bootstrapped")
	}

	params, ok, err := c.store.GetParams()
	if err != nil {
		return nil, err
	}
	if !ok {
		params = c.params.Tunables
	}

	target, err := c.expectedTarget(tip)
	if err != nil {
		return nil, err
	}

	mtp, err := c.medianTimePast(tip.Height)
	if err != nil {
		return nil, err
	}
	timestamp := uint32(c.now().Unix())
	if timestamp <= mtp {
		timestamp = mtp + 1
	}

	height := tip.Height + 1
	reward, _, err := c.estimateReward(height, minerAddress)
	if err != nil {
		return nil, err
	}

	coinbase := wire.Transaction{
		Version:   wire.TxVersion,
		Sender:    wire.ZeroAddress,
		Recipient: wire.ZeroAddress,
		Amount:    0,
		Fee:       0,
		Nonce:     0,
	}

	txs := []wire.Transaction{coinbase}
	if c.mempool != nil {
		headerOverhead := wire.HeaderSize
		budget := params.MaxBlockBytes
		if uint32(headerOverhead) < budget {
			budget -= uint32(headerOverhead)
		} else {
			budget = 0
		}
		for _, tx := range c.mempool.SelectForTemplate(budget, 0) {
			txs = append(txs, *tx)
		}
	}

	merkleRoot, err := wire.MerkleRoot(txs)
	if err != nil {
		return nil, err
	}

	block := &wire.Block{
		Header: wire.BlockHeader{
			Version:      wire.BlockVersion,
			PrevBlock:    tip.Hash,
			MerkleRoot:   merkleRoot,
			Timestamp:    timestamp,
			Target:       target,
			MinerAddress: minerAddress,
			Height:       height,
		},
		Transactions: txs,
	}

	return &BlockTemplate{Block: block, ExpectedReward: reward}, nil
}

// EstimateReward returns the base subsidy a block at height would pay,
// together with the referral bonus that would additionally be paid to
// referrer if the mining account's referrer were exactly referrer and
// referrer had mined recently enough to remain in the referral window
// (spec §6 "estimate_reward(height, referrer)").
func (c *Chain) EstimateReward(height uint32, referrer *wire.Address) (wire.Amount, wire.Amount, error) {
	if referrer == nil {
		base := rewards.BaseReward(height, c.params.EmissionPhase1EndHeight, c.params.EmissionPhase2EndHeight)
		return base, 0, nil
	}

	referrerAcct, err := c.store.GetAccount(*referrer)
	if err != nil {
		return 0, 0, err
	}

	base := rewards.BaseReward(height, c.params.EmissionPhase1EndHeight, c.params.EmissionPhase2EndHeight)
	var lastMined uint32
	if referrerAcct != nil {
		lastMined = referrerAcct.LastMinedHeight
	}
	bonus := rewards.ReferralBonus(base, true, lastMined, height)
	return base, bonus, nil
}

// estimateReward is MakeTemplate's internal helper: it looks up
// minerAddress's own account to find its referrer (if any) and computes
// the total the coinbase will actually need to mint, mirroring
// applyTransactions' coinbase/referral crediting exactly.
func (c *Chain) estimateReward(height uint32, minerAddress wire.Address) (wire.Amount, wire.Amount, error) {
	minerAcct, err := c.store.GetAccount(minerAddress)
	if err != nil {
		return 0, 0, err
	}
	base := rewards.BaseReward(height, c.params.EmissionPhase1EndHeight, c.params.EmissionPhase2EndHeight)
	if minerAcct == nil || !minerAcct.HasReferrer {
		return base, 0, nil
	}
	return c.EstimateReward(height, &minerAcct.Referrer)
}
