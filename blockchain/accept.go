// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/governance"
	"github.com/ponknot/ponc/ponc"
	"github.com/ponknot/ponc/rewards"
	"github.com/ponknot/ponc/store"
	"github.com/ponknot/ponc/wire"
)

// governanceActivationDelay is the number of blocks between a proposal
// first crossing its pass threshold and its parameter change landing in
// the params column family (spec §4.6 "Governance aggregation": "delayed
// by 1000 blocks"). Unlike DisputeWindow this is not deployment-tunable;
// spec.md states it as a fixed constant of the applier itself.
const governanceActivationDelay = 1000

// governancePassThresholdBps is 51% of the 10,000-basis-point scale
// CumulativeWeightBps already accumulates in (spec §4.6: "crosses 51% of
// total eligible weight"). Spec.md leaves "total eligible weight"
// implementation-defined; this port fixes the denominator at the full
// basis-point scale so voter weights (each already capped at
// params.GovernanceCapBps, itself capped at 2000 bps) sum directly
// against a constant threshold rather than against a separately tracked,
// ever-changing population total.
const governancePassThresholdBps = 5100

// AppliedBlock is the result of a successful AcceptBlock call: the
// committed block together with the new tip it produced.
type AppliedBlock struct {
	Block  *wire.Block
	NewTip store.Tip
}

// pendingVote is one transaction's queued governance vote, collected
// during the transaction loop for aggregation after it (spec §4.6
// "queue a vote (address + target) for post-loop aggregation").
type pendingVote struct {
	voter  wire.Address
	target chainhash.Hash
}

// AcceptBlock validates block against the current tip and, if every
// check passes, commits it as the new tip (spec §4.6). It is the only
// way the chain's height ever advances.
func (c *Chain) AcceptBlock(block *wire.Block) (*AppliedBlock, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	tip, haveTip, err := c.store.GetTip()
	if err != nil {
		return nil, err
	}
	if !haveTip {
		return nil, ruleError(ErrBadParent, "chain has not been bootstrapped")
	}

	params, ok, err := c.store.GetParams()
	if err != nil {
		return nil, err
	}
	if !ok {
		params = c.params.Tunables
	}

	if err := c.checkBlockSanity(block, params); err != nil {
		return nil, err
	}
	if err := c.checkTimestamp(block, tip.Height); err != nil {
		return nil, err
	}
	if block.Header.PrevBlock != tip.Hash {
		return nil, ruleError(ErrBadParent, "block does not extend the current tip")
	}
	if block.Header.Height != tip.Height+1 {
		return nil, ruleError(ErrBadParent, fmt.Sprintf("expected height %d, got %d", tip.Height+1, block.Header.Height))
	}

	expectedTarget, err := c.expectedTarget(tip)
	if err != nil {
		return nil, err
	}
	if block.Header.Target != expectedTarget {
		return nil, ruleError(ErrBadTarget, "block target does not match the expected difficulty")
	}
	if err := ponc.VerifyNonce(&block.Header, params.PoNCRounds, params.ScratchpadBytes); err != nil {
		return nil, ruleError(ErrBadPoW, err.Error())
	}

	merkleRoot, err := wire.MerkleRoot(block.Transactions)
	if err != nil {
		return nil, err
	}
	if merkleRoot != block.Header.MerkleRoot {
		return nil, ruleError(ErrBadMerkle, "computed merkle root does not match header")
	}

	accounts, proposals, paramsUpdate, err := c.applyTransactions(block, tip.Height+1, params)
	if err != nil {
		return nil, err
	}

	newTip := store.Tip{
		Hash:              block.Header.BlockHash(),
		Height:            block.Header.Height,
		AccumulatedTarget: rewards.AccumulateWork(tip.AccumulatedTarget, block.Header.Target),
	}

	if err := c.store.ApplyBlock(block, newTip, accounts, proposals, paramsUpdate); err != nil {
		return nil, err
	}

	if c.mempool != nil {
		c.mempool.HandleTipChange()
	}

	return &AppliedBlock{Block: block, NewTip: newTip}, nil
}

// checkBlockSanity runs spec §4.6 pre-check 1: block size, non-empty
// transaction list, and a well-formed coinbase in position zero.
func (c *Chain) checkBlockSanity(block *wire.Block, params chaincfg.TunableParameters) error {
	raw, err := block.Serialize()
	if err != nil {
		return ruleError(ErrBadCoinbase, err.Error())
	}
	if uint32(len(raw)) > params.MaxBlockBytes {
		return ruleError(ErrBlockTooLarge, fmt.Sprintf("block is %d bytes, ceiling is %d", len(raw), params.MaxBlockBytes))
	}
	if len(block.Transactions) == 0 {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}
	coinbase := &block.Transactions[0]
	if !coinbase.IsCoinbase() {
		return ruleError(ErrBadCoinbase, "first transaction is not a coinbase")
	}
	if coinbase.Fee != 0 {
		return ruleError(ErrBadCoinbase, "coinbase must not carry a fee")
	}
	for i := 1; i < len(block.Transactions); i++ {
		if block.Transactions[i].IsCoinbase() {
			return ruleError(ErrBadCoinbase, "coinbase transaction outside position zero")
		}
	}
	return nil
}

// checkTimestamp runs spec §4.6 pre-check 2: the block is not too far in
// the future, and is strictly after the median of the previous 11 block
// timestamps.
func (c *Chain) checkTimestamp(block *wire.Block, tipHeight uint32) error {
	maxTime := uint32(c.now().Add(maxFutureBlockTime).Unix())
	if block.Header.Timestamp >= maxTime {
		return ruleError(ErrBadTimestamp, "block timestamp too far in the future")
	}
	mtp, err := c.medianTimePast(tipHeight)
	if err != nil {
		return err
	}
	if block.Header.Timestamp <= mtp {
		return ruleError(ErrMTPViolation, "block timestamp not after median time past")
	}
	return nil
}

// shadowAccounts holds each touched address's running balance/nonce state
// during a block's transaction loop, lazily populated from the store on
// first touch and never written back until AcceptBlock commits the whole
// batch through store.ApplyBlock (spec §4.6: "a shadow account map
// accumulates deltas").
type shadowAccounts struct {
	store   *store.Store
	touched map[wire.Address]*wire.Account
}

func newShadowAccounts(s *store.Store) *shadowAccounts {
	return &shadowAccounts{store: s, touched: make(map[wire.Address]*wire.Account)}
}

func (s *shadowAccounts) get(addr wire.Address) (*wire.Account, error) {
	if acct, ok := s.touched[addr]; ok {
		return acct, nil
	}
	acct, err := s.store.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = &wire.Account{PrivacyCode: wire.DerivePrivacyCode(addr)}
	}
	s.touched[addr] = acct
	return acct, nil
}

func (s *shadowAccounts) deltas() []store.AccountDelta {
	deltas := make([]store.AccountDelta, 0, len(s.touched))
	for addr, acct := range s.touched {
		deltas = append(deltas, store.AccountDelta{Address: addr, Account: acct})
	}
	return deltas
}

// applyTransactions runs spec §4.6's transaction loop, coinbase
// application, and governance aggregation against a shadow account map,
// returning the account and proposal deltas AcceptBlock commits.
func (c *Chain) applyTransactions(block *wire.Block, height uint32, params chaincfg.TunableParameters) ([]store.AccountDelta, []store.ProposalDelta, *chaincfg.TunableParameters, error) {
	shadow := newShadowAccounts(c.store)
	var feeSink wire.Amount
	var votes []pendingVote

	for i := 1; i < len(block.Transactions); i++ {
		tx := &block.Transactions[i]
		if err := c.applyTransaction(shadow, tx, height, &feeSink, &votes); err != nil {
			return nil, nil, nil, err
		}
	}

	miner := block.Header.MinerAddress
	minerAcct, err := shadow.get(miner)
	if err != nil {
		return nil, nil, nil, err
	}

	baseReward := rewards.BaseReward(height, c.params.EmissionPhase1EndHeight, c.params.EmissionPhase2EndHeight)
	credit, ok := wire.AddChecked(baseReward, feeSink)
	if !ok {
		return nil, nil, nil, ruleError(ErrAmountOverflow, "base reward plus fee sink overflows")
	}
	minerAcct.Balance, ok = wire.AddChecked(minerAcct.Balance, credit)
	if !ok {
		return nil, nil, nil, ruleError(ErrAmountOverflow, "miner balance overflows")
	}

	if minerAcct.HasReferrer {
		referrerAcct, err := shadow.get(minerAcct.Referrer)
		if err != nil {
			return nil, nil, nil, err
		}
		bonus := rewards.ReferralBonus(baseReward, true, referrerAcct.LastMinedHeight, height)
		if bonus > 0 {
			referrerAcct.Balance, ok = wire.AddChecked(referrerAcct.Balance, bonus)
			if !ok {
				return nil, nil, nil, ruleError(ErrAmountOverflow, "referral bonus overflows referrer balance")
			}
			referrerAcct.TotalReferralBonus, ok = wire.AddChecked(referrerAcct.TotalReferralBonus, bonus)
			if !ok {
				return nil, nil, nil, ruleError(ErrAmountOverflow, "referral bonus overflows referrer total")
			}
		}
	}

	minerAcct.LastMinedHeight = height
	minerAcct.BlocksMined++

	proposals, paramsUpdate, err := c.aggregateGovernance(votes, shadow, height, params)
	if err != nil {
		return nil, nil, nil, err
	}

	return shadow.deltas(), proposals, paramsUpdate, nil
}

// applyTransaction checks and applies one non-coinbase transaction
// against shadow, accumulating its fee into feeSink and queuing any
// governance vote it carries (spec §4.6 "Transaction loop").
func (c *Chain) applyTransaction(shadow *shadowAccounts, tx *wire.Transaction, height uint32, feeSink *wire.Amount, votes *[]pendingVote) error {
	msg, err := tx.CanonicalUnsignedBytes()
	if err != nil {
		return ruleError(ErrTxSignatureInvalid, err.Error())
	}
	if !c.verifySignature(tx.PubKey, msg, tx.Signature) {
		return ruleError(ErrTxSignatureInvalid, "signature does not verify")
	}
	if c.addressFromPubKey(tx.PubKey) != tx.Sender {
		return ruleError(ErrTxSenderMismatch, "public key does not derive the declared sender")
	}
	if tx.Fee < wire.MinTxFee {
		return ruleError(ErrTxInsufficientFunds, "fee below protocol minimum")
	}

	sender, err := shadow.get(tx.Sender)
	if err != nil {
		return err
	}
	if tx.Nonce != sender.Nonce {
		return ruleError(ErrTxNonceInvalid, fmt.Sprintf("expected nonce %d, got %d", sender.Nonce, tx.Nonce))
	}

	debit, ok := wire.AddChecked(tx.Amount, tx.Fee)
	if !ok {
		return ruleError(ErrAmountOverflow, "amount plus fee overflows")
	}
	if sender.Balance < debit {
		return ruleError(ErrTxInsufficientFunds, "sender balance below amount plus fee")
	}

	sender.Balance -= debit
	sender.Nonce++

	recipient, err := shadow.get(tx.Recipient)
	if err != nil {
		return err
	}
	recipient.Balance, ok = wire.AddChecked(recipient.Balance, tx.Amount)
	if !ok {
		return ruleError(ErrAmountOverflow, "recipient balance overflows")
	}

	*feeSink, ok = wire.AddChecked(*feeSink, tx.Fee)
	if !ok {
		return ruleError(ErrAmountOverflow, "fee sink overflows")
	}

	if tx.Nonce == 0 && tx.HasReferral && !sender.HasReferrer {
		referrerAddr, err := c.store.LookupReferrer(tx.Referral)
		if err != nil {
			return err
		}
		if referrerAddr != nil {
			sender.SetReferrer(*referrerAddr)
			if *referrerAddr != tx.Sender {
				referrer, err := shadow.get(*referrerAddr)
				if err != nil {
					return err
				}
				referrer.ReferredMinersCount++
			}
		}
	}

	if tx.HasGovernance {
		var target chainhash.Hash
		copy(target[:], tx.GovernanceData[:])
		*votes = append(*votes, pendingVote{voter: tx.Sender, target: target})
	}

	return nil
}

// aggregateGovernance runs spec §4.6's governance aggregation: tallying
// each queued vote against its proposal and, for any proposal whose
// activation height has just been reached, applying its parameter change.
func (c *Chain) aggregateGovernance(votes []pendingVote, shadow *shadowAccounts, height uint32, params chaincfg.TunableParameters) ([]store.ProposalDelta, *chaincfg.TunableParameters, error) {
	byTarget := make(map[chainhash.Hash]*store.Proposal)
	order := make([]chainhash.Hash, 0, len(votes))

	loadProposal := func(target chainhash.Hash) (*store.Proposal, error) {
		if p, ok := byTarget[target]; ok {
			return p, nil
		}
		p, err := c.store.GetProposal(target)
		if err != nil {
			return nil, err
		}
		if p == nil {
			p = &store.Proposal{}
		}
		byTarget[target] = p
		order = append(order, target)
		return p, nil
	}

	for _, v := range votes {
		proposal, err := loadProposal(v.target)
		if err != nil {
			return nil, nil, err
		}
		if proposal.HasVoted(v.voter) {
			continue
		}
		voterAcct, err := shadow.get(v.voter)
		if err != nil {
			return nil, nil, err
		}
		contributions := voterAcct.BlocksMined
		if voterAcct.ReferredMinersCount > contributions {
			contributions = voterAcct.ReferredMinersCount
		}
		weight := rewards.GovernanceWeightBps(contributions, params.GovernanceCapBps)

		proposal.Voters = append(proposal.Voters, store.Voter{Address: v.voter, WeightBps: weight})
		proposal.CumulativeWeightBps += uint64(weight)
		if !proposal.Passed && proposal.CumulativeWeightBps >= governancePassThresholdBps {
			proposal.Passed = true
			proposal.ActivationHeight = height + governanceActivationDelay
		}
	}

	// Any proposal anywhere in the store whose activation height has now
	// been reached applies this block, not only ones this block's votes
	// happened to touch (spec §4.6 "when the tip crosses it").
	var paramsUpdate *chaincfg.TunableParameters
	checkActivation := func(target chainhash.Hash, p *store.Proposal) {
		if p.Passed && !p.Applied && p.ActivationHeight <= height {
			if deployment, ok := governance.KnownDeployments[target]; ok {
				updated := governance.Apply(params, deployment)
				paramsUpdate = &updated
			}
			p.Applied = true
		}
	}
	for _, target := range order {
		checkActivation(target, byTarget[target])
	}
	if err := c.store.IterateProposals(func(target chainhash.Hash, p *store.Proposal) bool {
		if _, alreadyLoaded := byTarget[target]; alreadyLoaded {
			return true
		}
		if p.Passed && !p.Applied && p.ActivationHeight <= height {
			byTarget[target] = p
			order = append(order, target)
			checkActivation(target, p)
		}
		return true
	}); err != nil {
		return nil, nil, nil, err
	}

	deltas := make([]store.ProposalDelta, 0, len(order))
	for _, target := range order {
		deltas = append(deltas, store.ProposalDelta{Target: target, Proposal: byTarget[target]})
	}
	return deltas, paramsUpdate, nil
}

