// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// writeOpts forces fsync on every commit (spec §4.4: "write-ahead logging
// with fsync on commit... after power loss the store opens with the last
// committed batch intact").
var writeOpts = &opt.WriteOptions{Sync: true}

// Bootstrap writes the genesis block as the very first committed batch:
// the block itself, its height-0 index entry, the initial tip, the
// initial tunable parameters, and the genesis coinbase's own account
// credit. It fails with ErrWriteConflict if the store already has a tip.
func (s *Store) Bootstrap(block *wire.Block, tip Tip, params chaincfg.TunableParameters, coinbaseAddr wire.Address, coinbaseAccount *wire.Account) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, ok, err := s.GetTip(); err != nil {
		return err
	} else if ok {
		return storeError(ErrWriteConflict, "store already bootstrapped")
	}

	raw, err := block.Serialize()
	if err != nil {
		return storeError(ErrCorrupted, err.Error())
	}
	hash := block.Header.BlockHash()

	batch := new(leveldb.Batch)
	batch.Put(blockKey(hash), encodeValue(raw, s.compress))
	batch.Put(heightKey(block.Header.Height), hash[:])
	batch.Put(tipKey, tip.serialize())
	batch.Put(paramsKey, params.Serialize())
	batch.Put(accountKey(coinbaseAddr), encodeValue(coinbaseAccount.Serialize(), s.compress))
	batch.Put(referralIndexKey(coinbaseAccount.PrivacyCode), coinbaseAddr[:])

	if err := s.db.Write(batch, writeOpts); err != nil {
		return storeError(ErrIOFault, err.Error())
	}
	return nil
}

// AccountDelta is one account's post-block state, keyed by address, for
// ApplyBlock's shadow-state commit.
type AccountDelta struct {
	Address wire.Address
	Account *wire.Account
}

// ProposalDelta is one proposal's post-block state, keyed by its target
// hash, for ApplyBlock's governance commit.
type ProposalDelta struct {
	Target   chainhash.Hash
	Proposal *Proposal
}

// ApplyBlock commits one accepted block as a single atomic, durable batch
// (spec §4.4, §4.6 "Commit"): tip advance, block storage, height index,
// account deltas, proposal deltas, and any parameter activation either all
// land or none do. The caller (the blockchain validator) is responsible
// for every consensus check; this method only enforces the store's own
// sequencing invariant (newTip.Height == current tip height + 1, chained
// to the block just accepted) and durability.
func (s *Store) ApplyBlock(block *wire.Block, newTip Tip, accounts []AccountDelta, proposals []ProposalDelta, paramsUpdate *chaincfg.TunableParameters) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	currentTip, ok, err := s.GetTip()
	if err != nil {
		return err
	}
	if !ok {
		return storeError(ErrWriteConflict, "store has no tip; call Bootstrap first")
	}
	if newTip.Height != currentTip.Height+1 {
		return storeError(ErrWriteConflict, fmt.Sprintf("expected new tip height %d, got %d", currentTip.Height+1, newTip.Height))
	}
	if block.Header.PrevBlock != currentTip.Hash {
		return storeError(ErrWriteConflict, "block's previous hash does not match current tip")
	}

	raw, err := block.Serialize()
	if err != nil {
		return storeError(ErrCorrupted, err.Error())
	}
	blockHash := block.Header.BlockHash()
	if blockHash != newTip.Hash {
		return storeError(ErrWriteConflict, "new tip hash does not match the block being applied")
	}

	batch := new(leveldb.Batch)
	batch.Put(blockKey(blockHash), encodeValue(raw, s.compress))
	batch.Put(heightKey(newTip.Height), blockHash[:])
	batch.Put(tipKey, newTip.serialize())

	for _, d := range accounts {
		batch.Put(accountKey(d.Address), encodeValue(d.Account.Serialize(), s.compress))
		batch.Put(referralIndexKey(d.Account.PrivacyCode), d.Address[:])
	}
	for _, d := range proposals {
		batch.Put(proposalKey(d.Target), d.Proposal.Serialize())
	}
	if paramsUpdate != nil {
		batch.Put(paramsKey, paramsUpdate.Serialize())
	}

	if err := s.db.Write(batch, writeOpts); err != nil {
		return storeError(ErrIOFault, err.Error())
	}
	return nil
}
