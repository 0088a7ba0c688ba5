// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"fmt"

	"github.com/btcsuite/btclog"

	"github.com/ponknot/ponc/blockchain"
	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/crypto/pqsig"
	"github.com/ponknot/ponc/genesis"
	"github.com/ponknot/ponc/governance"
	"github.com/ponknot/ponc/mempool"
	"github.com/ponknot/ponc/ponc"
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

// Context is the running node's single point of composition: the store
// handle, the mempool, the block validator/applier, the PoNC mining
// engine, and the governance registrar, plus the static parameters they
// were all built against (spec §9 design note 1). Every exported method
// is the Go-native shape of one of spec §6's external interfaces.
type Context struct {
	Store     *store.Store
	Mempool   *mempool.TxPool
	Chain     *blockchain.Chain
	Engine    *ponc.Engine
	Registrar *governance.Registrar
	Params    chaincfg.Params

	tipSubs *tipBroadcaster
	txSubs  *txBroadcaster
}

// verifyTxSignature checks both halves of spec §4.6's signature rule in
// one boolean: the signature verifies under the claimed public key, and
// that public key derives the transaction's declared sender. mempool's
// Config.VerifySignature needs both checks collapsed into one function;
// blockchain.Config keeps them separate because AcceptBlock reports a
// distinct RuleError for each.
func verifyTxSignature(tx *wire.Transaction) bool {
	msg, err := tx.CanonicalUnsignedBytes()
	if err != nil {
		return false
	}
	if !pqsig.Verify(tx.PubKey, msg, tx.Signature) {
		return false
	}
	return pqsig.AddressFromPubKey(tx.PubKey) == tx.Sender
}

// New constructs a Context from cfg, opening (or creating) the
// underlying store and bootstrapping it with cfg.Params' genesis block
// if it is empty.
func New(cfg Config) (*Context, error) {
	var db *store.Store
	var err error
	if cfg.Memory {
		db, err = store.OpenMem(cfg.Compress)
	} else {
		db, err = store.Open(cfg.DataDir, cfg.Compress)
	}
	if err != nil {
		return nil, err
	}

	if _, haveTip, err := db.GetTip(); err != nil {
		db.Close()
		return nil, err
	} else if !haveTip {
		if err := bootstrapGenesis(db, cfg.Params); err != nil {
			db.Close()
			return nil, err
		}
	}

	policy := cfg.MempoolPolicy
	if policy == (mempool.Policy{}) {
		policy = mempool.DefaultPolicy()
	}

	pool := mempool.New(&mempool.Config{
		Policy:          policy,
		GetAccount:      db.GetAccount,
		VerifySignature: verifyTxSignature,
	})

	chain := blockchain.New(blockchain.Config{
		Store:             db,
		Params:            cfg.Params,
		VerifySignature:   pqsig.Verify,
		AddressFromPubKey: pqsig.AddressFromPubKey,
		Mempool:           pool,
	})

	return &Context{
		Store:     db,
		Mempool:   pool,
		Chain:     chain,
		Engine:    ponc.NewEngine(),
		Registrar: governance.New(db),
		Params:    cfg.Params,

		tipSubs: newTipBroadcaster(),
		txSubs:  newTxBroadcaster(),
	}, nil
}

// bootstrapGenesis writes params' genesis block as the store's first
// committed batch. Height 0 pays the same base_reward(0) subsidy every
// later height pays its miner (spec §4.3, §4.6 "Coinbase application"):
// the genesis coinbase transaction never itself carries an Amount — no
// block's coinbase does, ordinary blocks credit the reward straight to
// block.Header.MinerAddress in applyTransactions — so bootstrapGenesis
// credits it here the same way before the very first batch ever commits.
func bootstrapGenesis(db *store.Store, params chaincfg.Params) error {
	block := genesis.NewGenesisBlock(params)
	tip := store.Tip{
		Hash:              block.Header.BlockHash(),
		Height:            0,
		AccumulatedTarget: rewards.AccumulateWork([32]byte{}, params.GenesisTarget),
	}
	baseReward := rewards.BaseReward(0, params.EmissionPhase1EndHeight, params.EmissionPhase2EndHeight)
	coinbaseAccount := &wire.Account{
		Balance:         baseReward,
		PrivacyCode:     wire.DerivePrivacyCode(wire.ZeroAddress),
		LastMinedHeight: 0,
		BlocksMined:     1,
	}
	return db.Bootstrap(block, tip, params.Tunables, wire.ZeroAddress, coinbaseAccount)
}

// Close releases the underlying store handle.
func (c *Context) Close() error {
	c.Engine.Stop()
	return c.Store.Close()
}

// Height returns the current tip's height (spec §6 read API).
func (c *Context) Height() (uint32, error) {
	height, _, err := c.Chain.BestSnapshot()
	return height, err
}

// Tip returns the current tip's height and hash (spec §6 read API).
func (c *Context) Tip() (uint32, chainhash.Hash, error) {
	return c.Chain.BestSnapshot()
}

// GetAccount returns addr's committed-tip account, or nil if the address
// has never been credited (spec §6 get_account).
func (c *Context) GetAccount(addr wire.Address) (*wire.Account, error) {
	return c.Store.GetAccount(addr)
}

// GetBlock returns the committed block with the given hash, or nil if
// absent (spec §6 get_block).
func (c *Context) GetBlock(hash chainhash.Hash) (*wire.Block, error) {
	return c.Store.GetBlock(hash)
}

// GetBlockBytes returns the canonical serialization of the block with
// the given hash, or nil if absent (spec §6 "get_block(hash) -> bytes | ∅").
func (c *Context) GetBlockBytes(hash chainhash.Hash) ([]byte, error) {
	block, err := c.Store.GetBlock(hash)
	if err != nil || block == nil {
		return nil, err
	}
	return block.Serialize()
}

// GetHashAt returns the hash of the block committed at height, or nil if
// no block has reached that height yet.
func (c *Context) GetHashAt(height uint32) (*chainhash.Hash, error) {
	return c.Store.GetHashAt(height)
}

// GetParams returns the tunable parameters currently in force (spec §6
// get_params).
func (c *Context) GetParams() (chaincfg.TunableParameters, error) {
	return c.Chain.CurrentParams()
}

// GetTally returns target's current governance standing (spec §6
// get_tally).
func (c *Context) GetTally(target chainhash.Hash) (governance.TallyResult, error) {
	return c.Registrar.Tally(target)
}

// GetHeadersFrom returns up to count headers committed strictly after
// hash, in ascending height order (spec §6 "get_headers_from(hash,
// count) -> [header]"). hash must name an already-committed block;
// chainhash.ZeroHash is accepted as shorthand for "start from genesis".
func (c *Context) GetHeadersFrom(hash chainhash.Hash, count uint32) ([]wire.BlockHeader, error) {
	var startHeight uint32
	if hash != chainhash.ZeroHash {
		block, err := c.Store.GetBlock(hash)
		if err != nil {
			return nil, err
		}
		if block == nil {
			return nil, fmt.Errorf("get_headers_from: unknown block %s", hash)
		}
		startHeight = block.Header.Height + 1
	}

	headers := make([]wire.BlockHeader, 0, count)
	err := c.Store.Iterate(startHeight, func(height uint32, h chainhash.Hash) bool {
		if uint32(len(headers)) >= count {
			return false
		}
		block, err := c.Store.GetBlock(h)
		if err != nil || block == nil {
			return false
		}
		headers = append(headers, block.Header)
		return true
	})
	if err != nil {
		return nil, err
	}
	return headers, nil
}

// SubmitBlock parses raw as a Block and runs it through the validator
// (spec §6 "submit_block(block_bytes) -> Result"). On acceptance it
// publishes a tip event to every subscriber registered with
// SubscribeNewTip.
func (c *Context) SubmitBlock(raw []byte) (*blockchain.AppliedBlock, error) {
	block, err := wire.ParseBlock(raw)
	if err != nil {
		return nil, err
	}
	applied, err := c.Chain.AcceptBlock(block)
	if err != nil {
		return nil, err
	}
	c.tipSubs.publish(TipEvent{Hash: applied.NewTip.Hash, Height: applied.NewTip.Height})
	return applied, nil
}

// SubmitTransaction parses raw as a Transaction, signature-verifies it,
// and admits it to the mempool (spec §6 "submit_transaction(tx_bytes) ->
// Result"). On admission it publishes the txid to every subscriber
// registered with SubscribeNewTx.
func (c *Context) SubmitTransaction(raw []byte) (chainhash.Hash, error) {
	tx, err := wire.ParseTransaction(raw)
	if err != nil {
		return chainhash.Hash{}, err
	}
	desc, err := c.Mempool.ProcessTransaction(tx)
	if err != nil {
		return chainhash.Hash{}, err
	}
	c.txSubs.publish(desc.TxID)
	return desc.TxID, nil
}

// MakeTemplate assembles a block template for minerAddress (spec §6
// make_template).
func (c *Context) MakeTemplate(minerAddress wire.Address) (*blockchain.BlockTemplate, error) {
	return c.Chain.MakeTemplate(minerAddress)
}

// EstimateReward reports the reward a block at height would pay (spec §6
// estimate_reward).
func (c *Context) EstimateReward(height uint32, referrer *wire.Address) (base, bonus wire.Amount, err error) {
	return c.Chain.EstimateReward(height, referrer)
}
