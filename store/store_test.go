// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMem(false)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func coinbaseBlock(height uint32, prev chainhash.Hash) *wire.Block {
	tx := wire.Transaction{
		Version: wire.TxVersion,
		PubKey:  []byte("genesis"),
	}
	txs := []wire.Transaction{tx}
	root, _ := wire.MerkleRoot(txs)
	return &wire.Block{
		Header: wire.BlockHeader{
			Version:    wire.BlockVersion,
			PrevBlock:  prev,
			MerkleRoot: root,
			Timestamp:  1,
			Height:     height,
		},
		Transactions: txs,
	}
}

func TestBootstrapAndGetTip(t *testing.T) {
	s := newTestStore(t)

	block := coinbaseBlock(0, chainhash.ZeroHash)
	hash := block.Header.BlockHash()
	tip := Tip{Hash: hash, Height: 0}
	params := chaincfg.DefaultTunableParameters()

	var coinbaseAddr wire.Address
	account := &wire.Account{Balance: 100}

	require.NoError(t, s.Bootstrap(block, tip, params, coinbaseAddr, account))

	gotTip, ok, err := s.GetTip()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tip, gotTip)

	gotAccount, err := s.GetAccount(coinbaseAddr)
	require.NoError(t, err)
	require.Equal(t, account, gotAccount)

	gotParams, ok, err := s.GetParams()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, params, gotParams)

	gotHash, err := s.GetHashAt(0)
	require.NoError(t, err)
	require.Equal(t, hash, *gotHash)

	gotBlock, err := s.GetBlock(hash)
	require.NoError(t, err)
	require.Equal(t, block.Header, gotBlock.Header)
}

func TestBootstrapRejectsSecondCall(t *testing.T) {
	s := newTestStore(t)
	block := coinbaseBlock(0, chainhash.ZeroHash)
	tip := Tip{Hash: block.Header.BlockHash(), Height: 0}
	params := chaincfg.DefaultTunableParameters()
	var addr wire.Address

	require.NoError(t, s.Bootstrap(block, tip, params, addr, &wire.Account{}))
	err := s.Bootstrap(block, tip, params, addr, &wire.Account{})
	require.Error(t, err)
}

func TestGetAccountAbsentSentinel(t *testing.T) {
	s := newTestStore(t)
	var addr wire.Address
	addr[0] = 0x42

	account, err := s.GetAccount(addr)
	require.NoError(t, err)
	require.Nil(t, account)
}

func TestApplyBlockAdvancesTipAndCommitsDeltas(t *testing.T) {
	s := newTestStore(t)

	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, &wire.Account{}))

	next := coinbaseBlock(1, genesisHash)
	nextHash := next.Header.BlockHash()
	newTip := Tip{Hash: nextHash, Height: 1}

	var miner wire.Address
	miner[0] = 0x01
	deltas := []AccountDelta{
		{Address: miner, Account: &wire.Account{Balance: 5_000_000}},
	}

	require.NoError(t, s.ApplyBlock(next, newTip, deltas, nil, nil))

	gotTip, ok, err := s.GetTip()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, newTip, gotTip)

	gotMiner, err := s.GetAccount(miner)
	require.NoError(t, err)
	require.EqualValues(t, 5_000_000, gotMiner.Balance)

	gotHash, err := s.GetHashAt(1)
	require.NoError(t, err)
	require.Equal(t, nextHash, *gotHash)
}

func TestApplyBlockRejectsWrongHeight(t *testing.T) {
	s := newTestStore(t)
	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, &wire.Account{}))

	skip := coinbaseBlock(2, genesisHash)
	err := s.ApplyBlock(skip, Tip{Hash: skip.Header.BlockHash(), Height: 2}, nil, nil, nil)
	require.Error(t, err)
}

func TestApplyBlockRejectsStaleParent(t *testing.T) {
	s := newTestStore(t)
	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, &wire.Account{}))

	var wrongParent chainhash.Hash
	wrongParent[0] = 0xFF
	bad := coinbaseBlock(1, wrongParent)
	err := s.ApplyBlock(bad, Tip{Hash: bad.Header.BlockHash(), Height: 1}, nil, nil, nil)
	require.Error(t, err)
}

func TestApplyBlockWithoutBootstrapFails(t *testing.T) {
	s := newTestStore(t)
	block := coinbaseBlock(1, chainhash.ZeroHash)
	err := s.ApplyBlock(block, Tip{Hash: block.Header.BlockHash(), Height: 1}, nil, nil, nil)
	require.Error(t, err)
}

func TestApplyBlockActivatesParams(t *testing.T) {
	s := newTestStore(t)
	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, &wire.Account{}))

	next := coinbaseBlock(1, genesisHash)
	newParams := chaincfg.DefaultTunableParameters()
	newParams.GovernanceCapBps = 1500

	require.NoError(t, s.ApplyBlock(next, Tip{Hash: next.Header.BlockHash(), Height: 1}, nil, nil, &newParams))

	got, ok, err := s.GetParams()
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1500, got.GovernanceCapBps)
}

func TestLookupReferrerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, &wire.Account{}))

	next := coinbaseBlock(1, genesisHash)
	var referee wire.Address
	referee[0] = 0x09
	account := &wire.Account{Balance: 1}
	account.PrivacyCode[0] = 0xAA

	require.NoError(t, s.ApplyBlock(next, Tip{Hash: next.Header.BlockHash(), Height: 1}, []AccountDelta{{Address: referee, Account: account}}, nil, nil))

	got, err := s.LookupReferrer(account.PrivacyCode)
	require.NoError(t, err)
	require.Equal(t, referee, *got)

	var unknown [wire.PrivacyCodeSize]byte
	unknown[0] = 0xFF
	none, err := s.LookupReferrer(unknown)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestGetProposalAbsentThenRoundTrip(t *testing.T) {
	s := newTestStore(t)
	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, &wire.Account{}))

	var target chainhash.Hash
	target[0] = 0x77

	absent, err := s.GetProposal(target)
	require.NoError(t, err)
	require.Nil(t, absent)

	next := coinbaseBlock(1, genesisHash)
	var voter wire.Address
	voter[0] = 0x02
	proposal := &Proposal{
		CumulativeWeightBps: 300,
		Voters:              []Voter{{Address: voter, WeightBps: 300}},
	}
	require.NoError(t, s.ApplyBlock(next, Tip{Hash: next.Header.BlockHash(), Height: 1}, nil, []ProposalDelta{{Target: target, Proposal: proposal}}, nil))

	got, err := s.GetProposal(target)
	require.NoError(t, err)
	require.Equal(t, proposal, got)
	require.True(t, got.HasVoted(voter))
}

func TestIterateYieldsAscendingHeights(t *testing.T) {
	s := newTestStore(t)
	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, &wire.Account{}))

	prev := genesisHash
	for h := uint32(1); h <= 3; h++ {
		b := coinbaseBlock(h, prev)
		hash := b.Header.BlockHash()
		require.NoError(t, s.ApplyBlock(b, Tip{Hash: hash, Height: h}, nil, nil, nil))
		prev = hash
	}

	var heights []uint32
	err := s.Iterate(0, func(height uint32, hash chainhash.Hash) bool {
		heights = append(heights, height)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1, 2, 3}, heights)
}

func TestCompressedValueRoundTrip(t *testing.T) {
	s, err := OpenMem(true)
	require.NoError(t, err)
	defer s.Close()

	genesis := coinbaseBlock(0, chainhash.ZeroHash)
	genesisHash := genesis.Header.BlockHash()
	var coinbaseAddr wire.Address
	account := &wire.Account{Balance: 123456789}
	require.NoError(t, s.Bootstrap(genesis, Tip{Hash: genesisHash, Height: 0}, chaincfg.DefaultTunableParameters(), coinbaseAddr, account))

	got, err := s.GetAccount(coinbaseAddr)
	require.NoError(t, err)
	require.Equal(t, account, got)

	gotBlock, err := s.GetBlock(genesisHash)
	require.NoError(t, err)
	require.Equal(t, genesis.Header, gotBlock.Header)
}
