// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ponknot/ponc/mempool"
	"github.com/ponknot/ponc/store"
	"github.com/ponknot/ponc/wire"
)

func TestMakeTemplateExtendsTip(t *testing.T) {
	tc := newTestChain(t, allFFTarget)
	miner := testAddr(7)

	tmpl, err := tc.chain.MakeTemplate(miner)
	require.NoError(t, err)
	require.NotNil(t, tmpl.Block)

	require.Equal(t, tc.genesis.Header.BlockHash(), tmpl.Block.Header.PrevBlock)
	require.Equal(t, uint32(1), tmpl.Block.Header.Height)
	require.Equal(t, miner, tmpl.Block.Header.MinerAddress)
	require.Equal(t, tc.params.GenesisTarget, tmpl.Block.Header.Target)
	require.Len(t, tmpl.Block.Transactions, 1, "no pooled transactions yet, only the coinbase")

	root, err := wire.MerkleRoot(tmpl.Block.Transactions)
	require.NoError(t, err)
	require.Equal(t, root, tmpl.Block.Header.MerkleRoot)

	// A template's header is accept-ready once a nonce satisfying its
	// target is found: AcceptBlock must not reject it for any reason
	// other than proof-of-work.
	tmpl.Block.Header.Nonce = 1
	applied, err := tc.chain.AcceptBlock(tmpl.Block)
	require.NoError(t, err)
	require.Equal(t, uint32(1), applied.NewTip.Height)
}

func TestMakeTemplateIncludesPooledTransactions(t *testing.T) {
	tc := newTestChain(t, allFFTarget)
	sender := testAddr(1)

	// Fund sender with a mined block before the pool can admit a spend
	// from it; a never-credited address has a zero balance.
	block1 := buildBlock(tc.genesis, allFFTarget, sender, tc.params.GenesisTimestamp+60)
	_, err := tc.chain.AcceptBlock(block1)
	require.NoError(t, err)

	pool := mempool.New(&mempool.Config{
		Policy:          mempool.DefaultPolicy(),
		GetAccount:      tc.store.GetAccount,
		VerifySignature: func(tx *wire.Transaction) bool { return true },
	})
	tc.chain.mempool = pool

	tx := &wire.Transaction{
		Version:   wire.TxVersion,
		Sender:    sender,
		Recipient: testAddr(2),
		Amount:    1,
		Fee:       wire.MinTxFee,
		Nonce:     0,
		PubKey:    []byte{1},
	}
	_, err = pool.ProcessTransaction(tx)
	require.NoError(t, err)

	miner := testAddr(7)
	tmpl, err := tc.chain.MakeTemplate(miner)
	require.NoError(t, err)
	require.Len(t, tmpl.Block.Transactions, 2, "coinbase plus the pooled transaction")
	require.Equal(t, *tx, tmpl.Block.Transactions[1])
}

func TestMakeTemplateBeforeBootstrap(t *testing.T) {
	s, err := store.OpenMem(false)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	params := testParams(allFFTarget)
	c := New(Config{
		Store:             s,
		Params:            params,
		VerifySignature:   alwaysValidSignature,
		AddressFromPubKey: addressFromFirstByte,
	})

	_, err = c.MakeTemplate(testAddr(1))
	require.Error(t, err)
}

func TestEstimateRewardNoReferrer(t *testing.T) {
	tc := newTestChain(t, allFFTarget)

	base, bonus, err := tc.chain.EstimateReward(1, nil)
	require.NoError(t, err)
	require.Zero(t, bonus)
	require.Equal(t, rewardAtHeight(tc, 1), base)
}

func TestEstimateRewardWithReferrer(t *testing.T) {
	tc := newTestChain(t, allFFTarget)
	referrer := testAddr(9)

	// Height 1 is mined by referrer, which sets its LastMinedHeight to 1
	// and brings it inside the referral window for height 2.
	block1 := buildBlock(tc.genesis, allFFTarget, referrer, tc.params.GenesisTimestamp+60)
	_, err := tc.chain.AcceptBlock(block1)
	require.NoError(t, err)

	base, bonus, err := tc.chain.EstimateReward(2, &referrer)
	require.NoError(t, err)
	require.Equal(t, rewardAtHeight(tc, 2), base)
	require.NotZero(t, bonus)
}

// rewardAtHeight mirrors EstimateReward's own base-reward computation so
// tests don't need to import rewards.BaseReward's exact call shape twice.
func rewardAtHeight(tc *testChain, height uint32) wire.Amount {
	base, _, err := tc.chain.EstimateReward(height, nil)
	if err != nil {
		panic(err)
	}
	return base
}
