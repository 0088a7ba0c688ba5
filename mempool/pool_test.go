// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ponknot/ponc/wire"
)

type fakeLedger struct {
	accounts map[wire.Address]*wire.Account
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{accounts: make(map[wire.Address]*wire.Account)}
}

func (l *fakeLedger) getAccount(addr wire.Address) (*wire.Account, error) {
	return l.accounts[addr], nil
}

func alwaysValid(tx *wire.Transaction) bool { return true }

func newTestPool(t *testing.T, ledger *fakeLedger) *TxPool {
	t.Helper()
	cfg := &Config{
		Policy:          DefaultPolicy(),
		GetAccount:      ledger.getAccount,
		VerifySignature: alwaysValid,
	}
	return New(cfg)
}

func makeTx(sender wire.Address, nonce uint64, fee wire.Amount) *wire.Transaction {
	return &wire.Transaction{
		Version: wire.TxVersion,
		Sender:  sender,
		Nonce:   nonce,
		Fee:     fee,
		PubKey:  []byte("pk"),
	}
}

func TestProcessTransactionAdmitsValidTx(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 10)

	desc, err := mp.ProcessTransaction(tx)
	require.NoError(t, err)
	require.NotNil(t, desc)
	require.Equal(t, 1, mp.Count())
}

func TestProcessTransactionRejectsNonceGap(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 5, 10)

	_, err := mp.ProcessTransaction(tx)
	require.Error(t, err)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrNonceGap, ruleErr.Code)
}

func TestProcessTransactionRejectsInsufficientFunds(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 5, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 10)

	_, err := mp.ProcessTransaction(tx)
	require.Error(t, err)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrInsufficientFunds, ruleErr.Code)
}

func TestProcessTransactionRejectsFeeTooLow(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 0)

	_, err := mp.ProcessTransaction(tx)
	require.Error(t, err)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrFeeTooLow, ruleErr.Code)
}

func TestProcessTransactionDuplicateIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 10)

	first, err := mp.ProcessTransaction(tx)
	require.NoError(t, err)
	second, err := mp.ProcessTransaction(tx)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, mp.Count())
}

func TestProcessTransactionRBFAcceptsSufficientBump(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	original := makeTx(sender, 0, 100)
	_, err := mp.ProcessTransaction(original)
	require.NoError(t, err)

	replacement := makeTx(sender, 0, 111) // +11%, +11 knots
	replacement.PubKey = []byte("different-pk-to-change-txid")
	desc, err := mp.ProcessTransaction(replacement)
	require.NoError(t, err)
	require.Equal(t, wire.Amount(111), desc.Fee)
	require.Equal(t, 1, mp.Count())
}

func TestProcessTransactionRBFRejectsInsufficientBump(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	original := makeTx(sender, 0, 100)
	_, err := mp.ProcessTransaction(original)
	require.NoError(t, err)

	replacement := makeTx(sender, 0, 105) // +5%, below the 10% bar
	replacement.PubKey = []byte("different-pk-to-change-txid")
	_, err = mp.ProcessTransaction(replacement)
	require.Error(t, err)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrRBFRejected, ruleErr.Code)

	require.Equal(t, 1, mp.Count())
	require.Equal(t, wire.Amount(100), mp.TxDescs()[0].Fee)
}

func TestSelectForTemplateOrdersByFeeRate(t *testing.T) {
	ledger := newFakeLedger()
	var a, b wire.Address
	a[0], b[0] = 1, 2
	ledger.accounts[a] = &wire.Account{Balance: 1000}
	ledger.accounts[b] = &wire.Account{Balance: 1000}

	mp := newTestPool(t, ledger)
	lowFee := makeTx(a, 0, 1)
	highFee := makeTx(b, 0, 1000)

	_, err := mp.ProcessTransaction(lowFee)
	require.NoError(t, err)
	_, err = mp.ProcessTransaction(highFee)
	require.NoError(t, err)

	selected := mp.SelectForTemplate(1<<20, 0)
	require.Len(t, selected, 2)
	highTxID, _ := highFee.TxID()
	selectedTxID, _ := selected[0].TxID()
	require.Equal(t, highTxID, selectedTxID)
}

func TestSelectForTemplateRespectsByteCeiling(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 10)
	_, err := mp.ProcessTransaction(tx)
	require.NoError(t, err)

	selected := mp.SelectForTemplate(1, 0)
	require.Empty(t, selected)
}

func TestHandleTipChangeEvictsAppliedNonce(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 10)
	_, err := mp.ProcessTransaction(tx)
	require.NoError(t, err)

	// Simulate the tip advancing: sender's nonce moved past this tx.
	ledger.accounts[sender].Nonce = 1

	evicted := mp.HandleTipChange()
	require.Len(t, evicted, 1)
	require.Equal(t, 0, mp.Count())
}

func TestHandleTipChangeEvictsInsufficientBalance(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 10)
	tx.Amount = 500
	_, err := mp.ProcessTransaction(tx)
	require.NoError(t, err)

	ledger.accounts[sender].Balance = 100 // no longer covers amount+fee

	evicted := mp.HandleTipChange()
	require.Len(t, evicted, 1)
}

func TestHandleTipChangeKeepsStillValidTx(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1000, Nonce: 0}

	mp := newTestPool(t, ledger)
	tx := makeTx(sender, 0, 10)
	_, err := mp.ProcessTransaction(tx)
	require.NoError(t, err)

	evicted := mp.HandleTipChange()
	require.Empty(t, evicted)
	require.Equal(t, 1, mp.Count())
}

func TestMempoolFullRejectsBeyondCountCeiling(t *testing.T) {
	ledger := newFakeLedger()
	var sender wire.Address
	sender[0] = 1
	ledger.accounts[sender] = &wire.Account{Balance: 1_000_000, Nonce: 0}

	cfg := &Config{
		Policy:          Policy{MaxTxBytes: 1 << 20, MaxPoolBytes: 1 << 20, MaxPoolCount: 1},
		GetAccount:      ledger.getAccount,
		VerifySignature: alwaysValid,
	}
	mp := New(cfg)

	tx0 := makeTx(sender, 0, 10)
	_, err := mp.ProcessTransaction(tx0)
	require.NoError(t, err)

	var other wire.Address
	other[0] = 2
	ledger.accounts[other] = &wire.Account{Balance: 1_000_000, Nonce: 0}
	tx1 := makeTx(other, 0, 10)
	_, err = mp.ProcessTransaction(tx1)
	require.Error(t, err)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrMempoolFull, ruleErr.Code)
}
