// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTx() *Transaction {
	tx := &Transaction{
		Version: TxVersion,
		Amount:  5_000_000,
		Fee:     MinTxFee,
		Nonce:   1,
		PubKey:  []byte{0xAA, 0xBB, 0xCC},
	}
	tx.Sender[0] = 0x01
	tx.Recipient[0] = 0x02
	return tx
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := sampleTx()
	tx.HasReferral = true
	tx.Referral[0] = 0x7F
	tx.HasGovernance = true
	tx.GovernanceData[0] = 0x01
	tx.Signature = []byte{1, 2, 3, 4, 5}

	data, err := tx.Serialize()
	require.NoError(t, err)

	parsed, err := ParseTransaction(data)
	require.NoError(t, err)
	require.Equal(t, tx, parsed)
}

func TestTransactionRoundTripNoOptionalFields(t *testing.T) {
	tx := sampleTx()

	data, err := tx.Serialize()
	require.NoError(t, err)

	parsed, err := ParseTransaction(data)
	require.NoError(t, err)
	require.Equal(t, tx, parsed)
}

func TestTxIDExcludesSignature(t *testing.T) {
	tx := sampleTx()
	id1, err := tx.TxID()
	require.NoError(t, err)

	tx.Signature = []byte{9, 9, 9}
	id2, err := tx.TxID()
	require.NoError(t, err)

	require.Equal(t, id1, id2)
}

func TestTxIDChangesWithFields(t *testing.T) {
	tx := sampleTx()
	id1, err := tx.TxID()
	require.NoError(t, err)

	tx.Nonce++
	id2, err := tx.TxID()
	require.NoError(t, err)

	require.NotEqual(t, id1, id2)
}

func TestParseTransactionRejectsTrailingBytes(t *testing.T) {
	tx := sampleTx()
	data, err := tx.Serialize()
	require.NoError(t, err)

	_, err = ParseTransaction(append(data, 0xFF))
	require.Error(t, err)
}

func TestParseTransactionRejectsUnknownVersion(t *testing.T) {
	tx := sampleTx()
	tx.Version = 99
	data, err := tx.Serialize()
	require.NoError(t, err)

	_, err = ParseTransaction(data)
	require.Error(t, err)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, ErrUnsupportedVersion, encErr.Code)
}

func TestIsCoinbase(t *testing.T) {
	tx := sampleTx()
	require.False(t, tx.IsCoinbase())

	tx.Sender = ZeroAddress
	require.True(t, tx.IsCoinbase())
}
