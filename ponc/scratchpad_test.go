// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ponc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

const testScratchpadBytes = 64 * 1024 // small for fast tests, still a power-of-two chunk count

func TestNewScratchpadDeterministic(t *testing.T) {
	parent := chainhash.HashH([]byte("parent"))
	var miner wire.Address
	miner[0] = 0x01

	a, err := NewScratchpad(parent, miner, testScratchpadBytes)
	require.NoError(t, err)
	b, err := NewScratchpad(parent, miner, testScratchpadBytes)
	require.NoError(t, err)

	require.Equal(t, a.bytes, b.bytes)
}

func TestNewScratchpadVariesWithInputs(t *testing.T) {
	parent := chainhash.HashH([]byte("parent"))
	var minerA, minerB wire.Address
	minerA[0] = 0x01
	minerB[0] = 0x02

	a, err := NewScratchpad(parent, minerA, testScratchpadBytes)
	require.NoError(t, err)
	b, err := NewScratchpad(parent, minerB, testScratchpadBytes)
	require.NoError(t, err)

	require.NotEqual(t, a.bytes, b.bytes)
}

func TestNewScratchpadRejectsNonPowerOfTwoChunks(t *testing.T) {
	parent := chainhash.HashH([]byte("parent"))
	var miner wire.Address

	_, err := NewScratchpad(parent, miner, 32*3) // 3 chunks, not a power of two
	require.Error(t, err)
}

func TestNewScratchpadRejectsNonMultipleOf32(t *testing.T) {
	parent := chainhash.HashH([]byte("parent"))
	var miner wire.Address

	_, err := NewScratchpad(parent, miner, 33)
	require.Error(t, err)
}

func TestNumChunks(t *testing.T) {
	parent := chainhash.HashH([]byte("parent"))
	var miner wire.Address

	sp, err := NewScratchpad(parent, miner, testScratchpadBytes)
	require.NoError(t, err)
	require.EqualValues(t, testScratchpadBytes/32, sp.NumChunks())
}
