// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTunableParametersInRange(t *testing.T) {
	d := DefaultTunableParameters()

	require.GreaterOrEqual(t, d.GovernanceCapBps, uint32(500))
	require.LessOrEqual(t, d.GovernanceCapBps, uint32(2000))

	require.GreaterOrEqual(t, d.PoNCRounds, uint32(256))
	require.LessOrEqual(t, d.PoNCRounds, uint32(2048))

	require.GreaterOrEqual(t, d.ScratchpadBytes, uint64(2*1024*1024))
	require.LessOrEqual(t, d.ScratchpadBytes, uint64(256*1024*1024))
}

func TestMainNetGenesisTargetIsMaximal(t *testing.T) {
	for _, b := range MainNetParams.GenesisTarget {
		require.Equal(t, byte(0xff), b)
	}
}

func TestTestNetParamsDistinctFromMainNet(t *testing.T) {
	require.NotEqual(t, MainNetParams.Name, TestNetParams.Name)
	require.NotEqual(t, MainNetParams.GenesisMessage, TestNetParams.GenesisMessage)
}

func TestRetargetTimespan(t *testing.T) {
	got := MainNetParams.RetargetTimespan()
	want := 60 * 60 // seconds
	require.EqualValues(t, want, got.Seconds())
}

func TestTunableParametersRoundTrip(t *testing.T) {
	d := DefaultTunableParameters()
	data := d.Serialize()
	require.Len(t, data, TunableParametersSize)

	got, err := ParseTunableParameters(data)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestParseTunableParametersRejectsWrongSize(t *testing.T) {
	_, err := ParseTunableParameters(make([]byte, TunableParametersSize-1))
	require.Error(t, err)
}
