// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rewards

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGovernanceWeightZeroContributions(t *testing.T) {
	require.EqualValues(t, 100, GovernanceWeightBps(0, 1000))
}

func TestGovernanceWeightScalesWithDigits(t *testing.T) {
	require.EqualValues(t, 100, GovernanceWeightBps(1, 1000))
	require.EqualValues(t, 100, GovernanceWeightBps(9, 1000))
	require.EqualValues(t, 200, GovernanceWeightBps(10, 1000))
	require.EqualValues(t, 200, GovernanceWeightBps(99, 1000))
	require.EqualValues(t, 300, GovernanceWeightBps(100, 1000))
}

func TestGovernanceWeightCapped(t *testing.T) {
	require.EqualValues(t, 1000, GovernanceWeightBps(1_000_000_000, 1000))
}

func TestGovernanceWeightNeverExceedsCap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		contributions := rapid.Uint64Range(0, 1<<40).Draw(rt, "contributions")
		capBps := rapid.Uint32Range(500, 2000).Draw(rt, "cap")
		weight := GovernanceWeightBps(contributions, capBps)
		require.LessOrEqual(rt, weight, capBps)
	})
}

func TestIlog10(t *testing.T) {
	require.EqualValues(t, 0, ilog10(1))
	require.EqualValues(t, 0, ilog10(9))
	require.EqualValues(t, 1, ilog10(10))
	require.EqualValues(t, 2, ilog10(100))
	require.EqualValues(t, 2, ilog10(999))
}
