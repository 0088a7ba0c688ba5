// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rewards

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	testP1 = 262800
	testP2 = 525600
)

func TestBaseRewardPhase1Endpoints(t *testing.T) {
	require.EqualValues(t, knotsPerUnit/10, BaseReward(0, testP1, testP2))

	// At h == p1 the ramp term is (9U/10 * p1)/p1 == 9U/10, so reward == U.
	require.EqualValues(t, knotsPerUnit, BaseReward(testP1, testP1, testP2))
}

func TestBaseRewardPhase2IsConstant(t *testing.T) {
	require.EqualValues(t, knotsPerUnit, BaseReward(testP1+1, testP1, testP2))
	require.EqualValues(t, knotsPerUnit, BaseReward(testP2, testP1, testP2))
}

func TestBaseRewardPhase3ContinuousAtP2(t *testing.T) {
	// log2_fixed16(2) == 1<<16 exactly, so at h = p2+1 (a=1, x=2) reward
	// should equal exactly U, continuous with Phase 2.
	got := BaseReward(testP2+1, testP1, testP2)
	require.EqualValues(t, knotsPerUnit, got)
}

func TestBaseRewardPhase3Decreasing(t *testing.T) {
	a := BaseReward(testP2+1, testP1, testP2)
	b := BaseReward(testP2+1000, testP1, testP2)
	c := BaseReward(testP2+1_000_000, testP1, testP2)

	require.Greater(t, uint64(a), uint64(b))
	require.Greater(t, uint64(b), uint64(c))
}

func TestBaseRewardNeverZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := rapid.Uint32Range(0, 10_000_000).Draw(rt, "height")
		got := BaseReward(h, testP1, testP2)
		require.Greater(rt, uint64(got), uint64(0))
	})
}

func TestBaseRewardMonotonicInPhase1(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := rapid.Uint32Range(0, testP1-1).Draw(rt, "height")
		a := BaseReward(h, testP1, testP2)
		b := BaseReward(h+1, testP1, testP2)
		require.LessOrEqual(rt, uint64(a), uint64(b))
	})
}

func TestBaseRewardNeverPanicsOnExtremeHeights(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := rapid.Uint32Range(testP2+1, ^uint32(0)).Draw(rt, "height")
		require.NotPanics(rt, func() {
			BaseReward(h, testP1, testP2)
		})
	})
}

func TestLog2Fixed16AtTwo(t *testing.T) {
	require.EqualValues(t, uint64(1)<<16, log2Fixed16(2))
}

func TestLog2Fixed16Monotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Uint64Range(1, 1<<40).Draw(rt, "x")
		a := log2Fixed16(x)
		b := log2Fixed16(x + 1)
		require.LessOrEqual(rt, a, b)
	})
}

func TestLog2Fixed16NeverZero(t *testing.T) {
	require.Greater(t, log2Fixed16(1), uint64(0))
}
