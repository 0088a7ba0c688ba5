// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rewards

import "github.com/holiman/uint256"

// Retarget recomputes the PoW target after one retarget window (spec
// §4.2, §4.3):
//
//	actual'    = clamp(actual, expected/clampFactor, expected*clampFactor)
//	new_target = clamp(old_target * actual' / expected, 1, 2^256-1)
//
// The multiplication is computed at full 512-bit precision before
// dividing, so a large old_target never silently wraps (spec §4.3:
// difficulty math is pure integer, no panics, no silent truncation).
func Retarget(oldTarget [32]byte, actualSeconds, expectedSeconds int64, clampFactor uint32) [32]byte {
	lo := expectedSeconds / int64(clampFactor)
	hi := expectedSeconds * int64(clampFactor)
	clamped := actualSeconds
	if clamped < lo {
		clamped = lo
	}
	if clamped > hi {
		clamped = hi
	}

	old := new(uint256.Int).SetBytes(oldTarget[:])
	actual := uint256.NewInt(uint64(clamped))
	expected := uint256.NewInt(uint64(expectedSeconds))

	newTarget, overflow := new(uint256.Int).MulDivOverflow(old, actual, expected)
	if overflow {
		newTarget = new(uint256.Int).SetAllOne()
	}
	if newTarget.IsZero() {
		newTarget = uint256.NewInt(1)
	}

	return newTarget.Bytes32()
}

// AccumulateWork adds target's inverse work contribution to prior (spec
// §3 "Accumulated target — sum of inverse targets along the chain; used
// as the fork-choice scalar"). One block at a given target represents
// (2^256-1)/target units of expected work; summing this per block across
// the chain gives a monotone, easily-compared scalar that never depends
// on wall-clock block times the way a naive difficulty count would.
func AccumulateWork(prior [32]byte, target [32]byte) [32]byte {
	t := new(uint256.Int).SetBytes(target[:])
	if t.IsZero() {
		t = uint256.NewInt(1)
	}
	maxUint := new(uint256.Int).SetAllOne()
	work := new(uint256.Int).Div(maxUint, t)

	sum := new(uint256.Int).Add(new(uint256.Int).SetBytes(prior[:]), work)
	return sum.Bytes32()
}
