// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rewards implements spec.md §4.3's reward and difficulty rules:
// pure, total, integer-only functions for block subsidy emission, the
// referral bonus, difficulty retargeting, and governance vote weight.
package rewards

import "github.com/ponknot/ponc/wire"

// knotsPerUnit mirrors wire.KnotsPerUnit locally as U for the formulas
// below, matching spec §4.3's notation.
const knotsPerUnit = wire.KnotsPerUnit

// BaseReward returns the per-block base subsidy at the given height,
// following spec §4.3's three-phase emission curve:
//
//	Phase 1, h in [0, p1]:  reward = U/10 + (9U/10 * h) / p1
//	Phase 2, h in (p1, p2]: reward = U
//	Phase 3, h > p2:        reward = (U * 2^16) / log2_fixed16(h - p2 + 1)
//
// BaseReward is pure and total: it never panics, and is strictly
// positive for every height, continuous at h=p1+1 and h=p2+1, monotonic
// increasing through Phase 1, constant through Phase 2, and strictly
// decreasing through Phase 3 (spec §4.3, §8).
func BaseReward(height, p1, p2 uint32) wire.Amount {
	switch {
	case height <= p1:
		ramp := (uint64(9*knotsPerUnit/10) * uint64(height)) / uint64(p1)
		return wire.Amount(knotsPerUnit/10 + ramp)

	case height <= p2:
		return wire.Amount(knotsPerUnit)

	default:
		a := height - p2
		x := uint64(a) + 1
		l := log2Fixed16(x)
		return wire.Amount((uint64(knotsPerUnit) << 16) / l)
	}
}

// log2Fixed16 computes floor(log2(x) * 2^16) for x >= 1 using only
// integer shifts and multiplications, so it never panics regardless of
// how large x is (spec §4.3: "saturating/guarded shifts — no panic on
// large x"). log2Fixed16(2) == 1<<16 exactly, which is what makes Phase 3
// continuous with Phase 2 at exactly 1 KOT.
func log2Fixed16(x uint64) uint64 {
	if x < 1 {
		x = 1
	}

	// n = floor(log2(x)): the position of the highest set bit.
	var n uint64
	for v := x; v > 1; v >>= 1 {
		n++
	}

	result := n << 16

	// Normalize x into Q16.16 fixed point representing x/2^n, which
	// lies in [1.0, 2.0). 128 bits of headroom comfortably absorbs the
	// largest shift this loop performs (n is at most 63 for a uint64
	// input).
	var y uint64
	if n >= 16 {
		y = x >> (n - 16)
	} else {
		y = x << (16 - n)
	}

	for i := uint64(1); i <= 16; i++ {
		// Square y (still Q16.16), which may push the value into
		// [1.0, 4.0).
		hi, lo := bitsMul64(y, y)
		y = shiftRight128(hi, lo, 16)

		if y >= (2 << 16) {
			result |= 1 << (16 - i)
			y >>= 1
		}
	}

	return result
}

// bitsMul64 returns the 128-bit product of a and b as (hi, lo).
func bitsMul64(a, b uint64) (hi, lo uint64) {
	const mask32 = 1<<32 - 1
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t := aLo * bLo
	w0 := t & mask32
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask32
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	hi = aHi*bHi + w2 + k
	lo = (t << 32) + w0
	return hi, lo
}

// shiftRight128 returns (hi:lo) >> n for 0 <= n <= 64, assuming the
// result fits in 64 bits (guaranteed by the fixed-point scaling in
// log2Fixed16).
func shiftRight128(hi, lo uint64, n uint) uint64 {
	if n == 0 {
		return lo
	}
	return (hi << (64 - n)) | (lo >> n)
}
