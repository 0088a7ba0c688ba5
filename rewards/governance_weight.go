// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rewards

// GovernanceWeightBps computes a voter's governance vote weight in basis
// points from their contributions — blocks mined or miners referred,
// whichever is larger (spec §4.3, §9 Open Question 4). The blockchain
// caller passes the voter account's lifetime BlocksMined and
// ReferredMinersCount; no trailing-year window is applied to either
// count:
//
//	weight_bps = 100                                  if contributions == 0
//	weight_bps = 100 + 100 * ilog10(contributions)     otherwise
//
// capped at capBps. ilog10 is used instead of stringification or
// floating point per spec §4.3.
func GovernanceWeightBps(contributions uint64, capBps uint32) uint32 {
	var weight uint32
	if contributions == 0 {
		weight = 100
	} else {
		digits := ilog10(contributions) + 1
		weight = 100 + 100*(digits-1)
	}
	if weight > capBps {
		weight = capBps
	}
	return weight
}

// ilog10 returns floor(log10(n)) for n >= 1 using only integer division,
// matching spec §4.3's instruction to avoid stringification or floating
// point.
func ilog10(n uint64) uint32 {
	var digits uint32
	for v := n; v > 0; v /= 10 {
		digits++
	}
	return digits - 1
}
