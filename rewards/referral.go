// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rewards

import "github.com/ponknot/ponc/wire"

// ReferralWindowBlocks is the number of blocks a referrer's
// last_mined_height may lag the current height and still earn a bonus
// (spec §4.3).
const ReferralWindowBlocks = 2880

// ReferralBonusBps is the referral bonus rate in basis points of the base
// reward (spec §4.3): 500 bps = 5%.
const ReferralBonusBps = 500

// ReferralBonus computes the bonus minted to a miner's referrer, given
// the block's base reward and the referrer's prior mining activity
// (spec §4.3). hasReferrer must be false when the miner has no
// referrer set; referrerLastMinedHeight is meaningless in that case.
//
// The bonus is minted in addition to baseReward, never subtracted from
// it — callers must add ReferralBonus's result to baseReward when
// computing the block's total supply delta, not substitute it.
func ReferralBonus(baseReward wire.Amount, hasReferrer bool, referrerLastMinedHeight, currentHeight uint32) wire.Amount {
	if !hasReferrer || referrerLastMinedHeight == 0 || referrerLastMinedHeight > currentHeight {
		return 0
	}
	if currentHeight-referrerLastMinedHeight > ReferralWindowBlocks {
		return 0
	}
	return wire.Amount((uint64(baseReward) * ReferralBonusBps) / 10000)
}
