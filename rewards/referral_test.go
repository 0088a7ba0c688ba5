// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rewards

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ponknot/ponc/wire"
)

func TestReferralBonusNoReferrer(t *testing.T) {
	bonus := ReferralBonus(1_000_000, false, 0, 100)
	require.EqualValues(t, 0, bonus)
}

func TestReferralBonusNeverMined(t *testing.T) {
	bonus := ReferralBonus(1_000_000, true, 0, 100)
	require.EqualValues(t, 0, bonus)
}

func TestReferralBonusWithinWindow(t *testing.T) {
	bonus := ReferralBonus(1_000_000, true, 100, 100+ReferralWindowBlocks)
	require.EqualValues(t, 50_000, bonus) // 5% of 1,000,000
}

func TestReferralBonusExpiredWindow(t *testing.T) {
	bonus := ReferralBonus(1_000_000, true, 100, 100+ReferralWindowBlocks+1)
	require.EqualValues(t, 0, bonus)
}

func TestReferralBonusAppliesInPhase3(t *testing.T) {
	small := wire.Amount(3) // smaller than the 5% granularity floor
	bonus := ReferralBonus(small, true, 1, 2)
	require.EqualValues(t, 0, bonus) // 3*500/10000 truncates to 0, which is valid — no panic, no special-case
}
