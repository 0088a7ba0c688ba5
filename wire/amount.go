// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// KnotsPerUnit is the number of knots (the smallest indivisible PONC amount)
// per display unit (KOT). Spec §3: U = 10^8.
const KnotsPerUnit = 100_000_000

// Amount represents a quantity of knots. All consensus arithmetic on
// amounts is unsigned, integer, and checked — overflow is a validation
// error, never a panic (spec §3).
type Amount uint64

// AddChecked returns a+b along with false if the addition would overflow
// uint64. Every monetary credit in the validator goes through this instead
// of the bare + operator.
func AddChecked(a, b Amount) (Amount, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// String renders the amount in both knots and the display unit, e.g.
// "123450000 knots (1.23450000 KOT)".
func (a Amount) String() string {
	whole := uint64(a) / KnotsPerUnit
	frac := uint64(a) % KnotsPerUnit
	return fmt.Sprintf("%d knots (%d.%08d KOT)", uint64(a), whole, frac)
}
