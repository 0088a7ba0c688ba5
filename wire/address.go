// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "encoding/hex"

// AddressSize is the length in bytes of a PONC address. Addresses are
// opaque 32-byte identifiers derived externally (by a wallet) from a public
// key; the consensus core treats them purely as map keys (spec §3).
const AddressSize = 32

// Address is a 32-byte opaque account identifier. Equality is byte
// equality; there is no internal structure the core interprets.
type Address [AddressSize]byte

// ZeroAddress is the sentinel sender address used by the coinbase
// transaction. No other transaction may use it as a sender (spec §3).
var ZeroAddress Address

// IsZero reports whether the address is the all-zero coinbase sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the hex encoding of the raw address bytes. Human-readable
// display encoding (the "KOT1" bech32-style format) is explicitly a
// wallet/UI concern outside this core (spec §4.1) and is not implemented
// here.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}
