// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/aead/siphash"
)

// PrivacyCodeSize is the length in bytes of an account's privacy code, a
// deterministic tag derived from the address and exposed only for display
// (spec §3).
const PrivacyCodeSize = 8

// AccountSize is the length in bytes of an Account's fixed binary
// encoding, as stored in the accounts column family (spec §4.4).
const AccountSize = 8 + 8 + 1 + AddressSize + PrivacyCodeSize + 4 + 8 + 8 + 8

// Account is the per-address record PONC tracks (spec §3). There is no
// "account object" until the first credit; an absent entry is implicit:
// zero balance, nonce 0, no referrer.
type Account struct {
	Balance             Amount
	Nonce               uint64
	HasReferrer         bool
	Referrer            Address
	PrivacyCode         [PrivacyCodeSize]byte
	LastMinedHeight     uint32
	BlocksMined         uint64
	ReferredMinersCount uint64
	TotalReferralBonus  Amount
}

// Serialize encodes the account into its fixed AccountSize-byte layout.
func (a *Account) Serialize() []byte {
	buf := make([]byte, AccountSize)
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], uint64(a.Balance))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], a.Nonce)
	off += 8
	if a.HasReferrer {
		buf[off] = 1
	}
	off++
	copy(buf[off:], a.Referrer[:])
	off += AddressSize
	copy(buf[off:], a.PrivacyCode[:])
	off += PrivacyCodeSize
	binary.LittleEndian.PutUint32(buf[off:], a.LastMinedHeight)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], a.BlocksMined)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], a.ReferredMinersCount)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(a.TotalReferralBonus))
	off += 8
	return buf
}

// ParseAccount decodes an Account from its fixed binary encoding.
func ParseAccount(data []byte) (*Account, error) {
	if len(data) != AccountSize {
		return nil, encodingError(ErrSizeMismatch, fmt.Sprintf("account: want %d bytes, got %d", AccountSize, len(data)))
	}
	a := &Account{}
	off := 0
	a.Balance = Amount(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	a.Nonce = binary.LittleEndian.Uint64(data[off:])
	off += 8
	a.HasReferrer = data[off] != 0
	off++
	copy(a.Referrer[:], data[off:off+AddressSize])
	off += AddressSize
	copy(a.PrivacyCode[:], data[off:off+PrivacyCodeSize])
	off += PrivacyCodeSize
	a.LastMinedHeight = binary.LittleEndian.Uint32(data[off:])
	off += 4
	a.BlocksMined = binary.LittleEndian.Uint64(data[off:])
	off += 8
	a.ReferredMinersCount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	a.TotalReferralBonus = Amount(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	return a, nil
}

// SetReferrer enforces the write-once referrer rule (spec §3): the first
// call with a non-zero referrer wins; every later call is a no-op.
func (a *Account) SetReferrer(referrer Address) {
	if a.HasReferrer {
		return
	}
	a.HasReferrer = true
	a.Referrer = referrer
}

// privacyCodeKey is the fixed siphash-2-4 key used to derive an address's
// privacy_code (spec §3). It is a protocol constant baked into every node,
// not a secret: the derivation must be reproducible by anyone who knows
// the address, since privacy_code exists only for display and as the
// referral_index lookup key, not for concealment.
var privacyCodeKey = [siphash.KeySize]byte{
	0x50, 0x4f, 0x4e, 0x43, 0x2d, 0x70, 0x72, 0x69, // "PONC-pri"
	0x76, 0x61, 0x63, 0x79, 0x2d, 0x63, 0x6f, 0x64, // "vacy-cod"
}

// DerivePrivacyCode computes addr's privacy_code: a deterministic 8-byte
// siphash-2-4 tag of the address (spec §3 "a privacy code... derived from
// the address, exposed only for display"). Every account's PrivacyCode
// field must hold this value from the moment the account is first
// created, since it also serves as the referral_index's lookup key.
func DerivePrivacyCode(addr Address) [PrivacyCodeSize]byte {
	sum := siphash.Sum64(addr[:], &privacyCodeKey)
	var code [PrivacyCodeSize]byte
	binary.LittleEndian.PutUint64(code[:], sum)
	return code
}
