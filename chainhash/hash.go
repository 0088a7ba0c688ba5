// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte hash type used throughout PONC's
// consensus core. Unlike Bitcoin-derived chains, which double-SHA256 almost
// everything, PONC hashes with a single round of SHA3-256 (FIPS 202, domain
// separation byte 0x06) everywhere: transaction ids, merkle roots, and the
// PONC proof-of-work kernel all share this primitive.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// HashSize is the number of bytes in a hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the PONC wire formats and storage keys. It
// typically represents the double-SHA3-256-free single-SHA3-256 hash of
// data.
type Hash [HashSize]byte

// ZeroHash is the zero value for a Hash. It is defined as a package level
// variable to avoid the need to create a new instance every time a
// comparison is needed.
var ZeroHash Hash

// String returns the Hash as the plain hexadecimal string of its bytes in
// stored order, with no byte reversal; this matches the big-endian order
// in which PONC compares hashes as integers (see IsLessOrEqual).
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a copy of the bytes which make up the hash. This is
// mostly useful when one wants to mutate the raw bytes associated with the
// hash without modifying the original hash.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", nhlen, HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// IsZero reports whether the hash is the all-zero sentinel value used for
// the coinbase sender address and the empty merkle root.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// NewHash returns a new Hash from a byte slice. An error is returned if the
// number of bytes passed in is not HashSize.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hash string. The string should be
// the plain hexadecimal string of the hash.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the hex encoding of a hash into dst.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	srcBytes, err := hex.DecodeString(src)
	if err != nil {
		return err
	}
	if len(srcBytes) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(srcBytes), HashSize)
	}

	copy(dst[:], srcBytes)
	return nil
}

// HashB calculates SHA3-256(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	sum := sha3.Sum256(b)
	return sum[:]
}

// HashH calculates SHA3-256(b) and returns the resulting bytes as a Hash.
func HashH(b []byte) Hash {
	return sha3.Sum256(b)
}

// Sum computes SHA3-256 over the concatenation of parts, avoiding an
// intermediate allocation for the concatenated buffer.
func Sum(parts ...[]byte) Hash {
	h := sha3.New256()
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// IsLessOrEqual reports whether h, interpreted as a big-endian 256-bit
// unsigned integer, is less than or equal to target. This is the PONC
// proof-of-work acceptance test (spec §4.2) and is also used to compare
// accumulated-target values.
func (h Hash) IsLessOrEqual(target Hash) bool {
	for i := 0; i < HashSize; i++ {
		if h[i] != target[i] {
			return h[i] < target[i]
		}
	}
	return true
}
