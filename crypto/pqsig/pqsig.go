// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pqsig adapts github.com/theQRL/go-qrllib's dilithium
// implementation to the single opaque operation the consensus core needs
// (spec §4.6: "the core treats it as an opaque verify(pk, msg, sig) ->
// bool"). Nothing outside this package imports go-qrllib directly, so a
// future post-quantum scheme swap touches only this package (this file and
// the test keypair helper in testkey.go) and AddressSize.
package pqsig

import (
	"bytes"

	"github.com/theQRL/go-qrllib/dilithium"

	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/wire"
)

// PublicKeySize and SignatureSize are the fixed byte lengths dilithium
// produces. A transaction whose PubKey or Signature field is any other
// length is rejected before a single dilithium call is made.
const (
	PublicKeySize = dilithium.CryptoPublicKeyBytes
	SignatureSize = dilithium.CryptoBytes
)

// Verify reports whether sig is a valid dilithium signature over msg under
// pubKey. It never panics: malformed input (wrong-length key or signature)
// returns false rather than calling into the underlying implementation.
func Verify(pubKey, msg, sig []byte) (ok bool) {
	if len(pubKey) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}

	var pk [PublicKeySize]uint8
	copy(pk[:], pubKey)

	// go-qrllib's verifier guards against malformed ciphertext internally,
	// but dilithium is cgo-backed native code outside this module's
	// review; a recover keeps a corrupt signature from ever panicking the
	// single-writer consensus path that calls this.
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	opened, valid := dilithium.Open(append(append([]byte{}, sig...), msg...), &pk)
	if !valid {
		return false
	}
	return bytes.Equal(opened, msg)
}

// AddressFromPubKey derives the 32-byte address a public key controls.
// Addresses are otherwise opaque to the consensus core (spec §4.1); this
// is the one place their derivation is pinned, by SHA3-256 over the raw
// public key bytes — chainhash.HashH already is SHA3-256 and yields
// exactly wire.AddressSize bytes, so no truncation or padding is needed.
func AddressFromPubKey(pubKey []byte) wire.Address {
	h := chainhash.HashH(pubKey)
	var addr wire.Address
	copy(addr[:], h[:])
	return addr
}
