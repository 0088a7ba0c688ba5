// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pqsig

import (
	"github.com/theQRL/go-qrllib/dilithium"

	"github.com/ponknot/ponc/wire"
)

// KeyPair is a convenience wrapper around a generated dilithium keypair,
// used by tests across the module to sign transactions without each test
// reaching into go-qrllib directly.
type KeyPair struct {
	d *dilithium.Dilithium
}

// GenerateKeyPair returns a fresh randomly seeded keypair.
func GenerateKeyPair() (*KeyPair, error) {
	d, err := dilithium.New()
	if err != nil {
		return nil, err
	}
	return &KeyPair{d: d}, nil
}

// PublicKey returns the raw public key bytes.
func (k *KeyPair) PublicKey() []byte {
	pk := k.d.GetPK()
	return pk[:]
}

// Address returns the address this keypair controls.
func (k *KeyPair) Address() wire.Address {
	return AddressFromPubKey(k.PublicKey())
}

// Sign produces a detached signature over msg.
func (k *KeyPair) Sign(msg []byte) []byte {
	sealed := k.d.Seal(msg)
	return sealed[:len(sealed)-len(msg)]
}
