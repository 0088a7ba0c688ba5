// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/ponknot/ponc/chainhash"
)

// TxVersion is the only transaction version this build understands.
// parse rejects any other value with ErrUnsupportedVersion (spec §4.1).
const TxVersion uint32 = 1

// MinTxFee is the protocol-minimum fee, in knots, accepted by the mempool
// and re-checked by the validator (spec §3, §4.5).
const MinTxFee Amount = 1

// ReferralSize is the length in bytes of the referral tag embedded in a
// transaction's first outbound use (spec §3).
const ReferralSize = 8

// GovernanceDataSize is the length in bytes of the governance vote target
// a transaction may carry (spec §3).
const GovernanceDataSize = 32

// maxCryptoFieldSize bounds the length-prefixed public key and signature
// fields so a malformed length prefix can never trigger an enormous
// allocation while parsing untrusted bytes.
const maxCryptoFieldSize = 1 << 20 // 1 MiB

// Transaction is PONC's fixed-shape transaction record (spec §3). Amount
// may be zero; Fee must be at least MinTxFee for anything other than the
// coinbase. Referral and GovernanceData are each gated by an explicit
// presence flag since their natural zero value (all-zero bytes) is a
// legitimate value for neither field and must not be confused with
// absence.
type Transaction struct {
	Version        uint32
	Sender         Address
	Recipient      Address
	Amount         Amount
	Fee            Amount
	Nonce          uint64
	HasReferral    bool
	Referral       [ReferralSize]byte
	HasGovernance  bool
	GovernanceData [GovernanceDataSize]byte
	PubKey         []byte
	Signature      []byte
}

// IsCoinbase reports whether tx is the zero-sender coinbase transaction
// (spec §3). A coinbase carries no signature verification and is never fee
// checked.
func (tx *Transaction) IsCoinbase() bool {
	return tx.Sender.IsZero()
}

// writeUnsigned writes every field of tx except Signature. This is the
// byte sequence that is both signed by the sender and hashed to produce
// the txid (spec §3, §4.1).
func (tx *Transaction) writeUnsigned(w io.Writer) error {
	var hdr [4 + AddressSize + AddressSize + 8 + 8 + 8]byte
	off := 0
	binary.LittleEndian.PutUint32(hdr[off:], tx.Version)
	off += 4
	copy(hdr[off:], tx.Sender[:])
	off += AddressSize
	copy(hdr[off:], tx.Recipient[:])
	off += AddressSize
	binary.LittleEndian.PutUint64(hdr[off:], uint64(tx.Amount))
	off += 8
	binary.LittleEndian.PutUint64(hdr[off:], uint64(tx.Fee))
	off += 8
	binary.LittleEndian.PutUint64(hdr[off:], tx.Nonce)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	if err := writeBool(w, tx.HasReferral); err != nil {
		return err
	}
	if _, err := w.Write(tx.Referral[:]); err != nil {
		return err
	}
	if err := writeBool(w, tx.HasGovernance); err != nil {
		return err
	}
	if _, err := w.Write(tx.GovernanceData[:]); err != nil {
		return err
	}
	if err := writeVarBytes(w, tx.PubKey); err != nil {
		return err
	}
	return nil
}

// Serialize returns the canonical encoding of tx, including its signature.
// parse(serialize(tx)) == tx for any well-formed tx (spec §8 round-trip
// law).
func (tx *Transaction) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.writeUnsigned(&buf); err != nil {
		return nil, err
	}
	if err := writeVarBytes(&buf, tx.Signature); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalUnsignedBytes returns the bytes that are signed by the sender
// and hashed for the txid: every field except Signature (spec §3, §4.1).
func (tx *Transaction) CanonicalUnsignedBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.writeUnsigned(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TxID returns SHA3-256 of the canonical unsigned encoding (spec §3).
func (tx *Transaction) TxID() (chainhash.Hash, error) {
	b, err := tx.CanonicalUnsignedBytes()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(b), nil
}

// ParseTransaction decodes a Transaction from its canonical encoding.
// Parsing rejects trailing bytes, wrong sizes, and unknown versions (spec
// §4.1).
func ParseTransaction(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	tx, err := readTransaction(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, encodingError(ErrSizeMismatch, "trailing bytes after transaction")
	}
	return tx, nil
}

func readTransaction(r *bytes.Reader) (*Transaction, error) {
	tx := &Transaction{}

	var hdr [4 + AddressSize + AddressSize + 8 + 8 + 8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, encodingError(ErrMalformedEncoding, "short transaction header")
	}
	off := 0
	tx.Version = binary.LittleEndian.Uint32(hdr[off:])
	off += 4
	if tx.Version != TxVersion {
		return nil, encodingError(ErrUnsupportedVersion, "unknown transaction version")
	}
	copy(tx.Sender[:], hdr[off:off+AddressSize])
	off += AddressSize
	copy(tx.Recipient[:], hdr[off:off+AddressSize])
	off += AddressSize
	tx.Amount = Amount(binary.LittleEndian.Uint64(hdr[off:]))
	off += 8
	tx.Fee = Amount(binary.LittleEndian.Uint64(hdr[off:]))
	off += 8
	tx.Nonce = binary.LittleEndian.Uint64(hdr[off:])

	hasReferral, err := readBool(r)
	if err != nil {
		return nil, err
	}
	tx.HasReferral = hasReferral
	if _, err := io.ReadFull(r, tx.Referral[:]); err != nil {
		return nil, encodingError(ErrMalformedEncoding, "short referral field")
	}

	hasGovernance, err := readBool(r)
	if err != nil {
		return nil, err
	}
	tx.HasGovernance = hasGovernance
	if _, err := io.ReadFull(r, tx.GovernanceData[:]); err != nil {
		return nil, encodingError(ErrMalformedEncoding, "short governance field")
	}

	pubKey, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	tx.PubKey = pubKey

	sig, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	tx.Signature = sig

	return tx, nil
}

func writeBool(w io.Writer, v bool) error {
	var b [1]byte
	if v {
		b[0] = 1
	}
	_, err := w.Write(b[:])
	return err
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, encodingError(ErrMalformedEncoding, "short bool flag")
	}
	return b[0] != 0, nil
}

func writeVarBytes(w io.Writer, b []byte) error {
	if len(b) > maxCryptoFieldSize {
		return encodingError(ErrSizeMismatch, "field exceeds maximum size")
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}

func readVarBytes(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, encodingError(ErrMalformedEncoding, "short length prefix")
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxCryptoFieldSize || uint64(n) > uint64(math.MaxInt32) {
		return nil, encodingError(ErrSizeMismatch, "field length exceeds maximum")
	}
	if n == 0 {
		return nil, nil
	}
	if uint64(r.Len()) < uint64(n) {
		return nil, encodingError(ErrMalformedEncoding, "field length exceeds remaining buffer")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, encodingError(ErrMalformedEncoding, "short field body")
	}
	return buf, nil
}
