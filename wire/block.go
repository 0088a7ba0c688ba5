// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ponknot/ponc/chainhash"
)

// BlockVersion is the only block header version this build understands.
const BlockVersion uint32 = 1

// TargetSize is the length in bytes of a PoW target (spec §4.2): a
// big-endian 256-bit value compared directly against a PONC hash.
const TargetSize = 32

// HeaderPrefixSize is the size in bytes of everything in a block header
// that is hashed as the fixed PoW kernel input, excluding the nonce (spec
// §4.2):
//
//	version(4) + prevBlock(32) + merkleRoot(32) + timestamp(4) +
//	target(32) + minerAddress(32) + height(4) = 140
const HeaderPrefixSize = 4 + chainhash.HashSize + chainhash.HashSize + 4 + TargetSize + AddressSize + 4

// HeaderSize is HeaderPrefixSize plus the 8-byte little-endian nonce
// appended by the miner (spec §4.2): 140 + 8 = 148.
const HeaderSize = HeaderPrefixSize + 8

// BlockHeader is PONC's fixed-size 148-byte block header. The first 140
// bytes (everything but Nonce) form the PoW kernel's header_prefix; the
// full 148 bytes is what gets stored and relayed (spec §4.1, §4.2).
type BlockHeader struct {
	Version      uint32
	PrevBlock    chainhash.Hash
	MerkleRoot   chainhash.Hash
	Timestamp    uint32 // unix seconds
	Target       [TargetSize]byte
	MinerAddress Address
	Height       uint32
	Nonce        uint64
}

// SerializePrefix writes the 140-byte header_prefix consumed by the PoW
// kernel (spec §4.2). It never includes Nonce.
func (h *BlockHeader) SerializePrefix() []byte {
	buf := make([]byte, HeaderPrefixSize)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], h.Version)
	off += 4
	copy(buf[off:], h.PrevBlock[:])
	off += chainhash.HashSize
	copy(buf[off:], h.MerkleRoot[:])
	off += chainhash.HashSize
	binary.LittleEndian.PutUint32(buf[off:], h.Timestamp)
	off += 4
	copy(buf[off:], h.Target[:])
	off += TargetSize
	copy(buf[off:], h.MinerAddress[:])
	off += AddressSize
	binary.LittleEndian.PutUint32(buf[off:], h.Height)
	return buf
}

// Serialize returns the full 148-byte header encoding: header_prefix
// followed by the little-endian nonce (spec §4.2).
func (h *BlockHeader) Serialize() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf, h.SerializePrefix())
	binary.LittleEndian.PutUint64(buf[HeaderPrefixSize:], h.Nonce)
	return buf
}

// BlockHash returns SHA3-256 of the full 148-byte header. This is the
// PoW hash compared against Target (spec §4.2) and the value used to
// reference this block as a parent.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	return chainhash.HashH(h.Serialize())
}

// ParseBlockHeader decodes a 148-byte BlockHeader. Any other length is
// rejected with ErrSizeMismatch.
func ParseBlockHeader(data []byte) (*BlockHeader, error) {
	if len(data) != HeaderSize {
		return nil, encodingError(ErrSizeMismatch, "block header must be exactly 148 bytes")
	}
	h := &BlockHeader{}
	off := 0
	h.Version = binary.LittleEndian.Uint32(data[off:])
	off += 4
	if h.Version != BlockVersion {
		return nil, encodingError(ErrUnsupportedVersion, "unknown block header version")
	}
	copy(h.PrevBlock[:], data[off:off+chainhash.HashSize])
	off += chainhash.HashSize
	copy(h.MerkleRoot[:], data[off:off+chainhash.HashSize])
	off += chainhash.HashSize
	h.Timestamp = binary.LittleEndian.Uint32(data[off:])
	off += 4
	copy(h.Target[:], data[off:off+TargetSize])
	off += TargetSize
	copy(h.MinerAddress[:], data[off:off+AddressSize])
	off += AddressSize
	h.Height = binary.LittleEndian.Uint32(data[off:])
	off += 4
	h.Nonce = binary.LittleEndian.Uint64(data[off:])
	return h, nil
}

// Block pairs a header with its transaction list. Transactions[0] is
// always the coinbase (spec §3, §4.6).
type Block struct {
	Header       BlockHeader
	Transactions []Transaction
}

// Serialize writes the block as: header(148) || count(4, LE) ||
// len-prefixed transactions.
func (b *Block) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(b.Header.Serialize())

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(b.Transactions)))
	buf.Write(countBuf[:])

	for i := range b.Transactions {
		txBytes, err := b.Transactions[i].Serialize()
		if err != nil {
			return nil, err
		}
		if err := writeVarBytes(&buf, txBytes); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// ParseBlock decodes a Block produced by Serialize.
func ParseBlock(data []byte) (*Block, error) {
	if len(data) < HeaderSize+4 {
		return nil, encodingError(ErrMalformedEncoding, "block shorter than header+count")
	}
	header, err := ParseBlockHeader(data[:HeaderSize])
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(data[HeaderSize:])
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, encodingError(ErrMalformedEncoding, "short transaction count")
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	txs := make([]Transaction, 0, count)
	for i := uint32(0); i < count; i++ {
		txBytes, err := readVarBytes(r)
		if err != nil {
			return nil, err
		}
		tx, err := ParseTransaction(txBytes)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	if r.Len() != 0 {
		return nil, encodingError(ErrSizeMismatch, "trailing bytes after block")
	}

	return &Block{Header: *header, Transactions: txs}, nil
}

// MerkleRoot computes the binary SHA3-256 merkle root over txs' txids
// (spec §4.1, §8). An empty transaction list yields chainhash.ZeroHash.
// A level with an odd number of nodes duplicates its last node before
// pairing, matching the teacher's merkle construction.
func MerkleRoot(txs []Transaction) (chainhash.Hash, error) {
	if len(txs) == 0 {
		return chainhash.ZeroHash, nil
	}

	level := make([]chainhash.Hash, len(txs))
	for i := range txs {
		id, err := txs[i].TxID()
		if err != nil {
			return chainhash.Hash{}, err
		}
		level[i] = id
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = chainhash.Sum(level[i][:], level[i+1][:])
		}
		level = next
	}
	return level[0], nil
}
