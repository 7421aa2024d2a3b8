// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash implements the hash, double-hash and Base58Check
// primitives shared by the block/transaction model, the script evaluator and
// the UTXO merkle trie.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/ripemd160"
)

// HashSize is the number of bytes in the hash type used throughout the
// engine (SHA-256d output).
const HashSize = 32

// Hash is a 32-byte SHA-256d digest, stored and compared in the
// internal (non-reversed) byte order; String() renders it reversed to match
// the conventional display order used by block explorers and RPCs.
type Hash [HashSize]byte

// HashZero is the zero hash.
var HashZero = Hash{}

// String returns the hash as a hex string in big-endian display order.
func (h Hash) String() string {
	for i, j := 0, len(h)-1; i < j; i, j = i+1, j-1 {
		h[i], h[j] = h[j], h[i]
	}
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a newly allocated copy of the hash's bytes in internal
// order.
func (h *Hash) CloneBytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// IsEqual reports whether h and target represent the same hash. Two nil
// hashes are equal; a nil hash never equals a non-nil one.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// SetBytes sets the hash to the value of b, which must have length
// HashSize.
func (h *Hash) SetBytes(b []byte) error {
	if len(b) != HashSize {
		return errors.New("chainhash: invalid hash length")
	}
	copy(h[:], b)
	return nil
}

// NewHash returns a Hash built from b, which must have length HashSize.
func NewHash(b []byte) (*Hash, error) {
	var h Hash
	if err := h.SetBytes(b); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewHashFromStr parses s, a big-endian display-order hex string, into a
// Hash stored in internal order.
func NewHashFromStr(s string) (*Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != HashSize {
		return nil, errors.New("chainhash: invalid hash string length")
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	var h Hash
	copy(h[:], b)
	return &h, nil
}

// HashB returns the single SHA-256 digest of b.
func HashB(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// DoubleHashB returns SHA-256d(b): SHA-256 applied twice.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH returns DoubleHashB(b) as a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return Hash(second)
}

// Hash160 returns RIPEMD160(SHA256(b)), the address/script-hash digest used
// by P2PKH and P2SH.
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	ripe := ripemd160.New()
	ripe.Write(sum[:])
	return ripe.Sum(nil)
}
