// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"math/big"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Decode [256]int64

func init() {
	for i := range base58Decode {
		base58Decode[i] = -1
	}
	for i, c := range base58Alphabet {
		base58Decode[c] = int64(i)
	}
}

// Base58Encode encodes b using the Bitcoin base58 alphabet, preserving
// leading zero bytes as leading '1' characters.
func Base58Encode(b []byte) string {
	x := new(big.Int).SetBytes(b)
	radix := big.NewInt(58)
	zero := big.NewInt(0)
	mod := new(big.Int)

	var out []byte
	for x.Cmp(zero) > 0 {
		x.DivMod(x, radix, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}
	for _, c := range b {
		if c != 0 {
			break
		}
		out = append(out, base58Alphabet[0])
	}
	// reverse
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Base58Decode is the inverse of Base58Encode.
func Base58Decode(s string) ([]byte, error) {
	x := big.NewInt(0)
	radix := big.NewInt(58)
	for _, c := range s {
		if c > 255 || base58Decode[c] == -1 {
			return nil, errInvalidBase58
		}
		x.Mul(x, radix)
		x.Add(x, big.NewInt(base58Decode[c]))
	}
	decoded := x.Bytes()

	numZeros := 0
	for _, c := range s {
		if c != rune(base58Alphabet[0]) {
			break
		}
		numZeros++
	}
	out := make([]byte, numZeros+len(decoded))
	copy(out[numZeros:], decoded)
	return out, nil
}

var errInvalidBase58 = NewBase58Error("invalid base58 character")

// Base58Error reports a malformed base58(Check) string.
type Base58Error struct{ msg string }

func (e *Base58Error) Error() string { return e.msg }

// NewBase58Error constructs a Base58Error.
func NewBase58Error(msg string) *Base58Error { return &Base58Error{msg} }

// Base58CheckEncode encodes payload prefixed with version, appending a
// 4-byte SHA-256d checksum, as used for WIF keys and P2PKH/P2SH addresses.
func Base58CheckEncode(version byte, payload []byte) string {
	b := make([]byte, 0, 1+len(payload)+4)
	b = append(b, version)
	b = append(b, payload...)
	cksum := DoubleHashB(b)[:4]
	b = append(b, cksum...)
	return Base58Encode(b)
}

// Base58CheckDecode decodes s and validates its checksum, returning the
// version byte and payload.
func Base58CheckDecode(s string) (payload []byte, version byte, err error) {
	decoded, err := Base58Decode(s)
	if err != nil {
		return nil, 0, err
	}
	if len(decoded) < 5 {
		return nil, 0, NewBase58Error("base58check string too short")
	}
	version = decoded[0]
	body := decoded[:len(decoded)-4]
	cksum := decoded[len(decoded)-4:]
	expected := DoubleHashB(body)[:4]
	for i := range cksum {
		if cksum[i] != expected[i] {
			return nil, 0, NewBase58Error("base58check checksum mismatch")
		}
	}
	return body[1:], version, nil
}
