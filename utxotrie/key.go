// Package utxotrie implements the authenticated binary radix trie over
// (txid, output-index) keys that backs the UTXO set. Every mutation
// builds new nodes along the touched path and reuses every untouched
// subtree from the prior root, so the trie is copy-on-write without any
// reference counting: the previous root is itself a valid, immutable
// snapshot of the trie as it stood before the mutation.
package utxotrie

import (
	"encoding/binary"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

// KeySize is the width of a trie key: a 32-byte transaction id followed by
// a 4-byte big-endian output index.
const KeySize = 36

// Key is the fixed-width (txid ‖ index) key a MerkleTrie element is stored
// under.
type Key [KeySize]byte

// NewKey builds the canonical trie key for a transaction output.
func NewKey(txid chainhash.Hash, index uint32) Key {
	var k Key
	copy(k[:32], txid[:])
	binary.BigEndian.PutUint32(k[32:], index)
	return k
}

// Txid extracts the transaction hash portion of the key.
func (k Key) Txid() chainhash.Hash {
	var h chainhash.Hash
	copy(h[:], k[:32])
	return h
}

// Index extracts the output-index portion of the key.
func (k Key) Index() uint32 {
	return binary.BigEndian.Uint32(k[32:])
}

// bitAt returns the bit at position i (0 = most significant bit of byte 0).
func bitAt(k Key, i int) int {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	return int((k[byteIdx] >> bitIdx) & 1)
}

// critBit returns the index of the most significant bit at which a and b
// differ, and reports whether they are identical.
func critBit(a, b Key) (int, bool) {
	for i := 0; i < KeySize; i++ {
		if a[i] == b[i] {
			continue
		}
		diff := a[i] ^ b[i]
		for bit := 0; bit < 8; bit++ {
			if diff&(0x80>>uint(bit)) != 0 {
				return i*8 + bit, false
			}
		}
	}
	return 0, true
}
