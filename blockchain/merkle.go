// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

// nextPowerOfTwo returns the next highest power of two from n, or n itself
// if it already is one.
func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	exp := 0
	for 1<<uint(exp) < n {
		exp++
	}
	return 1 << uint(exp)
}

// hashMerkleBranches concatenates left and right and double-hashes the
// result, the per-level combining step of a merkle tree.
func hashMerkleBranches(left, right chainhash.Hash) chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.DoubleHashH(buf[:])
}

// CalcMerkleRoot builds the merkle tree over txs' hashes and returns its
// root. An empty tree of no
// transactions returns the zero hash.
func CalcMerkleRoot(txs []*wire.MsgTx) chainhash.Hash {
	if len(txs) == 0 {
		return chainhash.HashZero
	}
	nextPoT := nextPowerOfTwo(len(txs))
	arraySize := nextPoT*2 - 1
	nodes := make([]*chainhash.Hash, arraySize)

	for i, tx := range txs {
		h := tx.TxHash()
		nodes[i] = &h
	}

	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		case nodes[i] == nil:
			nodes[offset] = nil
		case nodes[i+1] == nil:
			h := hashMerkleBranches(*nodes[i], *nodes[i])
			nodes[offset] = &h
		default:
			h := hashMerkleBranches(*nodes[i], *nodes[i+1])
			nodes[offset] = &h
		}
		offset++
	}

	return *nodes[len(nodes)-1]
}
