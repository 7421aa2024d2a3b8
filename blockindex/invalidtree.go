// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockindex

import "github.com/libcoin/libcoin-sub001/chainhash"

// InvalidTree is a parallel index beside SparseTree: every hash ever observed,
// including rejected ones, recorded the same shape as SparseTree so
// "descendant of a known-invalid ancestor" is a cheap membership test
// rather than a re-validation.
type InvalidTree struct {
	seen    map[chainhash.Hash]bool
	invalid map[chainhash.Hash]bool
}

// NewInvalidTree returns an empty InvalidTree.
func NewInvalidTree() *InvalidTree {
	return &InvalidTree{seen: make(map[chainhash.Hash]bool), invalid: make(map[chainhash.Hash]bool)}
}

// Observe records hash as seen, optionally marking it (and, transitively,
// anything recorded as extending it) invalid.
func (it *InvalidTree) Observe(hash chainhash.Hash, prev chainhash.Hash, invalid bool) {
	it.seen[hash] = true
	if invalid || it.invalid[prev] {
		it.invalid[hash] = true
	}
}

// IsInvalid reports whether hash was marked invalid, directly or as a
// descendant of an invalid ancestor.
func (it *InvalidTree) IsInvalid(hash chainhash.Hash) bool { return it.invalid[hash] }

// Seen reports whether hash has ever been observed.
func (it *InvalidTree) Seen(hash chainhash.Hash) bool { return it.seen[hash] }
