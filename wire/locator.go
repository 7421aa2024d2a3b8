// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/libcoin/libcoin-sub001/chainhash"

// BlockLocator is the exponentially-thinning list of best-chain hashes:
// offsets 0..9 from the tip, then doubling step size down
// to the genesis block.
type BlockLocator []*chainhash.Hash
