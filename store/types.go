// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "github.com/libcoin/libcoin-sub001/chainhash"

// BlockRow is one row of the Blocks table: the header fields plus
// the full raw block, so a detach can rebuild the block exactly.
type BlockRow struct {
	Count      int64
	Hash       chainhash.Hash
	Version    int32
	PrevHash   chainhash.Hash
	MerkleRoot chainhash.Hash
	Time       uint32
	Bits       uint32
	Nonce      uint32
	RawBlock   []byte
}

// ConfirmationRow is one row of the Confirmations table. Coinbase
// confirmations are stored with Cnf == -BlockCount.
type ConfirmationRow struct {
	Cnf        int64
	Version    int32
	LockTime   uint32
	BlockCount int64
	TxIndex    int
	TxHash     chainhash.Hash
}

// UnspentRow is one row of the Unspents table. BlockCount is negative
// for an immature coinbase output.
type UnspentRow struct {
	CoinID     int64
	TxHash     chainhash.Hash
	OutIndex   uint32
	Value      int64
	Script     []byte
	BlockCount int64
	OCnf       int64
}

// SpendingRow is one row of the Spendings table: a former Unspent
// augmented with the redeeming input's signature, sequence, index, and
// confirmation. BlockCount preserves the Unspent's value at redeem time
// so a detach can restore the row exactly.
type SpendingRow struct {
	CoinID     int64
	TxHash     chainhash.Hash
	OutIndex   uint32
	Value      int64
	Script     []byte
	BlockCount int64
	ICnf       int64
	OCnf       int64
	Sig        []byte
	Sequence   uint32
	InputIndex int
}

// NameRow is one row of the Names table.
type NameRow struct {
	Name   string
	Value  []byte
	Height int64
	Expiry int64
}
