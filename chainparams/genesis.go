// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainparams

import (
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

// genesisCoinbaseTx is the coinbase transaction shared by the Bitcoin,
// Testnet and Namecoin genesis blocks (all three forked from the same
// January 2009 launch text).
var genesisCoinbaseTx = wire.MsgTx{
	Version: 1,
	TxIn: []*wire.TxIn{{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript: []byte{
			0x04, 0xff, 0xff, 0x00, 0x1d, 0x01, 0x04, 0x45,
			0x54, 0x68, 0x65, 0x20, 0x54, 0x69, 0x6d, 0x65,
			0x73, 0x20, 0x30, 0x33, 0x2f, 0x4a, 0x61, 0x6e,
			0x2f, 0x32, 0x30, 0x30, 0x39, 0x20, 0x43, 0x68,
			0x61, 0x6e, 0x63, 0x65, 0x6c, 0x6c, 0x6f, 0x72,
			0x20, 0x6f, 0x6e, 0x20, 0x62, 0x72, 0x69, 0x6e,
			0x6b, 0x20, 0x6f, 0x66, 0x20, 0x73, 0x65, 0x63,
			0x6f, 0x6e, 0x64, 0x20, 0x62, 0x61, 0x69, 0x6c,
			0x6f, 0x75, 0x74, 0x20, 0x66, 0x6f, 0x72, 0x20,
			0x62, 0x61, 0x6e, 0x6b, 0x73,
		},
		Sequence: wire.MaxTxInSequenceNum,
	}},
	TxOut: []*wire.TxOut{{
		Value: 50 * 1e8,
		PkScript: []byte{
			0x41, 0x04, 0x67, 0x8a, 0xfd, 0xb0, 0xfe, 0x55,
			0x48, 0x27, 0x19, 0x67, 0xf1, 0xa6, 0x71, 0x30,
			0xb7, 0x10, 0x5c, 0xd6, 0xa8, 0x28, 0xe0, 0x39,
			0x09, 0xa6, 0x79, 0x62, 0xe0, 0xea, 0x1f, 0x61,
			0xde, 0xb6, 0x49, 0xf6, 0xbc, 0x3f, 0x4c, 0xef,
			0x38, 0xc4, 0xf3, 0x55, 0x04, 0xe5, 0x1e, 0xc1,
			0x12, 0xde, 0x5c, 0x38, 0x4d, 0xf7, 0xba, 0x0b,
			0x8d, 0x57, 0x8a, 0x4c, 0x70, 0x2b, 0x6b, 0xf1,
			0x1d, 0x5f, 0xac,
		},
	}},
	LockTime: 0,
}

var genesisMerkleRoot = mustHash("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")

func mustHash(hex string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(hex)
	if err != nil {
		panic(err)
	}
	return *h
}

// bitcoinGenesisBlock is the Bitcoin mainnet genesis block.
var bitcoinGenesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version:    1,
		MerkleRoot: genesisMerkleRoot,
		Timestamp:  1231006505,
		Bits:       0x1d00ffff,
		Nonce:      2083236893,
	},
	Transactions: []*wire.MsgTx{&genesisCoinbaseTx},
}

var bitcoinGenesisHash = mustHash("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")

// testnetGenesisBlock reuses the Bitcoin genesis coinbase text with a
// lower-difficulty target.
var testnetGenesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version:    1,
		MerkleRoot: genesisMerkleRoot,
		Timestamp:  1296688602,
		Bits:       0x1d00ffff,
		Nonce:      414098458,
	},
	Transactions: []*wire.MsgTx{&genesisCoinbaseTx},
}

var testnetGenesisHash = mustHash("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943")
