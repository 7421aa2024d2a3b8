// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// MaxBlockTxCount bounds the number of transactions a decoded block may
// declare, guarding against a hostile length prefix.
const MaxBlockTxCount = 1_000_000

// MsgBlock is the block model: a header plus ordered transactions,
// the first of which is the coinbase.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// Command returns "block".
func (msg *MsgBlock) Command() string { return CmdBlock }

// BtcDecode reads a block from r.
func (msg *MsgBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := msg.Header.BtcDecode(r, pver); err != nil {
		return err
	}
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxBlockTxCount {
		return libcoinerr.New(libcoinerr.MalformedMessage,
			"block declares %d transactions, more than the max of %d", count, MaxBlockTxCount)
	}
	msg.Transactions = make([]*MsgTx, 0, minInt(count, defaultTxInOutAlloc))
	for i := uint64(0); i < count; i++ {
		tx := &MsgTx{}
		if err := tx.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}
	return nil
}

// BtcEncode writes a block to w.
func (msg *MsgBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := msg.Header.BtcEncode(w, pver); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}
	return nil
}

// BlockHash returns the hash of the block's header.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.Hash()
}

// Coinbase returns the block's first transaction, or nil for an empty
// (malformed) block.
func (msg *MsgBlock) Coinbase() *MsgTx {
	if len(msg.Transactions) == 0 {
		return nil
	}
	return msg.Transactions[0]
}
