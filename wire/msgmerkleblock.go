// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

// MsgMerkleBlock answers a bloom-filtered block request with the header,
// the matched transaction hashes, and the audit path needed to validate
// them against the header's merkle root (an SPV proof).
type MsgMerkleBlock struct {
	Header       BlockHeader
	Transactions uint32
	Hashes       []*chainhash.Hash
	Flags        []byte
}

// Command returns "merkleblock".
func (msg *MsgMerkleBlock) Command() string { return CmdMerkleBlock }

// BtcDecode reads a merkleblock message from r.
func (msg *MsgMerkleBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := msg.Header.BtcDecode(r, pver); err != nil {
		return err
	}
	txs, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.Transactions = txs

	hashCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.Hashes = make([]*chainhash.Hash, 0, hashCount)
	for i := uint64(0); i < hashCount; i++ {
		h := &chainhash.Hash{}
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return err
		}
		msg.Hashes = append(msg.Hashes, h)
	}

	msg.Flags, err = ReadVarBytes(r, MaxMessagePayload, "merkleblock flags")
	return err
}

// BtcEncode writes a merkleblock message to w.
func (msg *MsgMerkleBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := msg.Header.BtcEncode(w, pver); err != nil {
		return err
	}
	if err := writeUint32(w, msg.Transactions); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.Hashes))); err != nil {
		return err
	}
	for _, h := range msg.Hashes {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	return WriteVarBytes(w, msg.Flags)
}
