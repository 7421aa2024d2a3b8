// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// InvType identifies what an InvVect refers to.
type InvType uint32

// Inventory item types.
const (
	InvTypeError InvType = iota
	InvTypeTx
	InvTypeBlock
	InvTypeFilteredBlock
	InvTypeShare
)

// InvVect is a single Inventory entry: a type tag plus a hash.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVect returns a new InvVect for the given type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func readInvVect(r io.Reader, iv *InvVect) error {
	t, err := readUint32(r)
	if err != nil {
		return err
	}
	iv.Type = InvType(t)
	_, err = io.ReadFull(r, iv.Hash[:])
	return err
}

func writeInvVect(w io.Writer, iv *InvVect) error {
	if err := writeUint32(w, uint32(iv.Type)); err != nil {
		return err
	}
	_, err := w.Write(iv.Hash[:])
	return err
}

// MaxInvPerMsg caps the number of inventory vectors carried by a single
// inv/getdata/notfound message.
const MaxInvPerMsg = 1000

func readInvList(r io.Reader, pver uint32) ([]*InvVect, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > MaxInvPerMsg {
		return nil, libcoinerr.New(libcoinerr.ProtocolViolation,
			"too many inventory vectors [count %d, max %d]", count, MaxInvPerMsg)
	}
	out := make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

func writeInvList(w io.Writer, pver uint32, invList []*InvVect) error {
	if len(invList) > MaxInvPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation,
			"too many inventory vectors [count %d, max %d]", len(invList), MaxInvPerMsg)
	}
	if err := WriteVarInt(w, uint64(len(invList))); err != nil {
		return err
	}
	for _, iv := range invList {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}

// MsgInv announces inventory the sender has available.
type MsgInv struct{ InvList []*InvVect }

// Command returns "inv".
func (msg *MsgInv) Command() string { return CmdInv }

// AddInvVect appends iv, rejecting the add once MaxInvPerMsg is reached.
func (msg *MsgInv) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation, "inv message exceeds max of %d entries", MaxInvPerMsg)
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode reads an inv message from r.
func (msg *MsgInv) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvList(r, pver)
	msg.InvList = list
	return err
}

// BtcEncode writes an inv message to w.
func (msg *MsgInv) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvList(w, pver, msg.InvList)
}

// MsgGetData requests the full payload for a list of inventory vectors.
type MsgGetData struct{ InvList []*InvVect }

// Command returns "getdata".
func (msg *MsgGetData) Command() string { return CmdGetData }

// AddInvVect appends iv, rejecting the add once MaxInvPerMsg is reached.
func (msg *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation, "getdata message exceeds max of %d entries", MaxInvPerMsg)
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode reads a getdata message from r.
func (msg *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvList(r, pver)
	msg.InvList = list
	return err
}

// BtcEncode writes a getdata message to w.
func (msg *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvList(w, pver, msg.InvList)
}

// MsgNotFound answers a getdata for inventory the sender doesn't have.
type MsgNotFound struct{ InvList []*InvVect }

// Command returns "notfound".
func (msg *MsgNotFound) Command() string { return CmdNotFound }

// BtcDecode reads a notfound message from r.
func (msg *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvList(r, pver)
	msg.InvList = list
	return err
}

// BtcEncode writes a notfound message to w.
func (msg *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvList(w, pver, msg.InvList)
}
