// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// MsgAddr carries a batch of peer Endpoints.
type MsgAddr struct {
	AddrList []*NetAddress
}

// Command returns "addr".
func (msg *MsgAddr) Command() string { return CmdAddr }

// AddAddress appends na, rejecting the add once MaxAddrPerMsg is reached.
func (msg *MsgAddr) AddAddress(na *NetAddress) error {
	if len(msg.AddrList)+1 > MaxAddrPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation,
			"addr message exceeds max of %d entries", MaxAddrPerMsg)
	}
	msg.AddrList = append(msg.AddrList, na)
	return nil
}

// BtcDecode reads an addr message from r.
func (msg *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation,
			"too many addresses for message [count %d, max %d]", count, MaxAddrPerMsg)
	}
	hasTimestamp := pver >= NAVersionTimestamp
	msg.AddrList = make([]*NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na := &NetAddress{}
		if err := readNetAddress(r, pver, na, hasTimestamp); err != nil {
			return err
		}
		msg.AddrList = append(msg.AddrList, na)
	}
	return nil
}

// BtcEncode writes an addr message to w.
func (msg *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.AddrList) > MaxAddrPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation,
			"too many addresses for message [count %d, max %d]", len(msg.AddrList), MaxAddrPerMsg)
	}
	if err := WriteVarInt(w, uint64(len(msg.AddrList))); err != nil {
		return err
	}
	hasTimestamp := pver >= NAVersionTimestamp
	for _, na := range msg.AddrList {
		if err := writeNetAddress(w, pver, na, hasTimestamp); err != nil {
			return err
		}
	}
	return nil
}
