// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgVersion is the handshake-initiating message.
type MsgVersion struct {
	ProtocolVersion int32
	Services        uint64
	Timestamp       int64
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
	DisableRelayTx  bool
}

// Command returns "version".
func (msg *MsgVersion) Command() string { return CmdVersion }

// BtcDecode reads a version message from r.
func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	var err error
	if msg.ProtocolVersion, err = readInt32(r); err != nil {
		return err
	}
	if msg.Services, err = readUint64(r); err != nil {
		return err
	}
	if msg.Timestamp, err = readInt64(r); err != nil {
		return err
	}
	if err = readNetAddress(r, pver, &msg.AddrYou, false); err != nil {
		return err
	}
	if uint32(msg.ProtocolVersion) >= 106 {
		if err = readNetAddress(r, pver, &msg.AddrMe, false); err != nil {
			return err
		}
		if msg.Nonce, err = readUint64(r); err != nil {
			return err
		}
		if msg.UserAgent, err = ReadVarString(r, 256); err != nil {
			return err
		}
		if msg.LastBlock, err = readInt32(r); err != nil {
			return err
		}
		var relay [1]byte
		if _, err := io.ReadFull(r, relay[:]); err == nil {
			msg.DisableRelayTx = relay[0] == 0
		}
	}
	return nil
}

// BtcEncode writes a version message to w.
func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeInt32(w, msg.ProtocolVersion); err != nil {
		return err
	}
	if err := writeUint64(w, msg.Services); err != nil {
		return err
	}
	if err := writeInt64(w, msg.Timestamp); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := writeUint64(w, msg.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, msg.UserAgent); err != nil {
		return err
	}
	if err := writeInt32(w, msg.LastBlock); err != nil {
		return err
	}
	relay := byte(1)
	if msg.DisableRelayTx {
		relay = 0
	}
	_, err := w.Write([]byte{relay})
	return err
}

// MsgVerAck acknowledges a version handshake; it carries no payload.
type MsgVerAck struct{}

// Command returns "verack".
func (msg *MsgVerAck) Command() string { return CmdVerAck }

// BtcDecode is a no-op: verack has an empty payload.
func (msg *MsgVerAck) BtcDecode(r io.Reader, pver uint32) error { return nil }

// BtcEncode is a no-op: verack has an empty payload.
func (msg *MsgVerAck) BtcEncode(w io.Writer, pver uint32) error { return nil }

// MsgGetAddr requests known peer addresses; it carries no payload.
type MsgGetAddr struct{}

// Command returns "getaddr".
func (msg *MsgGetAddr) Command() string { return CmdGetAddr }

// BtcDecode is a no-op: getaddr has an empty payload.
func (msg *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error { return nil }

// BtcEncode is a no-op: getaddr has an empty payload.
func (msg *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error { return nil }

// MsgMemPool requests a peer's unconfirmed transaction set; it carries no
// payload.
type MsgMemPool struct{}

// Command returns "mempool".
func (msg *MsgMemPool) Command() string { return CmdMemPool }

// BtcDecode is a no-op: mempool has an empty payload.
func (msg *MsgMemPool) BtcDecode(r io.Reader, pver uint32) error { return nil }

// BtcEncode is a no-op: mempool has an empty payload.
func (msg *MsgMemPool) BtcEncode(w io.Writer, pver uint32) error { return nil }

// MsgFilterClear clears a peer's bloom filter; it carries no payload.
type MsgFilterClear struct{}

// Command returns "filterclear".
func (msg *MsgFilterClear) Command() string { return CmdFilterClear }

// BtcDecode is a no-op: filterclear has an empty payload.
func (msg *MsgFilterClear) BtcDecode(r io.Reader, pver uint32) error { return nil }

// BtcEncode is a no-op: filterclear has an empty payload.
func (msg *MsgFilterClear) BtcEncode(w io.Writer, pver uint32) error { return nil }
