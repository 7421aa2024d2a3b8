// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPing probes liveness. At or below BIP0031Version, ping carries no nonce
// and expects no pong.
type MsgPing struct{ Nonce uint64 }

// Command returns "ping".
func (msg *MsgPing) Command() string { return CmdPing }

// BtcDecode reads a ping message from r.
func (msg *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	if pver <= BIP0031Version {
		return nil
	}
	n, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = n
	return nil
}

// BtcEncode writes a ping message to w.
func (msg *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	if pver <= BIP0031Version {
		return nil
	}
	return writeUint64(w, msg.Nonce)
}

// MsgPong answers a ping with the same nonce.
type MsgPong struct{ Nonce uint64 }

// Command returns "pong".
func (msg *MsgPong) Command() string { return CmdPong }

// BtcDecode reads a pong message from r.
func (msg *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	n, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = n
	return nil
}

// BtcEncode writes a pong message to w.
func (msg *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return writeUint64(w, msg.Nonce)
}
