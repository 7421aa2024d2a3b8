// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MaxFilterLoadHashFuncs bounds the number of hash functions a bloom filter
// may declare.
const MaxFilterLoadHashFuncs = 50

// MsgFilterLoad installs a bloom filter on the connection so the peer can
// build merkleblock replies for matching transactions.
type MsgFilterLoad struct {
	Filter    []byte
	HashFuncs uint32
	Tweak     uint32
	Flags     byte
}

// Command returns "filterload".
func (msg *MsgFilterLoad) Command() string { return CmdFilterLoad }

// BtcDecode reads a filterload message from r.
func (msg *MsgFilterLoad) BtcDecode(r io.Reader, pver uint32) error {
	var err error
	if msg.Filter, err = ReadVarBytes(r, 36000, "filterload filter"); err != nil {
		return err
	}
	if msg.HashFuncs, err = readUint32(r); err != nil {
		return err
	}
	if msg.Tweak, err = readUint32(r); err != nil {
		return err
	}
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return err
	}
	msg.Flags = flag[0]
	return nil
}

// BtcEncode writes a filterload message to w.
func (msg *MsgFilterLoad) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarBytes(w, msg.Filter); err != nil {
		return err
	}
	if err := writeUint32(w, msg.HashFuncs); err != nil {
		return err
	}
	if err := writeUint32(w, msg.Tweak); err != nil {
		return err
	}
	_, err := w.Write([]byte{msg.Flags})
	return err
}

// MsgFilterAdd adds a single data element to the peer's loaded filter.
type MsgFilterAdd struct{ Data []byte }

// Command returns "filteradd".
func (msg *MsgFilterAdd) Command() string { return CmdFilterAdd }

// BtcDecode reads a filteradd message from r.
func (msg *MsgFilterAdd) BtcDecode(r io.Reader, pver uint32) error {
	var err error
	msg.Data, err = ReadVarBytes(r, 520, "filteradd data")
	return err
}

// BtcEncode writes a filteradd message to w.
func (msg *MsgFilterAdd) BtcEncode(w io.Writer, pver uint32) error {
	return WriteVarBytes(w, msg.Data)
}

// MsgReject carries a soft rejection notice, echoing the offending message
// and hash when applicable.
type MsgReject struct {
	Cmd    string
	Code   byte
	Reason string
	Hash   [32]byte
}

// CmdReject-specific codes used by the engine.
const (
	RejectMalformed  byte = 0x01
	RejectInvalid    byte = 0x10
	RejectObsolete   byte = 0x11
	RejectDuplicate  byte = 0x12
	RejectCheckpoint byte = 0x43
)

// Command returns "reject".
func (msg *MsgReject) Command() string { return CmdReject }

// BtcDecode reads a reject message from r.
func (msg *MsgReject) BtcDecode(r io.Reader, pver uint32) error {
	var err error
	if msg.Cmd, err = ReadVarString(r, CommandSize*2); err != nil {
		return err
	}
	var code [1]byte
	if _, err := io.ReadFull(r, code[:]); err != nil {
		return err
	}
	msg.Code = code[0]
	if msg.Reason, err = ReadVarString(r, MaxMessagePayload); err != nil {
		return err
	}
	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx {
		_, err = io.ReadFull(r, msg.Hash[:])
	}
	return err
}

// BtcEncode writes a reject message to w.
func (msg *MsgReject) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarString(w, msg.Cmd); err != nil {
		return err
	}
	if _, err := w.Write([]byte{msg.Code}); err != nil {
		return err
	}
	if err := WriteVarString(w, msg.Reason); err != nil {
		return err
	}
	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx {
		_, err := w.Write(msg.Hash[:])
		return err
	}
	return nil
}
