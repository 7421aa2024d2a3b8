// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgAlert carries a signed operator alert. Payload and
// Signature are opaque blobs: the payload is itself a serialised
// AlertDetails, and the signature is verified against a hard-coded operator
// public key before the payload is trusted.
type MsgAlert struct {
	Payload   []byte
	Signature []byte
}

// Command returns "alert".
func (msg *MsgAlert) Command() string { return CmdAlert }

// BtcDecode reads an alert message from r.
func (msg *MsgAlert) BtcDecode(r io.Reader, pver uint32) error {
	var err error
	if msg.Payload, err = ReadVarBytes(r, MaxMessagePayload, "alert payload"); err != nil {
		return err
	}
	msg.Signature, err = ReadVarBytes(r, MaxMessagePayload, "alert signature")
	return err
}

// BtcEncode writes an alert message to w.
func (msg *MsgAlert) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarBytes(w, msg.Payload); err != nil {
		return err
	}
	return WriteVarBytes(w, msg.Signature)
}

// AlertDetails is the structured content of Payload once decoded.
type AlertDetails struct {
	Version     int32
	RelayUntil  int64
	Expiration  int64
	ID          int32
	Cancel      int32
	SetCancel   []int32
	MinVer      int32
	MaxVer      int32
	SetSubVer   []string
	Priority    int32
	Comment     string
	StatusBar   string
	Reserved    string
}

// Decode parses raw into an AlertDetails.
func (d *AlertDetails) Decode(r io.Reader) error {
	var err error
	if d.Version, err = readInt32(r); err != nil {
		return err
	}
	if d.RelayUntil, err = readInt64(r); err != nil {
		return err
	}
	if d.Expiration, err = readInt64(r); err != nil {
		return err
	}
	if d.ID, err = readInt32(r); err != nil {
		return err
	}
	if d.Cancel, err = readInt32(r); err != nil {
		return err
	}
	setCancelCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	d.SetCancel = make([]int32, setCancelCount)
	for i := range d.SetCancel {
		if d.SetCancel[i], err = readInt32(r); err != nil {
			return err
		}
	}
	if d.MinVer, err = readInt32(r); err != nil {
		return err
	}
	if d.MaxVer, err = readInt32(r); err != nil {
		return err
	}
	setSubVerCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	d.SetSubVer = make([]string, setSubVerCount)
	for i := range d.SetSubVer {
		if d.SetSubVer[i], err = ReadVarString(r, 256); err != nil {
			return err
		}
	}
	if d.Priority, err = readInt32(r); err != nil {
		return err
	}
	if d.Comment, err = ReadVarString(r, MaxMessagePayload); err != nil {
		return err
	}
	if d.StatusBar, err = ReadVarString(r, MaxMessagePayload); err != nil {
		return err
	}
	d.Reserved, err = ReadVarString(r, MaxMessagePayload)
	return err
}
