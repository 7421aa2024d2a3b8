// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

// MaxTxInSequenceNum is the default, "final", input sequence number.
const MaxTxInSequenceNum uint32 = 0xffffffff

// defaultTxInOutAlloc bounds the slice pre-allocation so a malicious length
// prefix can't force an outsized allocation before the read fails.
const defaultTxInOutAlloc = 15

// TxIn holds a previous outpoint, the unlocking script, and a sequence
// number.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// TxOut holds a satoshi value and a locking script.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// MsgTx is the transaction model: version, ordered inputs, ordered
// outputs, lock-time. A coinbase is a single input with a null previous
// outpoint.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// Command returns "tx".
func (msg *MsgTx) Command() string { return CmdTx }

// IsCoinBase reports whether msg has the single null-outpoint input that
// marks a coinbase transaction.
func (msg *MsgTx) IsCoinBase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].PreviousOutPoint.IsNull()
}

// TxHash returns SHA-256d of the transaction's canonical serialisation.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.BtcEncode(&buf, 0)
	return chainhash.DoubleHashH(buf.Bytes())
}

// SerializeSize returns the number of bytes msg's wire encoding occupies.
func (msg *MsgTx) SerializeSize() int {
	n := 8 // version + locktime
	n += VarIntSerializeSize(uint64(len(msg.TxIn)))
	for _, ti := range msg.TxIn {
		n += chainhash.HashSize + 4 + 4
		n += VarIntSerializeSize(uint64(len(ti.SignatureScript)))
		n += len(ti.SignatureScript)
	}
	n += VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, to := range msg.TxOut {
		n += 8
		n += VarIntSerializeSize(uint64(len(to.PkScript)))
		n += len(to.PkScript)
	}
	return n
}

// BtcDecode reads the canonical transaction encoding from r.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	version, err := readInt32(r)
	if err != nil {
		return err
	}
	msg.Version = version

	inCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.TxIn = make([]*TxIn, 0, minInt(inCount, defaultTxInOutAlloc))
	for i := uint64(0); i < inCount; i++ {
		ti := &TxIn{}
		if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
			return err
		}
		if ti.SignatureScript, err = ReadVarBytes(r, MaxMessagePayload, "signature script"); err != nil {
			return err
		}
		if ti.Sequence, err = readUint32(r); err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.TxOut = make([]*TxOut, 0, minInt(outCount, defaultTxInOutAlloc))
	for i := uint64(0); i < outCount; i++ {
		to := &TxOut{}
		value, err := readInt64(r)
		if err != nil {
			return err
		}
		to.Value = value
		if to.PkScript, err = ReadVarBytes(r, MaxMessagePayload, "pubkey script"); err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, to)
	}

	msg.LockTime, err = readUint32(r)
	return err
}

// BtcEncode writes the canonical transaction encoding to w.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeInt32(w, msg.Version); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
			return err
		}
		if err := writeUint32(w, ti.Sequence); err != nil {
			return err
		}
	}
	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeInt64(w, to.Value); err != nil {
			return err
		}
		if err := WriteVarBytes(w, to.PkScript); err != nil {
			return err
		}
	}
	return writeUint32(w, msg.LockTime)
}

// Copy returns a deep copy of msg, used when a transaction's scripts are
// mutated for a per-input signature hash digest.
func (msg *MsgTx) Copy() *MsgTx {
	out := &MsgTx{
		Version:  msg.Version,
		LockTime: msg.LockTime,
		TxIn:     make([]*TxIn, len(msg.TxIn)),
		TxOut:    make([]*TxOut, len(msg.TxOut)),
	}
	for i, ti := range msg.TxIn {
		script := make([]byte, len(ti.SignatureScript))
		copy(script, ti.SignatureScript)
		out.TxIn[i] = &TxIn{
			PreviousOutPoint: ti.PreviousOutPoint,
			SignatureScript:  script,
			Sequence:         ti.Sequence,
		}
	}
	for i, to := range msg.TxOut {
		script := make([]byte, len(to.PkScript))
		copy(script, to.PkScript)
		out.TxOut[i] = &TxOut{Value: to.Value, PkScript: script}
	}
	return out
}

func minInt(a uint64, b int) int {
	if a < uint64(b) {
		return int(a)
	}
	return b
}
