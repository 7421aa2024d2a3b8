// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestWriteReadMessageRoundTrip(t *testing.T) {
	msg := &MsgVerAck{}
	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg, ProtocolVersion208+1, 0xd9b4bef9); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	got, _, err := ReadMessage(bytes.NewReader(buf.Bytes()), ProtocolVersion208+1, 0xd9b4bef9)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if got.Command() != CmdVerAck {
		t.Fatalf("unexpected command: %s", spew.Sdump(got))
	}
}

// TestChecksumRejectsTamperedPayload: flipping one payload bit
// must cause the checksum to be rejected.
func TestChecksumRejectsTamperedPayload(t *testing.T) {
	msg := &MsgPing{Nonce: 42}
	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg, BIP0031Version+1, 0xd9b4bef9); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	raw := buf.Bytes()
	// Flip one bit of the first payload byte (right after the 24-byte header).
	raw[24] ^= 0x01
	if _, _, err := ReadMessage(bytes.NewReader(raw), BIP0031Version+1, 0xd9b4bef9); err == nil {
		t.Fatal("expected checksum failure after tampering with payload")
	}
}

// TestReadMessageRejectsOversizeLength: a declared length
// exceeding MaxMessagePayload must be rejected before any payload read.
func TestReadMessageRejectsOversizeLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xf9, 0xbe, 0xb4, 0xd9}) // magic
	cmd := toCommand(CmdPing)
	buf.Write(cmd[:])
	writeUint32(&buf, MaxMessagePayload+1)
	if _, _, err := ReadMessage(bytes.NewReader(buf.Bytes()), BIP0031Version+1, 0xd9b4bef9); err == nil {
		t.Fatal("expected rejection of oversize declared payload length")
	}
}

func TestTxHashChangesWithContent(t *testing.T) {
	tx := &MsgTx{
		Version: 1,
		TxIn: []*TxIn{{
			PreviousOutPoint: OutPoint{Index: 0xffffffff},
			SignatureScript:  []byte{0x00},
			Sequence:         MaxTxInSequenceNum,
		}},
		TxOut: []*TxOut{{Value: 5000000000, PkScript: []byte{0x76, 0xa9}}},
	}
	h1 := tx.TxHash()
	tx.TxOut[0].Value--
	h2 := tx.TxHash()
	if h1 == h2 {
		t.Fatal("mutating output value should change the transaction hash")
	}
	if !tx.IsCoinBase() {
		t.Fatal("single null-outpoint input should be recognised as coinbase")
	}
}
