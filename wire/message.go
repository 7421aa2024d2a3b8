// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// CommandSize is the fixed width of the zero-padded ASCII command field.
const CommandSize = 12

// MaxMessagePayload is the maximum bytes a message payload can be,
// regardless of any individual message's own limits.
const MaxMessagePayload = 32 * 1024 * 1024

// BitcoinNet is the magic number identifying a chain's P2P network.
type BitcoinNet uint32

// ProtocolVersion208 is the last protocol version that omits the checksum
// field from the message header.
const ProtocolVersion208 = 208

// BIP0031Version is the last protocol version whose ping carries no nonce;
// the ping nonce and the pong reply belong to versions above it.
const BIP0031Version = 60000

// Commands implemented.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdAddr        = "addr"
	CmdInv         = "inv"
	CmdGetData     = "getdata"
	CmdGetBlocks   = "getblocks"
	CmdGetHeaders  = "getheaders"
	CmdTx          = "tx"
	CmdBlock       = "block"
	CmdHeaders     = "headers"
	CmdGetAddr     = "getaddr"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdAlert       = "alert"
	CmdMemPool     = "mempool"
	CmdMerkleBlock = "merkleblock"
	CmdFilterLoad  = "filterload"
	CmdFilterAdd   = "filteradd"
	CmdFilterClear = "filterclear"
	CmdNotFound    = "notfound"
	CmdReject      = "reject"
)

// Message is implemented by every P2P payload type; Command returns the
// 12-byte-padded wire command that identifies it.
type Message interface {
	Command() string
	BtcEncode(w io.Writer, pver uint32) error
	BtcDecode(r io.Reader, pver uint32) error
}

func toCommand(cmd string) [CommandSize]byte {
	var out [CommandSize]byte
	copy(out[:], cmd)
	return out
}

// makeEmptyMessage allocates a zero-value Message for the given command, so
// the dispatcher can decode into it.
func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdGetHeaders:
		return &MsgGetHeaders{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	case CmdGetAddr:
		return &MsgGetAddr{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdAlert:
		return &MsgAlert{}, nil
	case CmdMemPool:
		return &MsgMemPool{}, nil
	case CmdMerkleBlock:
		return &MsgMerkleBlock{}, nil
	case CmdFilterLoad:
		return &MsgFilterLoad{}, nil
	case CmdFilterAdd:
		return &MsgFilterAdd{}, nil
	case CmdFilterClear:
		return &MsgFilterClear{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdReject:
		return &MsgReject{}, nil
	default:
		return nil, libcoinerr.New(libcoinerr.MalformedMessage, "unhandled command [%s]", command)
	}
}

// messageHeader is the 24/20-byte frame prefix: magic, zero-padded
// command, payload length, and — from protocol version 209 on — a 4-byte
// checksum over the payload.
type messageHeader struct {
	magic    BitcoinNet
	command  string
	length   uint32
	checksum [4]byte
}

// checksum returns the first 4 bytes of SHA-256d(payload).
func checksum(payload []byte) [4]byte {
	var out [4]byte
	copy(out[:], chainhash.DoubleHashB(payload)[:4])
	return out
}

// WriteMessage serialises msg onto w, framed with magic/command/length and
// (for pver >= 209) a checksum.
func WriteMessage(w io.Writer, msg Message, pver uint32, magic BitcoinNet) error {
	var payload bytes.Buffer
	if err := msg.BtcEncode(&payload, pver); err != nil {
		return err
	}
	payloadBytes := payload.Bytes()
	if len(payloadBytes) > MaxMessagePayload {
		return libcoinerr.New(libcoinerr.ProtocolViolation,
			"message payload is too large - encoded %d bytes, but maximum message payload is %d bytes",
			len(payloadBytes), MaxMessagePayload)
	}

	var hdr bytes.Buffer
	if err := binary.Write(&hdr, littleEndian, uint32(magic)); err != nil {
		return err
	}
	cmd := toCommand(msg.Command())
	hdr.Write(cmd[:])
	if err := binary.Write(&hdr, littleEndian, uint32(len(payloadBytes))); err != nil {
		return err
	}
	if pver >= ProtocolVersion208+1 {
		cksum := checksum(payloadBytes)
		hdr.Write(cksum[:])
	}
	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(payloadBytes)
	return err
}

// ReadMessage reads and decodes one framed message from r, verifying magic,
// declared length against MaxMessagePayload, and (for pver >= 209) the
// payload checksum.
func ReadMessage(r io.Reader, pver uint32, magic BitcoinNet) (Message, []byte, error) {
	var rawMagic uint32
	if err := binary.Read(r, littleEndian, &rawMagic); err != nil {
		return nil, nil, err
	}
	if BitcoinNet(rawMagic) != magic {
		return nil, nil, libcoinerr.New(libcoinerr.MalformedMessage,
			"message from another network [%x]", rawMagic)
	}

	var rawCmd [CommandSize]byte
	if _, err := io.ReadFull(r, rawCmd[:]); err != nil {
		return nil, nil, err
	}
	command := commandString(rawCmd)

	var length uint32
	if err := binary.Read(r, littleEndian, &length); err != nil {
		return nil, nil, err
	}
	if length > MaxMessagePayload {
		return nil, nil, libcoinerr.New(libcoinerr.ProtocolViolation,
			"declared payload length %d exceeds max %d", length, MaxMessagePayload)
	}

	var wantChecksum [4]byte
	hasChecksum := pver >= ProtocolVersion208+1
	if hasChecksum {
		if _, err := io.ReadFull(r, wantChecksum[:]); err != nil {
			return nil, nil, err
		}
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, err
		}
	}

	if hasChecksum {
		got := checksum(payload)
		if got != wantChecksum {
			return nil, nil, libcoinerr.New(libcoinerr.MalformedMessage,
				"payload checksum failed - header indicates %x, but actual checksum is %x",
				wantChecksum, got)
		}
	}

	msg, err := makeEmptyMessage(command)
	if err != nil {
		return nil, payload, err
	}
	if err := msg.BtcDecode(bytes.NewReader(payload), pver); err != nil {
		return nil, payload, err
	}
	return msg, payload, nil
}
