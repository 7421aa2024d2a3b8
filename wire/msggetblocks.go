// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// MaxBlockLocatorsPerMsg bounds the number of locator hashes a
// getblocks/getheaders message may carry.
const MaxBlockLocatorsPerMsg = 500

func readLocatorHashes(r io.Reader) ([]*chainhash.Hash, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > MaxBlockLocatorsPerMsg {
		return nil, libcoinerr.New(libcoinerr.ProtocolViolation,
			"too many block locator hashes [count %d, max %d]", count, MaxBlockLocatorsPerMsg)
	}
	out := make([]*chainhash.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		h := &chainhash.Hash{}
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func writeLocatorHashes(w io.Writer, hashes []*chainhash.Hash) error {
	if len(hashes) > MaxBlockLocatorsPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation,
			"too many block locator hashes [count %d, max %d]", len(hashes), MaxBlockLocatorsPerMsg)
	}
	if err := WriteVarInt(w, uint64(len(hashes))); err != nil {
		return err
	}
	for _, h := range hashes {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	return nil
}

// MsgGetBlocks requests block inventory along a locator, stopping at
// HashStop (or the tip, if HashStop is zero).
type MsgGetBlocks struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

// Command returns "getblocks".
func (msg *MsgGetBlocks) Command() string { return CmdGetBlocks }

// BtcDecode reads a getblocks message from r.
func (msg *MsgGetBlocks) BtcDecode(r io.Reader, pver uint32) error {
	v, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = v
	if msg.BlockLocatorHashes, err = readLocatorHashes(r); err != nil {
		return err
	}
	_, err = io.ReadFull(r, msg.HashStop[:])
	return err
}

// BtcEncode writes a getblocks message to w.
func (msg *MsgGetBlocks) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeUint32(w, msg.ProtocolVersion); err != nil {
		return err
	}
	if err := writeLocatorHashes(w, msg.BlockLocatorHashes); err != nil {
		return err
	}
	_, err := w.Write(msg.HashStop[:])
	return err
}

// MsgGetHeaders requests headers-only inventory along a locator.
type MsgGetHeaders struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

// Command returns "getheaders".
func (msg *MsgGetHeaders) Command() string { return CmdGetHeaders }

// BtcDecode reads a getheaders message from r.
func (msg *MsgGetHeaders) BtcDecode(r io.Reader, pver uint32) error {
	v, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = v
	if msg.BlockLocatorHashes, err = readLocatorHashes(r); err != nil {
		return err
	}
	_, err = io.ReadFull(r, msg.HashStop[:])
	return err
}

// BtcEncode writes a getheaders message to w.
func (msg *MsgGetHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeUint32(w, msg.ProtocolVersion); err != nil {
		return err
	}
	if err := writeLocatorHashes(w, msg.BlockLocatorHashes); err != nil {
		return err
	}
	_, err := w.Write(msg.HashStop[:])
	return err
}

// MaxHeadersPerMsg bounds the number of headers a headers message may
// carry.
const MaxHeadersPerMsg = 2000

// MsgHeaders carries a batch of bare block headers.
type MsgHeaders struct{ Headers []*BlockHeader }

// Command returns "headers".
func (msg *MsgHeaders) Command() string { return CmdHeaders }

// AddBlockHeader appends h, rejecting the add once MaxHeadersPerMsg is
// reached.
func (msg *MsgHeaders) AddBlockHeader(h *BlockHeader) error {
	if len(msg.Headers)+1 > MaxHeadersPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation, "headers message exceeds max of %d entries", MaxHeadersPerMsg)
	}
	msg.Headers = append(msg.Headers, h)
	return nil
}

// BtcDecode reads a headers message from r.
func (msg *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxHeadersPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation, "too many headers [count %d, max %d]", count, MaxHeadersPerMsg)
	}
	msg.Headers = make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		h := &BlockHeader{}
		if err := h.BtcDecode(r, pver); err != nil {
			return err
		}
		// headers messages embed a trailing zero txn-count byte per
		// the historical wire format.
		if _, err := ReadVarInt(r); err != nil {
			return err
		}
		msg.Headers = append(msg.Headers, h)
	}
	return nil
}

// BtcEncode writes a headers message to w.
func (msg *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Headers) > MaxHeadersPerMsg {
		return libcoinerr.New(libcoinerr.ProtocolViolation, "too many headers [count %d, max %d]", len(msg.Headers), MaxHeadersPerMsg)
	}
	if err := WriteVarInt(w, uint64(len(msg.Headers))); err != nil {
		return err
	}
	for _, h := range msg.Headers {
		if err := h.BtcEncode(w, pver); err != nil {
			return err
		}
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}
	return nil
}
