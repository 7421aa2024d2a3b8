// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"io"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
)

// ImportBlockFile reads a bootstrap.dat-style stream from r — a sequence
// of <network magic uint32 LE><block length uint32 LE><serialized block>
// records — and appends each block in file order, skipping blocks already
// known and stopping at the first genuinely invalid one. It returns the
// count of blocks it successfully appended.
func (bc *BlockChain) ImportBlockFile(r io.Reader) (int, error) {
	imported := 0
	for {
		var magic uint32
		if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
			if err == io.EOF {
				return imported, nil
			}
			return imported, libcoinerr.Wrap(libcoinerr.MalformedMessage, err, "reading bootstrap record magic")
		}
		if wire.BitcoinNet(magic) != bc.cfg.Params.Net {
			return imported, libcoinerr.New(libcoinerr.ProtocolViolation,
				"bootstrap file network magic %08x does not match %08x", magic, uint32(bc.cfg.Params.Net))
		}

		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return imported, libcoinerr.Wrap(libcoinerr.MalformedMessage, err, "reading bootstrap record length")
		}
		if length > wire.MaxMessagePayload {
			return imported, libcoinerr.New(libcoinerr.MalformedMessage,
				"bootstrap record of %d bytes exceeds the maximum message size", length)
		}

		raw := make([]byte, length)
		if _, err := io.ReadFull(r, raw); err != nil {
			return imported, libcoinerr.Wrap(libcoinerr.MalformedMessage, err, "reading bootstrap record body")
		}

		blk, err := decodeBlock(raw)
		if err != nil {
			return imported, err
		}
		if bc.HaveBlock(blk.BlockHash()) {
			continue
		}
		if err := bc.Append(blk); err != nil {
			if libcoinerr.Is(err, libcoinerr.Reject) {
				continue
			}
			return imported, err
		}
		imported++
	}
}
