// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

// BlockHeaderLen is the number of bytes in a serialised BlockHeader:
// version(4) + prev-hash(32) + merkle-root(32) + time(4) + bits(4) + nonce(4).
const BlockHeaderLen = 80

// BlockVersion3 is the coinbase-commits-UTXO-root block version.
const BlockVersion3 = 3

// BlockHeader is the 80-byte wire-format block header. Hash() is SHA-256d of
// this serialisation.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32

	// AuxPow carries the merge-mining appendix when Version has the
	// auxpow flag bit set. It is not part of the 80-byte
	// hashed header.
	AuxPow *AuxProofOfWork
}

// VersionAuxPowBit marks a header as carrying an AuxProofOfWork appendix.
const VersionAuxPowBit = 1 << 8

// HasAuxPow reports whether the header's version flags an AuxPow appendix.
func (h *BlockHeader) HasAuxPow() bool {
	return uint32(h.Version)&VersionAuxPowBit != 0
}

// BtcDecode reads the 80-byte header from r, then the AuxPow appendix if
// HasAuxPow() holds.
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	v, err := readInt32(r)
	if err != nil {
		return err
	}
	h.Version = v
	if _, err := io.ReadFull(r, h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.MerkleRoot[:]); err != nil {
		return err
	}
	if h.Timestamp, err = readUint32(r); err != nil {
		return err
	}
	if h.Bits, err = readUint32(r); err != nil {
		return err
	}
	if h.Nonce, err = readUint32(r); err != nil {
		return err
	}
	if h.HasAuxPow() {
		h.AuxPow = &AuxProofOfWork{}
		if err := h.AuxPow.BtcDecode(r, pver); err != nil {
			return err
		}
	}
	return nil
}

// btcEncode writes the 80-byte header to w, followed by the AuxPow appendix
// when present. serializeHashed, when true, omits the AuxPow so callers can
// compute Hash() over exactly the 80 consensus bytes.
func (h *BlockHeader) btcEncode(w io.Writer, pver uint32, serializeHashed bool) error {
	if err := writeInt32(w, h.Version); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := writeUint32(w, h.Timestamp); err != nil {
		return err
	}
	if err := writeUint32(w, h.Bits); err != nil {
		return err
	}
	if err := writeUint32(w, h.Nonce); err != nil {
		return err
	}
	if !serializeHashed && h.HasAuxPow() && h.AuxPow != nil {
		return h.AuxPow.BtcEncode(w, pver)
	}
	return nil
}

// BtcEncode writes the header (and AuxPow appendix, if any) to w.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	return h.btcEncode(w, pver, false)
}

// Hash returns SHA-256d of exactly the 80 consensus-hashed bytes, excluding
// any AuxPow appendix.
func (h *BlockHeader) Hash() chainhash.Hash {
	var buf [BlockHeaderLen]byte
	w := &fixedWriter{buf: buf[:0]}
	_ = h.btcEncode(w, 0, true)
	return chainhash.DoubleHashH(w.buf)
}

// fixedWriter is a zero-allocation io.Writer backed by a stack buffer.
type fixedWriter struct{ buf []byte }

func (fw *fixedWriter) Write(p []byte) (int, error) {
	fw.buf = append(fw.buf, p...)
	return len(p), nil
}

// AuxProofOfWork is the appendix attached to merge-mined headers.
// It proves that a parent-chain block's proof of work covers this header.
type AuxProofOfWork struct {
	ParentCoinbase    []byte
	ParentBlockHash   chainhash.Hash
	CoinbaseBranch    [][]byte
	CoinbaseBranchIdx uint32
	BlockchainBranch  [][]byte
	BlockchainIdx     uint32
	ParentBlockHeader BlockHeader
}

// BtcDecode reads an AuxProofOfWork from r.
func (a *AuxProofOfWork) BtcDecode(r io.Reader, pver uint32) error {
	var err error
	if a.ParentCoinbase, err = ReadVarBytes(r, MaxMessagePayload, "auxpow coinbase"); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, a.ParentBlockHash[:]); err != nil {
		return err
	}
	if a.CoinbaseBranch, err = readMerkleBranch(r); err != nil {
		return err
	}
	if a.CoinbaseBranchIdx, err = readUint32(r); err != nil {
		return err
	}
	if a.BlockchainBranch, err = readMerkleBranch(r); err != nil {
		return err
	}
	if a.BlockchainIdx, err = readUint32(r); err != nil {
		return err
	}
	return a.ParentBlockHeader.BtcDecode(r, pver)
}

// BtcEncode writes an AuxProofOfWork to w.
func (a *AuxProofOfWork) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarBytes(w, a.ParentCoinbase); err != nil {
		return err
	}
	if _, err := w.Write(a.ParentBlockHash[:]); err != nil {
		return err
	}
	if err := writeMerkleBranch(w, a.CoinbaseBranch); err != nil {
		return err
	}
	if err := writeUint32(w, a.CoinbaseBranchIdx); err != nil {
		return err
	}
	if err := writeMerkleBranch(w, a.BlockchainBranch); err != nil {
		return err
	}
	if err := writeUint32(w, a.BlockchainIdx); err != nil {
		return err
	}
	return a.ParentBlockHeader.BtcEncode(w, pver)
}

func readMerkleBranch(r io.Reader) ([][]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, count)
	for i := range out {
		h := make([]byte, chainhash.HashSize)
		if _, err := io.ReadFull(r, h); err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func writeMerkleBranch(w io.Writer, branch [][]byte) error {
	if err := WriteVarInt(w, uint64(len(branch))); err != nil {
		return err
	}
	for _, h := range branch {
		if _, err := w.Write(h); err != nil {
			return err
		}
	}
	return nil
}
