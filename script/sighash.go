// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"bytes"
	"encoding/binary"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

// SigHashType selects which parts of the transaction a signature commits to.
// ANYONECANPAY is a modifier bit layered on the three base types.
type SigHashType uint32

const (
	SigHashAll          SigHashType = 1
	SigHashNone         SigHashType = 2
	SigHashSingle       SigHashType = 3
	SigHashAnyOneCanPay SigHashType = 0x80

	sigHashMask = 0x1f
)

// CalcSignatureHash builds the digest that OP_CHECKSIG and
// OP_CHECKMULTISIG sign/verify: all other input scripts blanked, the
// subject input's script replaced by subScript, and the output set
// reshaped according to hashType.
func CalcSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int) (chainhash.Hash, error) {
	if idx >= len(tx.TxIn) {
		return chainhash.Hash{}, errOutOfRangeInput(idx)
	}

	txCopy := tx.Copy()

	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = removeCodeSeparators(subScript)
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	case SigHashSingle:
		if idx >= len(txCopy.TxOut) {
			return chainhash.Hash{}, errOutOfRangeInput(idx)
		}
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	default: // SigHashAll and unknown types behave as SigHashAll.
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = []*wire.TxIn{txCopy.TxIn[idx]}
	}

	var buf bytes.Buffer
	if err := txCopy.BtcEncode(&buf, 0); err != nil {
		return chainhash.Hash{}, err
	}
	var htBuf [4]byte
	binary.LittleEndian.PutUint32(htBuf[:], uint32(hashType))
	buf.Write(htBuf[:])

	return chainhash.DoubleHashH(buf.Bytes()), nil
}

// removeCodeSeparators strips any remaining OP_CODESEPARATOR bytes from an
// already-parsed sub-script serialisation.
func removeCodeSeparators(raw []byte) []byte {
	ops, err := parseScript(raw)
	if err != nil {
		return raw
	}
	return subScript(ops, nil)
}

type outOfRangeInputError int

func (e outOfRangeInputError) Error() string {
	return "signature hash input index out of range"
}

func errOutOfRangeInput(idx int) error { return outOfRangeInputError(idx) }
