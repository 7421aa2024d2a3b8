// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// checkPubKeyEncoding requires the classic compressed or uncompressed SEC1
// encodings under the strict public-key encoding flag.
func checkPubKeyEncoding(pubKey []byte) error {
	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		return nil
	}
	if len(pubKey) == 65 && pubKey[0] == 0x04 {
		return nil
	}
	return libcoinerr.New(libcoinerr.InvalidScript, "unsupported public key encoding")
}

// checkSignatureEncoding requires strict DER encoding and a low-S value
// under the strict DER signature flag (BIP0062 malleability fix).
func checkSignatureEncoding(sig []byte) error {
	if len(sig) < 8 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: too short")
	}
	if len(sig) > 72 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: too long")
	}
	if sig[0] != 0x30 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: wrong type")
	}
	if int(sig[1]) != len(sig)-2 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: bad length")
	}

	rLen := int(sig[3])
	if rLen+5 > len(sig) {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: S out of bounds")
	}
	sLen := int(sig[rLen+5])
	if rLen+sLen+6 != len(sig) {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: invalid R length")
	}
	if sig[2] != 0x02 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: missing R marker")
	}
	if rLen == 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: zero-length R")
	}
	if sig[4]&0x80 != 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: negative R")
	}
	if rLen > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: non-minimal R")
	}
	if sig[rLen+4] != 0x02 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: missing S marker")
	}
	if sLen == 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: zero-length S")
	}
	if sig[rLen+6]&0x80 != 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: negative S")
	}
	if sLen > 1 && sig[rLen+6] == 0x00 && sig[rLen+7]&0x80 == 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "malformed signature: non-minimal S")
	}

	sValue := new(big.Int).SetBytes(sig[rLen+6 : rLen+6+sLen])
	if sValue.Cmp(halfOrder) > 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "signature S value is not low-S canonical")
	}
	return nil
}
