// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// opCheckSig implements OP_CHECKSIG: pop a pubkey and a DER-encoded
// signature with trailing SIGHASH byte, compute the signature hash over
// the current script code with that signature's own bytes stripped out,
// and push whether the signature verifies under the pubkey.
func (vm *Engine) opCheckSig() error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	fullSig, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(fullSig) == 0 {
		vm.dstack.PushBool(false)
		return nil
	}
	hashType := SigHashType(fullSig[len(fullSig)-1])
	sigBytes := fullSig[:len(fullSig)-1]

	if vm.hasFlag(FlagVerifyDERSignatures) {
		if err := checkSignatureEncoding(sigBytes); err != nil {
			return err
		}
	}
	if vm.hasFlag(FlagVerifyStrictEncoding) {
		if err := checkPubKeyEncoding(pkBytes); err != nil {
			return err
		}
	}

	scriptCode := subScript(vm.scripts[vm.scriptIdx][vm.lastSeparatorIdx:], fullSig)
	hash, err := CalcSignatureHash(scriptCode, hashType, vm.tx, vm.txIdx)
	if err != nil {
		vm.dstack.PushBool(false)
		return nil
	}

	ok := verifySignature(sigBytes, pkBytes, hash[:])
	vm.dstack.PushBool(ok)
	return nil
}

// opCheckMultiSig implements OP_CHECKMULTISIG over the classic m-of-n
// template, requiring signatures to appear in the same order as their
// corresponding public keys.
func (vm *Engine) opCheckMultiSig() error {
	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	n := int(numKeys.Int32())
	if n < 0 || n > MaxPubKeysPerMultiSig {
		return libcoinerr.New(libcoinerr.InvalidScript, "too many public keys in CHECKMULTISIG: %d", n)
	}
	pubKeys := make([][]byte, n)
	for i := n - 1; i >= 0; i-- {
		pubKeys[i], err = vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	numSigs, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	m := int(numSigs.Int32())
	if m < 0 || m > n {
		return libcoinerr.New(libcoinerr.InvalidScript, "invalid signature count %d for %d keys", m, n)
	}
	sigs := make([][]byte, m)
	for i := m - 1; i >= 0; i-- {
		sigs[i], err = vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	// Historical off-by-one: CHECKMULTISIG consumes one extra stack item.
	if _, err := vm.dstack.PopByteArray(); err != nil {
		return err
	}

	success := true
	sigIdx, keyIdx := 0, 0
	for sigIdx < m && success {
		if keyIdx >= n {
			success = false
			break
		}
		fullSig := sigs[sigIdx]
		if len(fullSig) == 0 {
			keyIdx++
			continue
		}
		hashType := SigHashType(fullSig[len(fullSig)-1])
		sigBytes := fullSig[:len(fullSig)-1]

		scriptCode := subScript(vm.scripts[vm.scriptIdx][vm.lastSeparatorIdx:], fullSig)
		hash, herr := CalcSignatureHash(scriptCode, hashType, vm.tx, vm.txIdx)
		if herr == nil && verifySignature(sigBytes, pubKeys[keyIdx], hash[:]) {
			sigIdx++
		}
		keyIdx++
		if n-keyIdx < m-sigIdx {
			success = false
		}
	}
	if sigIdx < m {
		success = false
	}

	vm.dstack.PushBool(success)
	return nil
}

func verifySignature(sigBytes, pkBytes, hash []byte) bool {
	pubKey, err := btcec.ParsePubKey(pkBytes)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pubKey)
}
