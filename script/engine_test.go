// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

func p2pkhScript(pubKeyHash []byte) []byte {
	s := []byte{OpDup, OpHash160, 20}
	s = append(s, pubKeyHash...)
	s = append(s, OpEqualVerify, OpCheckSig)
	return s
}

func pushData(data []byte) []byte {
	if len(data) <= 75 {
		return append([]byte{byte(len(data))}, data...)
	}
	panic("test helper only supports direct pushes")
}

func buildSpendTx(prevScript []byte) *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0},
			Sequence:         wire.MaxTxInSequenceNum,
		}},
		TxOut: []*wire.TxOut{{
			Value:    4900000000,
			PkScript: prevScript,
		}},
	}
}

func signP2PKH(t *testing.T, priv *btcec.PrivateKey, pkScript []byte, tx *wire.MsgTx, idx int, hashType SigHashType) []byte {
	t.Helper()
	hash, err := CalcSignatureHash(pkScript, hashType, tx, idx)
	if err != nil {
		t.Fatalf("CalcSignatureHash: %v", err)
	}
	sig := ecdsa.Sign(priv, hash[:])
	der := sig.Serialize()
	full := append(der, byte(hashType))
	pub := priv.PubKey().SerializeCompressed()
	return append(pushData(full), pushData(pub)...)
}

func TestP2PKHSigHashAllRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pubKeyHash := chainhash.Hash160(priv.PubKey().SerializeCompressed())
	pkScript := p2pkhScript(pubKeyHash)

	tx := buildSpendTx([]byte{OpReturn})
	tx.TxIn[0].SignatureScript = signP2PKH(t, priv, pkScript, tx, 0, SigHashAll)

	if err := Verify(tx, 0, pkScript, false); err != nil {
		t.Fatalf("expected valid signature to verify, got: %v", err)
	}
}

func TestP2PKHSigHashAllRejectsMutation(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pubKeyHash := chainhash.Hash160(priv.PubKey().SerializeCompressed())
	pkScript := p2pkhScript(pubKeyHash)

	tx := buildSpendTx([]byte{OpReturn})
	tx.TxIn[0].SignatureScript = signP2PKH(t, priv, pkScript, tx, 0, SigHashAll)

	// Mutate a byte covered by SIGHASH_ALL.
	tx.TxOut[0].Value--

	if err := Verify(tx, 0, pkScript, false); err == nil {
		t.Fatal("mutated SIGHASH_ALL transaction should fail verification")
	}
}

func TestP2PKHSigHashSingleIgnoresOtherOutputs(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pubKeyHash := chainhash.Hash160(priv.PubKey().SerializeCompressed())
	pkScript := p2pkhScript(pubKeyHash)

	tx := buildSpendTx([]byte{OpReturn})
	tx.TxOut = append(tx.TxOut, &wire.TxOut{Value: 100, PkScript: []byte{OpReturn}})
	tx.TxIn[0].SignatureScript = signP2PKH(t, priv, pkScript, tx, 0, SigHashSingle)

	// Changing the paired (index 0) output must invalidate the signature.
	mutated := *tx
	mutated.TxOut = append([]*wire.TxOut{{Value: tx.TxOut[0].Value - 1, PkScript: tx.TxOut[0].PkScript}}, tx.TxOut[1:]...)
	if err := Verify(&mutated, 0, pkScript, false); err == nil {
		t.Fatal("mutating the paired output under SIGHASH_SINGLE should invalidate the signature")
	}

	// Changing an unpaired output must not.
	mutated2 := *tx
	mutated2.TxOut = append([]*wire.TxOut{tx.TxOut[0]}, &wire.TxOut{Value: 1, PkScript: []byte{OpReturn}})
	if err := Verify(&mutated2, 0, pkScript, false); err != nil {
		t.Fatalf("mutating an unpaired output under SIGHASH_SINGLE should not invalidate the signature: %v", err)
	}
}

func TestP2SHRedeemScriptMustMatchHash(t *testing.T) {
	redeem := []byte{Op1, OpDrop, Op1}
	hash := chainhash.Hash160(redeem)
	pkScript := append([]byte{OpHash160, 20}, hash...)
	pkScript = append(pkScript, OpEqual)

	tx := buildSpendTx([]byte{OpReturn})
	tx.TxIn[0].SignatureScript = pushData(redeem)

	if err := Verify(tx, 0, pkScript, true); err != nil {
		t.Fatalf("valid P2SH redeem script should verify: %v", err)
	}

	tx.TxIn[0].SignatureScript = pushData([]byte{Op1, OpDrop, Op0})
	if err := Verify(tx, 0, pkScript, true); err == nil {
		t.Fatal("mismatched redeem script hash should fail verification")
	}
}

func TestDisabledOpcodeFails(t *testing.T) {
	pkScript := []byte{OpCat}
	tx := buildSpendTx([]byte{OpReturn})
	tx.TxIn[0].SignatureScript = []byte{Op1, Op1}
	if err := Verify(tx, 0, pkScript, false); err == nil {
		t.Fatal("disabled opcode OP_CAT should fail the script")
	}
}

func TestIsMultiSigRecognisesTwoOfThree(t *testing.T) {
	script := []byte{Op1 + 1} // OP_2
	for i := 0; i < 3; i++ {
		key := make([]byte, 33)
		key[0] = 0x02
		script = append(script, 33)
		script = append(script, key...)
	}
	script = append(script, Op1+2, OpCheckMultiSig) // OP_3 OP_CHECKMULTISIG
	if !IsMultiSig(script) {
		t.Fatal("expected 2-of-3 template to be recognised as multisig")
	}
}
