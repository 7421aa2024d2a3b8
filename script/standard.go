// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

// IsScriptHash reports whether pkScript is the 23-byte
// OP_HASH160 <20 bytes> OP_EQUAL pay-to-script-hash template.
func IsScriptHash(pkScript []byte) bool {
	return len(pkScript) == 23 &&
		pkScript[0] == OpHash160 &&
		pkScript[1] == 20 &&
		pkScript[22] == OpEqual
}

// IsPubKey reports whether pkScript is a pay-to-pubkey template:
// <pubkey> OP_CHECKSIG.
func IsPubKey(pkScript []byte) bool {
	if len(pkScript) != 35 && len(pkScript) != 67 {
		return false
	}
	return pkScript[len(pkScript)-1] == OpCheckSig &&
		int(pkScript[0]) == len(pkScript)-2
}

// IsPubKeyHash reports whether pkScript is the classic
// OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG template.
func IsPubKeyHash(pkScript []byte) bool {
	return len(pkScript) == 25 &&
		pkScript[0] == OpDup &&
		pkScript[1] == OpHash160 &&
		pkScript[2] == 20 &&
		pkScript[23] == OpEqualVerify &&
		pkScript[24] == OpCheckSig
}

// IsMultiSig reports whether pkScript is an
// OP_m <pubkey>... OP_n OP_CHECKMULTISIG template with 1<=m<=n<=16.
func IsMultiSig(pkScript []byte) bool {
	pops, err := parseScript(pkScript)
	if err != nil || len(pops) < 4 {
		return false
	}
	if pops[len(pops)-1].value != OpCheckMultiSig {
		return false
	}
	n := pops[len(pops)-2].value
	if n < Op1 || n > Op16 {
		return false
	}
	keyCount := int(n - Op1 + 1)
	if len(pops) != keyCount+3 {
		return false
	}
	m := pops[0].value
	if m < Op1 || m > n {
		return false
	}
	for i := 1; i <= keyCount; i++ {
		if pops[i].value != 33 && pops[i].value != 65 {
			return false
		}
	}
	return true
}

// IsNullData reports whether pkScript is an unspendable OP_RETURN data
// carrier, used by the name system to anchor key/value records.
func IsNullData(pkScript []byte) bool {
	return len(pkScript) > 0 && pkScript[0] == OpReturn
}

// ScriptClass names the recognised standard templates.
type ScriptClass int

const (
	NonStandardTy ScriptClass = iota
	PubKeyTy
	PubKeyHashTy
	ScriptHashTy
	MultiSigTy
	NullDataTy
)

// ClassifyScript identifies which standard template, if any, pkScript
// matches.
func ClassifyScript(pkScript []byte) ScriptClass {
	switch {
	case IsPubKey(pkScript):
		return PubKeyTy
	case IsPubKeyHash(pkScript):
		return PubKeyHashTy
	case IsScriptHash(pkScript):
		return ScriptHashTy
	case IsMultiSig(pkScript):
		return MultiSigTy
	case IsNullData(pkScript):
		return NullDataTy
	default:
		return NonStandardTy
	}
}

// IsStandardTx reports whether every output of tx matches a recognised
// template and every input's signature script is push-only and under the
// standardness size bound.
func IsStandardTx(pkScripts [][]byte, sigScripts [][]byte, relayNonStd bool) bool {
	if relayNonStd {
		return true
	}
	for _, pk := range pkScripts {
		if ClassifyScript(pk) == NonStandardTy {
			return false
		}
	}
	for _, sig := range sigScripts {
		if len(sig) > 1650 {
			return false
		}
		pops, err := parseScript(sig)
		if err != nil || !isPushOnly(pops) {
			return false
		}
	}
	return true
}
