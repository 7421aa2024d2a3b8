// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// Opcode values used by the evaluator and the standard-template
// recognisers. Only the subset actually reachable by a consensus
// script needs a named constant; the rest are handled generically by
// value range in parseScript.
const (
	Op0                   = 0x00
	OpPushData1           = 0x4c
	OpPushData2           = 0x4d
	OpPushData4           = 0x4e
	Op1Negate             = 0x4f
	OpReserved            = 0x50
	Op1                   = 0x51
	Op16                  = 0x60
	OpNop                 = 0x61
	OpIf                  = 0x63
	OpNotIf               = 0x64
	OpElse                = 0x67
	OpEndIf               = 0x68
	OpVerify              = 0x69
	OpReturn              = 0x6a
	OpToAltStack          = 0x6b
	OpFromAltStack        = 0x6c
	Op2Drop               = 0x6d
	Op2Dup                = 0x6e
	Op3Dup                = 0x6f
	Op2Over               = 0x70
	Op2Rot                = 0x71
	Op2Swap               = 0x72
	OpIfDup               = 0x73
	OpDepth                = 0x74
	OpDrop                = 0x75
	OpDup                 = 0x76
	OpNip                 = 0x77
	OpOver                = 0x78
	OpPick                = 0x79
	OpRoll                = 0x7a
	OpRot                 = 0x7b
	OpSwap                = 0x7c
	OpTuck                = 0x7d
	OpCat                 = 0x7e
	OpSubstr              = 0x7f
	OpLeft                = 0x80
	OpRight               = 0x81
	OpSize                = 0x82
	OpInvert              = 0x83
	OpAnd                 = 0x84
	OpOr                  = 0x85
	OpXor                 = 0x86
	OpEqual               = 0x87
	OpEqualVerify         = 0x88
	Op1Add                = 0x8b
	Op1Sub                = 0x8c
	Op2Mul                = 0x8d
	Op2Div                = 0x8e
	OpNegate              = 0x8f
	OpAbs                 = 0x90
	OpNot                 = 0x91
	Op0NotEqual           = 0x92
	OpAdd                 = 0x93
	OpSub                 = 0x94
	OpMul                 = 0x95
	OpDiv                 = 0x96
	OpMod                 = 0x97
	OpLShift              = 0x98
	OpRShift              = 0x99
	OpBoolAnd             = 0x9a
	OpBoolOr              = 0x9b
	OpNumEqual            = 0x9c
	OpNumEqualVerify      = 0x9d
	OpNumNotEqual         = 0x9e
	OpLessThan            = 0x9f
	OpGreaterThan         = 0xa0
	OpLessThanOrEqual     = 0xa1
	OpGreaterThanOrEqual  = 0xa2
	OpMin                 = 0xa3
	OpMax                 = 0xa4
	OpWithin              = 0xa5
	OpRipeMD160           = 0xa6
	OpSha1                = 0xa7
	OpSha256              = 0xa8
	OpHash160             = 0xa9
	OpHash256             = 0xaa
	OpCodeSeparator       = 0xab
	OpCheckSig            = 0xac
	OpCheckSigVerify      = 0xad
	OpCheckMultiSig       = 0xae
	OpCheckMultiSigVerify = 0xaf
	OpNop1                = 0xb0
	OpNop10               = 0xb9
)

// disabledOpcodes are illegal to execute even outside a conditional branch
// and must fail the engine outright.
var disabledOpcodes = map[byte]bool{
	OpCat: true, OpSubstr: true, OpLeft: true, OpRight: true,
	OpInvert: true, OpAnd: true, OpOr: true, OpXor: true,
	Op2Mul: true, Op2Div: true, OpMul: true, OpDiv: true,
	OpMod: true, OpLShift: true, OpRShift: true,
}

type parsedOpcode struct {
	value byte
	data  []byte
}

func (pop *parsedOpcode) isDisabled() bool {
	return disabledOpcodes[pop.value]
}

func (pop *parsedOpcode) isConditional() bool {
	switch pop.value {
	case OpIf, OpNotIf, OpElse, OpEndIf:
		return true
	}
	return false
}

func (pop *parsedOpcode) isPush() bool {
	return pop.value <= OpPushData4
}

// parseScript decomposes raw into parsedOpcode values, enforcing the
// 520-byte push-element limit as it walks the bytecode.
func parseScript(raw []byte) ([]parsedOpcode, error) {
	var pops []parsedOpcode
	for i := 0; i < len(raw); {
		op := raw[i]
		pop := parsedOpcode{value: op}
		i++

		switch {
		case op < OpPushData1 && op > Op0:
			if i+int(op) > len(raw) {
				return nil, libcoinerr.New(libcoinerr.InvalidScript, "opcode %x requires %d bytes, script has %d remaining", op, op, len(raw)-i)
			}
			pop.data = raw[i : i+int(op)]
			i += int(op)
		case op == OpPushData1:
			if i >= len(raw) {
				return nil, libcoinerr.New(libcoinerr.InvalidScript, "OP_PUSHDATA1 missing length byte")
			}
			n := int(raw[i])
			i++
			if i+n > len(raw) {
				return nil, libcoinerr.New(libcoinerr.InvalidScript, "OP_PUSHDATA1 length exceeds script")
			}
			pop.data = raw[i : i+n]
			i += n
		case op == OpPushData2:
			if i+2 > len(raw) {
				return nil, libcoinerr.New(libcoinerr.InvalidScript, "OP_PUSHDATA2 missing length bytes")
			}
			n := int(raw[i]) | int(raw[i+1])<<8
			i += 2
			if i+n > len(raw) {
				return nil, libcoinerr.New(libcoinerr.InvalidScript, "OP_PUSHDATA2 length exceeds script")
			}
			pop.data = raw[i : i+n]
			i += n
		case op == OpPushData4:
			if i+4 > len(raw) {
				return nil, libcoinerr.New(libcoinerr.InvalidScript, "OP_PUSHDATA4 missing length bytes")
			}
			n := int(raw[i]) | int(raw[i+1])<<8 | int(raw[i+2])<<16 | int(raw[i+3])<<24
			i += 4
			if i+n > len(raw) {
				return nil, libcoinerr.New(libcoinerr.InvalidScript, "OP_PUSHDATA4 length exceeds script")
			}
			pop.data = raw[i : i+n]
			i += n
		}

		if len(pop.data) > MaxScriptElementSize {
			return nil, libcoinerr.New(libcoinerr.InvalidScript, "element size %d exceeds max allowed size %d", len(pop.data), MaxScriptElementSize)
		}
		pops = append(pops, pop)
	}
	return pops, nil
}

func isPushOnly(pops []parsedOpcode) bool {
	for _, pop := range pops {
		if pop.value > Op16 {
			return false
		}
	}
	return true
}

// checkMinimalDataPush enforces the canonical-push rule: a push opcode must
// use the shortest encoding capable of representing its data.
func (pop *parsedOpcode) checkMinimalDataPush() error {
	data := pop.data
	op := pop.value
	dataLen := len(data)

	if dataLen == 0 && op != Op0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "zero length data push not using OP_0")
	} else if dataLen == 1 && data[0] >= 1 && data[0] <= 16 {
		if op != Op1+byte(data[0]-1) {
			return libcoinerr.New(libcoinerr.InvalidScript, "single byte push of value %d not using OP_%d", data[0], data[0])
		}
	} else if dataLen == 1 && data[0] == 0x81 {
		if op != Op1Negate {
			return libcoinerr.New(libcoinerr.InvalidScript, "single byte push of 0x81 not using OP_1NEGATE")
		}
	} else if dataLen <= 75 {
		if int(op) != dataLen {
			return libcoinerr.New(libcoinerr.InvalidScript, "data push of %d bytes not using direct push", dataLen)
		}
	} else if dataLen <= 255 {
		if op != OpPushData1 {
			return libcoinerr.New(libcoinerr.InvalidScript, "data push of %d bytes not using OP_PUSHDATA1", dataLen)
		}
	} else if dataLen <= 65535 {
		if op != OpPushData2 {
			return libcoinerr.New(libcoinerr.InvalidScript, "data push of %d bytes not using OP_PUSHDATA2", dataLen)
		}
	}
	return nil
}

// hash helpers used by OP_RIPEMD160/OP_SHA1/OP_SHA256/OP_HASH160/OP_HASH256.
func calcHash160(b []byte) []byte { return chainhash.Hash160(b) }
func calcHash256(b []byte) []byte { return chainhash.DoubleHashB(b) }
