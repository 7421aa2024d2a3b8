// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/libcoin/libcoin-sub001/libcoinerr"
)

// defaultScriptNumLen caps arithmetic opcode operands at 4 bytes.
const defaultScriptNumLen = 4

// scriptNum represents the numeric type used by Script's arithmetic
// opcodes: little-endian, sign-magnitude, and strictly minimally encoded
// when read back off the stack.
type scriptNum int64

// Bytes serialises n in the minimal little-endian sign-magnitude form
// Script opcodes push back onto the stack.
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	if isNegative {
		n = -n
	}

	result := make([]byte, 0, 9)
	for n > 0 {
		result = append(result, byte(n&0xff))
		n >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		extra := byte(0)
		if isNegative {
			extra = 0x80
		}
		result = append(result, extra)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}
	return result
}

// Int32 clamps n to the int32 range script opcodes that consume a count
// (loop bound, multisig key count) operate in.
func (n scriptNum) Int32() int32 {
	if n > 1<<31-1 {
		return 1<<31 - 1
	}
	if n < -(1 << 31) {
		return -(1 << 31)
	}
	return int32(n)
}

// makeScriptNum interprets the bytes popped off the stack as a scriptNum,
// enforcing the 4-byte operand cap and (when requireMinimal holds) the
// canonical minimal-encoding rule.
func makeScriptNum(so []byte, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	if len(so) > scriptNumLen {
		return 0, libcoinerr.New(libcoinerr.InvalidScript,
			"numeric value encoded as %d bytes exceeds max of %d bytes",
			len(so), scriptNumLen)
	}

	if requireMinimal && len(so) > 0 {
		if so[len(so)-1]&0x7f == 0 {
			if len(so) == 1 || so[len(so)-2]&0x80 == 0 {
				return 0, libcoinerr.New(libcoinerr.InvalidScript,
					"numeric value encoding is not minimally encoded")
			}
		}
	}

	if len(so) == 0 {
		return 0, nil
	}

	var result int64
	for i, b := range so {
		result |= int64(b) << uint8(8*i)
	}

	if so[len(so)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint8(8*(len(so)-1)))
		return scriptNum(-result), nil
	}
	return scriptNum(result), nil
}
