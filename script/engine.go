// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package script implements the script stack machine:
// the opcode evaluator, SIGHASH digest construction, P2SH re-evaluation,
// and the standard-transaction template recognisers.
package script

import (
	"crypto/sha1"
	"crypto/sha256"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/wire"
	"golang.org/x/crypto/ripemd160"
)

// Flags modify engine behaviour beyond the consensus-mandatory rules.
type Flags uint32

const (
	// FlagNone runs the engine with no additional checks.
	FlagNone Flags = 0
	// FlagVerifyDERSignatures requires strict DER + low-S signature encoding.
	FlagVerifyDERSignatures Flags = 1 << 0
	// FlagVerifyStrictEncoding requires strict public key encoding.
	FlagVerifyStrictEncoding Flags = 1 << 1
	// FlagVerifyMinimalData requires canonical (shortest) data pushes.
	FlagVerifyMinimalData Flags = 1 << 2
	// FlagVerifyCleanStack requires nothing but the boolean result remain
	// on the stack after the P2SH sub-script, when P2SH is engaged.
	FlagVerifyCleanStack Flags = 1 << 3
)

// Per-script resource bounds.
const (
	MaxOpsPerScript      = 201
	MaxScriptElementSize = 520
	MaxStackSize         = 1000
	MaxPubKeysPerMultiSig = 20
	MaxScriptSize        = 10000
)

const condTrue = 1
const condFalse = 0
const condSkip = 2

// Engine is the virtual machine that executes a signature script against a
// previous output script for one transaction input.
type Engine struct {
	scripts   [][]parsedOpcode
	scriptIdx int
	scriptOff int
	dstack    stack
	astack    stack
	tx        *wire.MsgTx
	txIdx     int
	condStack []int
	numOps    int
	flags     Flags
	isP2SH    bool
	savedFirstStack [][]byte
	lastSeparatorIdx int // offset into the current script following the most recent OP_CODESEPARATOR
}

func (vm *Engine) hasFlag(f Flags) bool { return vm.flags&f == f }

func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == condTrue
}

// NewEngine builds an engine ready to verify scriptSig against
// scriptPubKey for tx.TxIn[txIdx].
func NewEngine(scriptPubKey []byte, tx *wire.MsgTx, txIdx int, flags Flags) (*Engine, error) {
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		return nil, libcoinerr.New(libcoinerr.InvalidScript, "input index %d out of range", txIdx)
	}
	scriptSig := tx.TxIn[txIdx].SignatureScript

	if len(scriptSig) == 0 && len(scriptPubKey) == 0 {
		return nil, libcoinerr.New(libcoinerr.InvalidScript, "empty signature and public key scripts")
	}
	if len(scriptSig) > MaxScriptSize || len(scriptPubKey) > MaxScriptSize {
		return nil, libcoinerr.New(libcoinerr.InvalidScript, "script exceeds max size %d", MaxScriptSize)
	}

	vm := &Engine{flags: flags, tx: tx, txIdx: txIdx}

	sigPops, err := parseScript(scriptSig)
	if err != nil {
		return nil, err
	}
	if !isPushOnly(sigPops) {
		return nil, libcoinerr.New(libcoinerr.InvalidScript, "signature script is not push only")
	}

	pkPops, err := parseScript(scriptPubKey)
	if err != nil {
		return nil, err
	}

	vm.scripts = [][]parsedOpcode{sigPops, pkPops}
	if len(scriptSig) == 0 {
		vm.scriptIdx++
	}

	if IsScriptHash(scriptPubKey) {
		if !isPushOnly(sigPops) {
			return nil, libcoinerr.New(libcoinerr.InvalidScript, "pay-to-script-hash input is not push only")
		}
		vm.isP2SH = true
	}

	return vm, nil
}

// Execute runs the engine to completion and reports whether the script
// pair verifies.
func (vm *Engine) Execute() error {
	done := false
	var err error
	for !done {
		done, err = vm.Step()
		if err != nil {
			return err
		}
	}
	return vm.checkErrorCondition(true)
}

func (vm *Engine) checkErrorCondition(finalScript bool) error {
	if vm.scriptIdx < len(vm.scripts) {
		return libcoinerr.New(libcoinerr.InvalidScript, "script execution incomplete")
	}
	if finalScript && vm.hasFlag(FlagVerifyCleanStack) && vm.dstack.Depth() != 1 {
		return libcoinerr.New(libcoinerr.InvalidScript, "stack contains %d unexpected items after execution", vm.dstack.Depth()-1)
	}
	if vm.dstack.Depth() < 1 {
		return libcoinerr.New(libcoinerr.InvalidScript, "stack empty at end of script execution")
	}
	v, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return libcoinerr.New(libcoinerr.InvalidScript, "false stack entry at end of script execution")
	}
	return nil
}

// Step executes the next opcode and reports whether execution has
// finished. It implements the pay-to-script-hash hand-off: once the
// signature and public-key scripts both succeed and the public-key script
// is the 23-byte HASH160-equal template, the last data push of the
// signature script is parsed and re-evaluated as a third script.
func (vm *Engine) Step() (bool, error) {
	if vm.scriptIdx >= len(vm.scripts) {
		return true, libcoinerr.New(libcoinerr.InvalidScript, "program counter past end of scripts")
	}
	if vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
		return true, libcoinerr.New(libcoinerr.InvalidScript, "program counter past end of script")
	}

	opcode := vm.scripts[vm.scriptIdx][vm.scriptOff]
	vm.scriptOff++

	if err := vm.executeOpcode(&opcode); err != nil {
		return true, err
	}

	if vm.dstack.Depth()+vm.astack.Depth() > MaxStackSize {
		return true, libcoinerr.New(libcoinerr.InvalidScript, "combined stack size exceeds max of %d", MaxStackSize)
	}

	if vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
		if len(vm.condStack) != 0 {
			return true, libcoinerr.New(libcoinerr.InvalidScript, "end of script reached in conditional execution")
		}

		_ = vm.astack.DropN(vm.astack.Depth())
		vm.numOps = 0
		vm.scriptOff = 0
		vm.lastSeparatorIdx = 0

		switch {
		case vm.scriptIdx == 0 && vm.isP2SH:
			vm.scriptIdx++
			vm.savedFirstStack = append([][]byte(nil), getStack(&vm.dstack)...)
		case vm.scriptIdx == 1 && vm.isP2SH:
			vm.scriptIdx++
			if err := vm.checkErrorCondition(false); err != nil {
				return true, err
			}
			redeemScript := vm.savedFirstStack[len(vm.savedFirstStack)-1]
			pops, err := parseScript(redeemScript)
			if err != nil {
				return true, err
			}
			vm.scripts = append(vm.scripts, pops)
			setStack(&vm.dstack, vm.savedFirstStack[:len(vm.savedFirstStack)-1])
		default:
			vm.scriptIdx++
		}

		if vm.scriptIdx < len(vm.scripts) && len(vm.scripts[vm.scriptIdx]) == 0 {
			vm.scriptIdx++
		}
		if vm.scriptIdx >= len(vm.scripts) {
			return true, nil
		}
	}
	return false, nil
}

func getStack(s *stack) [][]byte {
	out := make([][]byte, s.Depth())
	for i := range out {
		out[len(out)-i-1], _ = s.PeekByteArray(int32(i))
	}
	return out
}

func setStack(s *stack, data [][]byte) {
	_ = s.DropN(s.Depth())
	for _, d := range data {
		s.PushByteArray(d)
	}
}

func (vm *Engine) executeOpcode(pop *parsedOpcode) error {
	if pop.isDisabled() {
		return libcoinerr.New(libcoinerr.InvalidScript, "disabled opcode 0x%02x", pop.value)
	}

	if pop.value > Op16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			return libcoinerr.New(libcoinerr.InvalidScript, "exceeded max operation count of %d", MaxOpsPerScript)
		}
	} else if len(pop.data) > MaxScriptElementSize {
		return libcoinerr.New(libcoinerr.InvalidScript, "element size %d exceeds max of %d", len(pop.data), MaxScriptElementSize)
	}

	if !vm.isBranchExecuting() && !pop.isConditional() {
		return nil
	}

	if vm.isBranchExecuting() && vm.hasFlag(FlagVerifyMinimalData) && pop.isPush() {
		if err := pop.checkMinimalDataPush(); err != nil {
			return err
		}
	}

	return vm.opcodeFunc(pop)
}

// opcodeFunc dispatches to the handler for pop.value. Only conditional
// opcodes run outside an executing branch.
func (vm *Engine) opcodeFunc(pop *parsedOpcode) error {
	if !vm.isBranchExecuting() {
		switch pop.value {
		case OpIf, OpNotIf:
			vm.condStack = append(vm.condStack, condSkip)
			return nil
		case OpElse:
			return vm.opElse()
		case OpEndIf:
			return vm.opEndIf()
		}
		return nil
	}

	switch {
	case pop.value <= OpPushData4:
		vm.dstack.PushByteArray(pop.data)
		return nil
	case pop.value == Op1Negate:
		vm.dstack.PushInt(scriptNum(-1))
		return nil
	case pop.value >= Op1 && pop.value <= Op16:
		vm.dstack.PushInt(scriptNum(pop.value - Op1 + 1))
		return nil
	}

	if pop.value >= OpNop1 && pop.value <= OpNop10 {
		return nil
	}

	switch pop.value {
	case OpNop:
		return nil
	case OpIf:
		return vm.opIfNotIf(true)
	case OpNotIf:
		return vm.opIfNotIf(false)
	case OpElse:
		return vm.opElse()
	case OpEndIf:
		return vm.opEndIf()
	case OpVerify:
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			return libcoinerr.New(libcoinerr.InvalidScript, "OP_VERIFY failed")
		}
		return nil
	case OpReturn:
		return libcoinerr.New(libcoinerr.InvalidScript, "OP_RETURN executed")
	case OpToAltStack:
		so, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.astack.PushByteArray(so)
		return nil
	case OpFromAltStack:
		so, err := vm.astack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(so)
		return nil
	case Op2Drop:
		return vm.dstack.DropN(2)
	case Op2Dup:
		return vm.dstack.DupN(2)
	case Op3Dup:
		return vm.dstack.DupN(3)
	case Op2Over:
		return vm.dstack.OverN(2)
	case Op2Rot:
		return vm.dstack.RotN(2)
	case Op2Swap:
		return vm.dstack.SwapN(2)
	case OpIfDup:
		so, err := vm.dstack.PeekByteArray(0)
		if err != nil {
			return err
		}
		if asBool(so) {
			vm.dstack.PushByteArray(so)
		}
		return nil
	case OpDepth:
		vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
		return nil
	case OpDrop:
		return vm.dstack.DropN(1)
	case OpDup:
		return vm.dstack.DupN(1)
	case OpNip:
		return vm.dstack.NipN(1)
	case OpOver:
		return vm.dstack.OverN(1)
	case OpPick:
		n, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		return vm.dstack.PickN(n.Int32())
	case OpRoll:
		n, err := vm.dstack.PopInt()
		if err != nil {
			return err
		}
		return vm.dstack.RollN(n.Int32())
	case OpRot:
		return vm.dstack.RotN(1)
	case OpSwap:
		return vm.dstack.SwapN(1)
	case OpTuck:
		return vm.dstack.Tuck()
	case OpSize:
		so, err := vm.dstack.PeekByteArray(0)
		if err != nil {
			return err
		}
		vm.dstack.PushInt(scriptNum(len(so)))
		return nil
	case OpEqual:
		return vm.opEqual(false)
	case OpEqualVerify:
		return vm.opEqual(true)
	case Op1Add, Op1Sub, OpNegate, OpAbs, OpNot, Op0NotEqual:
		return vm.opUnaryArith(pop.value)
	case OpAdd, OpSub, OpBoolAnd, OpBoolOr, OpNumEqual, OpNumEqualVerify,
		OpNumNotEqual, OpLessThan, OpGreaterThan, OpLessThanOrEqual,
		OpGreaterThanOrEqual, OpMin, OpMax:
		return vm.opBinaryArith(pop.value)
	case OpWithin:
		return vm.opWithin()
	case OpRipeMD160:
		return vm.opHash(func(b []byte) []byte { h := ripemd160.New(); h.Write(b); return h.Sum(nil) })
	case OpSha1:
		return vm.opHash(func(b []byte) []byte { h := sha1.Sum(b); return h[:] })
	case OpSha256:
		return vm.opHash(func(b []byte) []byte { h := sha256.Sum256(b); return h[:] })
	case OpHash160:
		return vm.opHash(calcHash160)
	case OpHash256:
		return vm.opHash(calcHash256)
	case OpCodeSeparator:
		vm.lastSeparatorIdx = vm.scriptOff
		return nil
	case OpCheckSig:
		return vm.opCheckSig()
	case OpCheckSigVerify:
		if err := vm.opCheckSig(); err != nil {
			return err
		}
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			return libcoinerr.New(libcoinerr.InvalidScript, "OP_CHECKSIGVERIFY failed")
		}
		return nil
	case OpCheckMultiSig:
		return vm.opCheckMultiSig()
	case OpCheckMultiSigVerify:
		if err := vm.opCheckMultiSig(); err != nil {
			return err
		}
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			return libcoinerr.New(libcoinerr.InvalidScript, "OP_CHECKMULTISIGVERIFY failed")
		}
		return nil
	}

	return libcoinerr.New(libcoinerr.InvalidScript, "opcode 0x%02x not implemented", pop.value)
}

func (vm *Engine) opIfNotIf(wantTrue bool) error {
	cond := condFalse
	if vm.isBranchExecuting() {
		v, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if v == wantTrue {
			cond = condTrue
		}
	} else {
		cond = condSkip
	}
	vm.condStack = append(vm.condStack, cond)
	return nil
}

func (vm *Engine) opElse() error {
	if len(vm.condStack) == 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "OP_ELSE without matching OP_IF")
	}
	top := len(vm.condStack) - 1
	switch vm.condStack[top] {
	case condTrue:
		vm.condStack[top] = condFalse
	case condFalse:
		vm.condStack[top] = condTrue
	}
	return nil
}

func (vm *Engine) opEndIf() error {
	if len(vm.condStack) == 0 {
		return libcoinerr.New(libcoinerr.InvalidScript, "OP_ENDIF without matching OP_IF")
	}
	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

func (vm *Engine) opEqual(verify bool) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	equal := byteArrayEqual(a, b)
	if verify {
		if !equal {
			return libcoinerr.New(libcoinerr.InvalidScript, "OP_EQUALVERIFY failed")
		}
		return nil
	}
	vm.dstack.PushBool(equal)
	return nil
}

func byteArrayEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (vm *Engine) opHash(h func([]byte) []byte) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(h(so))
	return nil
}

func (vm *Engine) opUnaryArith(op byte) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	var res scriptNum
	switch op {
	case Op1Add:
		res = n + 1
	case Op1Sub:
		res = n - 1
	case OpNegate:
		res = -n
	case OpAbs:
		if n < 0 {
			res = -n
		} else {
			res = n
		}
	case OpNot:
		if n == 0 {
			res = 1
		}
	case Op0NotEqual:
		if n != 0 {
			res = 1
		}
	}
	vm.dstack.PushInt(res)
	return nil
}

func (vm *Engine) opBinaryArith(op byte) error {
	b, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	var res scriptNum
	boolResult := false
	isBool := false
	switch op {
	case OpAdd:
		res = a + b
	case OpSub:
		res = a - b
	case OpBoolAnd:
		isBool, boolResult = true, a != 0 && b != 0
	case OpBoolOr:
		isBool, boolResult = true, a != 0 || b != 0
	case OpNumEqual:
		isBool, boolResult = true, a == b
	case OpNumEqualVerify:
		if a != b {
			return libcoinerr.New(libcoinerr.InvalidScript, "OP_NUMEQUALVERIFY failed")
		}
		return nil
	case OpNumNotEqual:
		isBool, boolResult = true, a != b
	case OpLessThan:
		isBool, boolResult = true, a < b
	case OpGreaterThan:
		isBool, boolResult = true, a > b
	case OpLessThanOrEqual:
		isBool, boolResult = true, a <= b
	case OpGreaterThanOrEqual:
		isBool, boolResult = true, a >= b
	case OpMin:
		if a < b {
			res = a
		} else {
			res = b
		}
	case OpMax:
		if a > b {
			res = a
		} else {
			res = b
		}
	}
	if isBool {
		vm.dstack.PushBool(boolResult)
	} else {
		vm.dstack.PushInt(res)
	}
	return nil
}

func (vm *Engine) opWithin() error {
	max, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	min, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushBool(x >= min && x < max)
	return nil
}

// subScript returns the bytes of ops (from the most recent OP_CODESEPARATOR
// onward) with OP_CODESEPARATOR itself and any literal push of sig removed,
// per the classic signature-hash rule.
func subScript(ops []parsedOpcode, sig []byte) []byte {
	var filtered []parsedOpcode
	for _, op := range ops {
		if op.value == OpCodeSeparator {
			continue
		}
		if len(sig) > 0 && op.isPush() && byteArrayEqual(op.data, sig) {
			continue
		}
		filtered = append(filtered, op)
	}
	return unparseScript(filtered)
}

func unparseScript(ops []parsedOpcode) []byte {
	var buf []byte
	for _, op := range ops {
		buf = append(buf, op.value)
		if op.isPush() && op.value > Op0 {
			switch {
			case op.value < OpPushData1:
				buf = append(buf, op.data...)
			case op.value == OpPushData1:
				buf = append(buf, byte(len(op.data)))
				buf = append(buf, op.data...)
			case op.value == OpPushData2:
				buf = append(buf, byte(len(op.data)), byte(len(op.data)>>8))
				buf = append(buf, op.data...)
			case op.value == OpPushData4:
				n := len(op.data)
				buf = append(buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
				buf = append(buf, op.data...)
			}
		}
	}
	return buf
}
