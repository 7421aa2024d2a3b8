// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import "github.com/libcoin/libcoin-sub001/wire"

// Verify evaluates tx.TxIn[txIdx]'s signature script against prevScript,
// requiring a truthy top-of-stack result; when strictP2SH holds and
// prevScript is the pay-to-script-hash template, the engine additionally
// re-evaluates the last data push of the signature script as a redeem
// script and requires that to succeed too.
func Verify(tx *wire.MsgTx, txIdx int, prevScript []byte, strictP2SH bool) error {
	flags := FlagVerifyDERSignatures | FlagVerifyStrictEncoding | FlagVerifyMinimalData
	if strictP2SH {
		flags |= FlagVerifyCleanStack
	}
	vm, err := NewEngine(prevScript, tx, txIdx, flags)
	if err != nil {
		return err
	}
	if !strictP2SH {
		vm.isP2SH = false
	}
	return vm.Execute()
}
