// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"

	"github.com/libcoin/libcoin-sub001/libcoinerr"
	"github.com/libcoin/libcoin-sub001/script"
	"github.com/libcoin/libcoin-sub001/store"
	"github.com/libcoin/libcoin-sub001/wire"
)

// NameOpKind distinguishes the three name operations a name-system-adherent
// chain carries inside transaction outputs.
type NameOpKind byte

// Name operation kinds, tagged by the leading small-integer opcode of the
// carrying output script.
const (
	NameOpNew NameOpKind = iota + 1
	NameOpFirstUpdate
	NameOpUpdate
)

// NameOperation is one decoded name operation: a hashed commitment for
// name_new, or a (name, value) pair for first_update/update.
type NameOperation struct {
	Kind  NameOpKind
	Name  string
	Value []byte
}

// parseNameOperation scans tx's outputs for a name-carrying script: a
// leading OP_1/OP_2/OP_3 kind tag, the operation's data pushes, and the
// drops that keep the remainder of the script spendable. At most one name
// operation per transaction is honoured, matching the reference rule.
func parseNameOperation(tx *wire.MsgTx) (*NameOperation, bool) {
	for _, out := range tx.TxOut {
		op, ok := parseNameScript(out.PkScript)
		if ok {
			return op, true
		}
	}
	return nil, false
}

func parseNameScript(pkScript []byte) (*NameOperation, bool) {
	if len(pkScript) < 2 {
		return nil, false
	}
	var kind NameOpKind
	switch pkScript[0] {
	case script.Op1:
		kind = NameOpNew
	case script.Op1 + 1:
		kind = NameOpFirstUpdate
	case script.Op1 + 2:
		kind = NameOpUpdate
	default:
		return nil, false
	}
	pushes, ok := leadingPushes(pkScript[1:])
	if !ok {
		return nil, false
	}
	switch kind {
	case NameOpNew:
		if len(pushes) < 1 {
			return nil, false
		}
		return &NameOperation{Kind: kind, Value: pushes[0]}, true
	case NameOpFirstUpdate:
		if len(pushes) < 3 {
			return nil, false
		}
		return &NameOperation{Kind: kind, Name: string(pushes[0]), Value: pushes[2]}, true
	default:
		if len(pushes) < 2 {
			return nil, false
		}
		return &NameOperation{Kind: kind, Name: string(pushes[0]), Value: pushes[1]}, true
	}
}

// leadingPushes decodes the direct data pushes at the front of raw,
// stopping at the first non-push opcode.
func leadingPushes(raw []byte) ([][]byte, bool) {
	var pushes [][]byte
	i := 0
	for i < len(raw) {
		op := int(raw[i])
		if op == 0 || op > 75 {
			break
		}
		i++
		if i+op > len(raw) {
			return nil, false
		}
		pushes = append(pushes, raw[i:i+op])
		i += op
	}
	return pushes, len(pushes) > 0
}

// maxNameLength bounds a registered name's byte length.
const maxNameLength = 255

// nameReader resolves a name's current record; *store.Store serves the
// claim-pool path and *store.Tx the in-transaction attach path.
type nameReader interface {
	GetName(ctx context.Context, name string) (store.NameRow, bool, error)
}

// validateNameOperation checks op against current name state at height:
// a first_update must not collide with a live name and must pay the
// height-scheduled fee; an update must renew a live name.
func (bc *BlockChain) validateNameOperation(names nameReader, op *NameOperation, height, fee int64) error {
	params := bc.cfg.Params
	switch op.Kind {
	case NameOpNew:
		return nil // a commitment binds nothing until first_update
	case NameOpFirstUpdate:
		if len(op.Name) == 0 || len(op.Name) > maxNameLength {
			return libcoinerr.New(libcoinerr.NameRuleViolation, "name length %d out of range", len(op.Name))
		}
		row, found, err := names.GetName(context.Background(), op.Name)
		if err != nil {
			return err
		}
		if found && row.Expiry > height {
			return libcoinerr.New(libcoinerr.NameRuleViolation, "name %q already registered until height %d", op.Name, row.Expiry)
		}
		if params.NameFeeSchedule != nil && fee < params.NameFeeSchedule(height) {
			return libcoinerr.New(libcoinerr.NameRuleViolation,
				"name %q first_update pays %d, below the scheduled fee %d", op.Name, fee, params.NameFeeSchedule(height))
		}
		return nil
	case NameOpUpdate:
		row, found, err := names.GetName(context.Background(), op.Name)
		if err != nil {
			return err
		}
		if !found || row.Expiry <= height {
			return libcoinerr.New(libcoinerr.NameRuleViolation, "name %q is not live and cannot be updated", op.Name)
		}
		return nil
	default:
		return libcoinerr.New(libcoinerr.NameRuleViolation, "unknown name operation kind %d", op.Kind)
	}
}

// validateNameTx is the claim-pool hook: it decodes and validates any name
// operation tx carries against the height the next block would confirm at.
func (bc *BlockChain) validateNameTx(tx *wire.MsgTx, fee int64) error {
	op, ok := parseNameOperation(tx)
	if !ok {
		return nil
	}
	return bc.validateNameOperation(bc.cfg.Store, op, bc.Height()+1, fee)
}

// applyNameOperation persists the state change a confirmed name operation
// makes: first_update registers, update renews. Both set the expiry
// NameExpirationDepth blocks past the confirming height.
func (bc *BlockChain) applyNameOperation(ctx context.Context, stx *store.Tx, op *NameOperation, height int64) error {
	if op.Kind == NameOpNew {
		return nil
	}
	return stx.UpsertName(ctx, store.NameRow{
		Name:   op.Name,
		Value:  op.Value,
		Height: height,
		Expiry: height + bc.cfg.Params.NameExpirationDepth,
	})
}

// detachNameOperation reverses applyNameOperation. The prior value is not
// retrievable from the Names table alone, so a detached registration or
// renewal simply drops the record; a competing branch's attach re-creates
// the state it confirms.
func (bc *BlockChain) detachNameOperation(ctx context.Context, stx *store.Tx, op *NameOperation) error {
	if op.Kind == NameOpNew {
		return nil
	}
	return stx.DeleteName(ctx, op.Name)
}
