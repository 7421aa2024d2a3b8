// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libcoin.db")
	opts := DefaultOptions()
	opts.Strategy = ValidationDepthZero
	opts.ScriptToUnspents = true
	s, err := Open(path, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBlockRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	row := BlockRow{Count: 0, RawBlock: []byte("genesis")}
	row.Hash[0] = 1
	if err := tx.InsertBlock(ctx, row); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := s.GetBlockByCount(ctx, 0)
	if err != nil {
		t.Fatalf("GetBlockByCount: %v", err)
	}
	if got.Hash != row.Hash || string(got.RawBlock) != "genesis" {
		t.Fatalf("round trip mismatch: got %+v", got)
	}

	max, err := s.MaxBlockCount(ctx)
	if err != nil || max != 0 {
		t.Fatalf("MaxBlockCount = %d, %v; want 0, nil", max, err)
	}
}

func TestUnspentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	var txid chainhash.Hash
	txid[0] = 7
	script := []byte("pkscript")
	coinID, err := tx.InsertUnspent(ctx, UnspentRow{TxHash: txid, OutIndex: 0, Value: 5000, Script: script, BlockCount: 1})
	if err != nil {
		t.Fatalf("InsertUnspent: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	sum, err := s.SumUnspentsForScript(ctx, script, 10)
	if err != nil || sum != 5000 {
		t.Fatalf("SumUnspentsForScript = %d, %v; want 5000, nil", sum, err)
	}

	tx2, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx2.DeleteUnspentByCoinID(ctx, coinID); err != nil {
		t.Fatalf("DeleteUnspentByCoinID: %v", err)
	}
	if err := tx2.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	sum, err = s.SumUnspentsForScript(ctx, script, 10)
	if err != nil || sum != 0 {
		t.Fatalf("SumUnspentsForScript after delete = %d, %v; want 0, nil", sum, err)
	}
}

func TestCoinbaseMaturation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	var txid chainhash.Hash
	txid[0] = 9
	coinID, err := tx.InsertUnspent(ctx, UnspentRow{TxHash: txid, OutIndex: 0, Value: 100, Script: []byte{0x51}, BlockCount: -5})
	if err != nil {
		t.Fatalf("InsertUnspent: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rows, err := s.MatureCoinbaseUnspents(ctx, 5)
	if err != nil || len(rows) != 1 {
		t.Fatalf("MatureCoinbaseUnspents = %v, %v; want 1 row", rows, err)
	}

	tx2, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx2.MaturateUnspent(ctx, coinID, 5); err != nil {
		t.Fatalf("MaturateUnspent: %v", err)
	}
	if err := tx2.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rows, err = s.MatureCoinbaseUnspents(ctx, 5)
	if err != nil || len(rows) != 0 {
		t.Fatalf("MatureCoinbaseUnspents after maturation = %v, %v; want none", rows, err)
	}
}

func TestTxRollback(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	row := BlockRow{Count: 0, RawBlock: []byte("genesis")}
	if err := tx.InsertBlock(ctx, row); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if _, err := s.GetBlockByCount(ctx, 0); err == nil {
		t.Fatalf("expected block to be absent after rollback")
	}
}
