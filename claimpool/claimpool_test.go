// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package claimpool

import (
	"testing"

	"github.com/libcoin/libcoin-sub001/chainhash"
	"github.com/libcoin/libcoin-sub001/wire"
)

type fakeChain struct {
	height   int64
	maturity int64
	minFee   int64
	unspent  map[wire.OutPoint]UnspentInfo
}

func newFakeChain() *fakeChain {
	return &fakeChain{height: 100, maturity: 100, minFee: 0, unspent: make(map[wire.OutPoint]UnspentInfo)}
}

func (c *fakeChain) UnspentOutput(op wire.OutPoint) (UnspentInfo, bool) {
	info, ok := c.unspent[op]
	return info, ok
}
func (c *fakeChain) Height() int64                       { return c.height }
func (c *fakeChain) CoinbaseMaturity(height int64) int64 { return c.maturity }
func (c *fakeChain) MinRelayFee() int64                  { return c.minFee }

func mkTx(prev wire.OutPoint, outValue int64) *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: prev, Sequence: wire.MaxTxInSequenceNum}},
		TxOut:   []*wire.TxOut{{Value: outValue, PkScript: []byte{0x51}}},
	}
}

func TestTryClaimAcceptsSimpleSpend(t *testing.T) {
	chain := newFakeChain()
	var srcTx chainhash.Hash
	srcTx[0] = 1
	op := wire.OutPoint{Hash: srcTx, Index: 0}
	chain.unspent[op] = UnspentInfo{Value: 1000, Script: []byte{0x51}, BlockCount: 50}

	pool := New(chain)
	tx := mkTx(op, 900)
	spent, fee, err := pool.TryClaim(tx, false)
	if err != nil {
		t.Fatalf("TryClaim: %v", err)
	}
	if fee != 100 {
		t.Fatalf("fee = %d, want 100", fee)
	}
	if _, ok := spent[op]; !ok {
		t.Fatalf("expected outpoint marked spent")
	}
	pool.Insert(tx, spent, fee)
	if !pool.Have(tx.TxHash()) {
		t.Fatalf("expected tx to be in pool after Insert")
	}
}

func TestTryClaimRejectsDoubleSpend(t *testing.T) {
	chain := newFakeChain()
	var srcTx chainhash.Hash
	srcTx[0] = 2
	op := wire.OutPoint{Hash: srcTx, Index: 0}
	chain.unspent[op] = UnspentInfo{Value: 1000, Script: []byte{0x51}, BlockCount: 50}

	pool := New(chain)
	tx1 := mkTx(op, 900)
	spent, fee, err := pool.TryClaim(tx1, false)
	if err != nil {
		t.Fatalf("TryClaim tx1: %v", err)
	}
	pool.Insert(tx1, spent, fee)

	tx2 := mkTx(op, 800)
	if _, _, err := pool.TryClaim(tx2, false); err == nil {
		t.Fatalf("expected double-spend rejection for tx2")
	}
}

func TestTryClaimRejectsImmatureCoinbase(t *testing.T) {
	chain := newFakeChain()
	var srcTx chainhash.Hash
	srcTx[0] = 3
	op := wire.OutPoint{Hash: srcTx, Index: 0}
	// Coinbase mined at height 60; chain tip is 100, maturity 100:
	// 100 - 60 + 1 = 41 < 100, still immature.
	chain.unspent[op] = UnspentInfo{Value: 1000, Script: []byte{0x51}, BlockCount: -60}

	pool := New(chain)
	tx := mkTx(op, 900)
	if _, _, err := pool.TryClaim(tx, false); err == nil {
		t.Fatalf("expected immature coinbase rejection")
	}
}

func TestTryClaimRejectsFeeBelowMinimum(t *testing.T) {
	chain := newFakeChain()
	chain.minFee = 500
	var srcTx chainhash.Hash
	srcTx[0] = 4
	op := wire.OutPoint{Hash: srcTx, Index: 0}
	chain.unspent[op] = UnspentInfo{Value: 1000, Script: []byte{0x51}, BlockCount: 50}

	pool := New(chain)
	tx := mkTx(op, 900) // fee = 100 < 500
	if _, _, err := pool.TryClaim(tx, false); err == nil {
		t.Fatalf("expected fee-below-minimum rejection")
	}
}

func TestPurgeDropsOldEntries(t *testing.T) {
	chain := newFakeChain()
	var srcTx chainhash.Hash
	srcTx[0] = 5
	op := wire.OutPoint{Hash: srcTx, Index: 0}
	chain.unspent[op] = UnspentInfo{Value: 1000, Script: []byte{0x51}, BlockCount: 50}

	pool := New(chain)
	tx := mkTx(op, 900)
	spent, fee, err := pool.TryClaim(tx, false)
	if err != nil {
		t.Fatalf("TryClaim: %v", err)
	}
	pool.Insert(tx, spent, fee)
	pool.entries[tx.TxHash()].Arrived = pool.entries[tx.TxHash()].Arrived.Add(-25 * PurgeAge)

	pool.Purge(pool.entries[tx.TxHash()].Arrived.Add(PurgeAge))
	if pool.Have(tx.TxHash()) {
		t.Fatalf("expected purge to drop stale entry")
	}
}
