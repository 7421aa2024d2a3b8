// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockindex

import (
	"math/big"
	"testing"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

type testElem struct {
	hash chainhash.Hash
	prev chainhash.Hash
	work int64
}

func (e testElem) Hash() chainhash.Hash { return e.hash }
func (e testElem) Prev() chainhash.Hash { return e.prev }
func (e testElem) Work() *big.Int       { return big.NewInt(e.work) }

func mkHash(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func TestInsertExtendsTrunk(t *testing.T) {
	tree := New()
	genesis := testElem{hash: mkHash(1), work: 1}
	cs, err := tree.Insert(genesis)
	if err != nil {
		t.Fatalf("genesis insert: %v", err)
	}
	if len(cs.Deleted) != 0 || len(cs.Inserted) != 1 {
		t.Fatalf("genesis change-set = %+v, want one inserted none deleted", cs)
	}

	next := testElem{hash: mkHash(2), prev: mkHash(1), work: 1}
	cs, err = tree.Insert(next)
	if err != nil {
		t.Fatalf("extend insert: %v", err)
	}
	if len(cs.Deleted) != 0 || len(cs.Inserted) != 1 {
		t.Fatalf("extend change-set = %+v, want one inserted none deleted", cs)
	}

	best, height, ok := tree.Best()
	if !ok || height != 1 || best.Hash() != mkHash(2) {
		t.Fatalf("Best() = %v,%d,%v, want block 2 at height 1", best, height, ok)
	}
}

func TestInsertReorgsToHeavierFork(t *testing.T) {
	tree := New()
	g := testElem{hash: mkHash(1), work: 1}
	a := testElem{hash: mkHash(2), prev: mkHash(1), work: 1}
	b := testElem{hash: mkHash(3), prev: mkHash(2), work: 1}
	mustInsert(t, tree, g)
	mustInsert(t, tree, a)
	mustInsert(t, tree, b)

	// Lighter fork off block 1: no promotion.
	forkLight := testElem{hash: mkHash(4), prev: mkHash(1), work: 1}
	cs, err := tree.Insert(forkLight)
	if err != nil {
		t.Fatalf("fork insert: %v", err)
	}
	if len(cs.Inserted) != 0 {
		t.Fatalf("lighter fork should not be promoted, got %+v", cs)
	}

	// Heavier fork: a single block of work 3 off block 1 brings its
	// branch to cumulative work 4, beating the trunk's 3 (g, a, b), so
	// a and b are detached and block 5 attached.
	fork1 := testElem{hash: mkHash(5), prev: mkHash(1), work: 3}
	cs, err = tree.Insert(fork1)
	if err != nil {
		t.Fatalf("heavy fork insert: %v", err)
	}
	if len(cs.Deleted) != 2 {
		t.Fatalf("expected both trunk blocks detached, got %+v", cs)
	}
	if len(cs.Inserted) != 1 || cs.Inserted[0] != mkHash(5) {
		t.Fatalf("expected block 5 attached, got %+v", cs)
	}

	best, _, _ := tree.Best()
	if best.Hash() != mkHash(5) {
		t.Fatalf("best tip should be block 5 after reorg, got %v", best.Hash())
	}
}

func mustInsert(t *testing.T, tree *SparseTree, e testElem) {
	t.Helper()
	if _, err := tree.Insert(e); err != nil {
		t.Fatalf("insert %v: %v", e.hash, err)
	}
}

func TestPopBackUndoesLastAppend(t *testing.T) {
	tree := New()
	g := testElem{hash: mkHash(1), work: 1}
	a := testElem{hash: mkHash(2), prev: mkHash(1), work: 1}
	mustInsert(t, tree, g)
	mustInsert(t, tree, a)

	popped, ok := tree.PopBack()
	if !ok || popped.Hash() != mkHash(2) {
		t.Fatalf("PopBack() = %v,%v, want block 2", popped, ok)
	}
	if tree.Have(mkHash(2)) {
		t.Fatal("popped block should no longer be indexed")
	}
	best, _, _ := tree.Best()
	if best.Hash() != mkHash(1) {
		t.Fatalf("best tip after pop should be genesis, got %v", best.Hash())
	}
}

func TestReinstateRestoresOldTrunk(t *testing.T) {
	tree := New()
	g := testElem{hash: mkHash(1), work: 1}
	a := testElem{hash: mkHash(2), prev: mkHash(1), work: 1}
	b := testElem{hash: mkHash(3), prev: mkHash(2), work: 1}
	mustInsert(t, tree, g)
	mustInsert(t, tree, a)
	mustInsert(t, tree, b)

	// A heavier fork displaces a and b, then fails to commit: pop the
	// fork block and reinstate the old tip.
	fork := testElem{hash: mkHash(4), prev: mkHash(1), work: 5}
	cs, err := tree.Insert(fork)
	if err != nil {
		t.Fatalf("fork insert: %v", err)
	}
	if len(cs.Deleted) != 2 || len(cs.Inserted) != 1 {
		t.Fatalf("unexpected change-set %+v", cs)
	}
	for range cs.Inserted {
		tree.PopBack()
	}
	if _, err := tree.Reinstate(cs.Deleted[0]); err != nil {
		t.Fatalf("Reinstate: %v", err)
	}

	best, height, ok := tree.Best()
	if !ok || height != 2 || best.Hash() != mkHash(3) {
		t.Fatalf("Best() = %v,%d after reinstate, want block 3 at height 2", best, height)
	}
	if h, ok := tree.Height(mkHash(2)); !ok || h != 1 || !tree.OnTrunk(mkHash(2)) {
		t.Fatalf("block 2 should be back on the trunk at height 1")
	}
}

func TestTrimDiscardsBelowHeight(t *testing.T) {
	tree := New()
	for i := byte(1); i <= 5; i++ {
		prev := chainhash.Hash{}
		if i > 1 {
			prev = mkHash(i - 1)
		}
		mustInsert(t, tree, testElem{hash: mkHash(i), prev: prev, work: 1})
	}
	pruned := tree.Trim(3)
	if len(pruned) != 3 {
		t.Fatalf("expected 3 pruned hashes, got %d", len(pruned))
	}
	if tree.Have(mkHash(1)) || tree.Have(mkHash(2)) {
		t.Fatal("blocks below trim height should be gone")
	}
	if !tree.Have(mkHash(4)) || !tree.Have(mkHash(5)) {
		t.Fatal("blocks at or above trim height should remain")
	}
}
