package utxotrie

import (
	"testing"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

type testElem struct {
	key   Key
	value int64
}

func (e testElem) Key() Key { return e.key }

func (e testElem) LeafHash() chainhash.Hash {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(e.value >> (8 * uint(i)))
	}
	return chainhash.DoubleHashH(append(e.key[:], b[:]...))
}

func txidN(n byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = n
	return h
}

func TestInsertFindRemove(t *testing.T) {
	tr := New()
	keys := []Key{
		NewKey(txidN(1), 0),
		NewKey(txidN(2), 0),
		NewKey(txidN(2), 1),
		NewKey(txidN(3), 5),
	}
	for i, k := range keys {
		if !tr.Insert(testElem{key: k, value: int64(i)}) {
			t.Fatalf("insert %d: collision reported on fresh key", i)
		}
	}
	if tr.Insert(testElem{key: keys[0], value: 99}) {
		t.Fatalf("insert: expected collision on duplicate key")
	}

	for i, k := range keys {
		it, ok := tr.Find(k)
		if !ok {
			t.Fatalf("find %d: not found", i)
		}
		if it.Elem().(testElem).value != int64(i) {
			t.Fatalf("find %d: wrong value", i)
		}
	}

	root := tr.RootHash()
	if root == chainhash.HashZero {
		t.Fatalf("root hash is zero with %d elements inserted", len(keys))
	}

	if !tr.Remove(keys[1]) {
		t.Fatalf("remove: expected success")
	}
	if tr.Remove(keys[1]) {
		t.Fatalf("remove: expected false on already-removed key")
	}
	if _, ok := tr.Find(keys[1]); ok {
		t.Fatalf("find: key still present after remove")
	}
	if tr.RootHash() == root {
		t.Fatalf("root hash unchanged after remove")
	}
}

func TestSnapshotRestore(t *testing.T) {
	tr := New()
	k1 := NewKey(txidN(1), 0)
	tr.Insert(testElem{key: k1, value: 1})
	snap := tr.Snapshot()
	root := tr.RootHash()

	k2 := NewKey(txidN(2), 0)
	tr.Insert(testElem{key: k2, value: 2})
	if tr.RootHash() == root {
		t.Fatalf("root hash did not change after insert")
	}

	tr.Restore(snap)
	if tr.RootHash() != root {
		t.Fatalf("restore did not return to the pre-insert root")
	}
	if _, ok := tr.Find(k2); ok {
		t.Fatalf("find: key from rolled-back insert still present")
	}
	if _, ok := tr.Find(k1); !ok {
		t.Fatalf("find: pre-snapshot key lost after restore")
	}
}

func TestBranchValidate(t *testing.T) {
	tr := New()
	var keys []Key
	for i := byte(0); i < 8; i++ {
		k := NewKey(txidN(i), uint32(i))
		keys = append(keys, k)
		tr.Insert(testElem{key: k, value: int64(i)})
	}
	root := tr.RootHash()
	for i, k := range keys {
		it, ok := tr.Find(k)
		if !ok {
			t.Fatalf("find %d failed", i)
		}
		branch := tr.Branch(it)
		leafHash := it.Elem().(testElem).LeafHash()
		if !Validate(leafHash, branch, root) {
			t.Fatalf("branch %d: validate failed against root", i)
		}
	}
}

func TestBeginEndIteration(t *testing.T) {
	tr := New()
	for i := byte(0); i < 5; i++ {
		tr.Insert(testElem{key: NewKey(txidN(i), 0), value: int64(i)})
	}
	count := 0
	for it := tr.Begin(); it.Valid(); it = it.Next() {
		count++
	}
	if count != 5 {
		t.Fatalf("iterated %d elements, want 5", count)
	}
}

func TestAuthenticationToggle(t *testing.T) {
	tr := New()
	tr.SetAuthenticated(false)
	for i := byte(0); i < 4; i++ {
		tr.Insert(testElem{key: NewKey(txidN(i), 0), value: int64(i)})
	}
	if tr.RootHash() != chainhash.HashZero {
		t.Fatalf("root hash should stay zero while unauthenticated")
	}
	tr.SetAuthenticated(true)
	if tr.RootHash() == chainhash.HashZero {
		t.Fatalf("root hash should be recomputed once authentication is re-enabled")
	}
}
