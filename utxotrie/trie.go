package utxotrie

import "github.com/libcoin/libcoin-sub001/chainhash"

// Elem is anything storable as a MerkleTrie leaf: a fixed-width Key and a
// leaf hash contributed to the authenticated root.
type Elem interface {
	Key() Key
	LeafHash() chainhash.Hash
}

// node is a PATRICIA (crit-bit) trie node. Nodes are immutable once built:
// a branch's left/right point at whichever subtree last held them, and a
// mutation only ever allocates new nodes along the path it touches,
// re-using every sibling subtree verbatim. That immutability is what makes
// Snapshot/Restore an O(1) pointer save rather than a deep copy.
type node struct {
	leaf bool

	// leaf fields
	elem Elem
	key  Key

	// branch fields
	critbit     int
	left, right *node

	hash chainhash.Hash
}

func newLeaf(e Elem, authenticated bool) *node {
	n := &node{leaf: true, elem: e, key: e.Key()}
	if authenticated {
		n.hash = e.LeafHash()
	}
	return n
}

func branchHash(left, right *node) chainhash.Hash {
	buf := make([]byte, 0, chainhash.HashSize*2)
	buf = append(buf, left.hash[:]...)
	buf = append(buf, right.hash[:]...)
	return chainhash.DoubleHashH(buf)
}

// Trie is the authenticated UTXO set: a binary radix trie keyed by Key.
type Trie struct {
	root          *node
	authenticated bool
}

// New returns an empty, authenticated trie.
func New() *Trie {
	return &Trie{authenticated: true}
}

// Authenticated reports whether leaf and branch hashes are being maintained.
func (t *Trie) Authenticated() bool { return t.authenticated }

// SetAuthenticated toggles hash maintenance. Turning authentication back
// on after a bulk-sync window recomputes every hash in the trie once.
func (t *Trie) SetAuthenticated(on bool) {
	if on == t.authenticated {
		return
	}
	t.authenticated = on
	if on {
		t.root = rehashAll(t.root)
	}
}

func rehashAll(n *node) *node {
	if n == nil {
		return nil
	}
	if n.leaf {
		return &node{leaf: true, elem: n.elem, key: n.key, hash: n.elem.LeafHash()}
	}
	left := rehashAll(n.left)
	right := rehashAll(n.right)
	return &node{critbit: n.critbit, left: left, right: right, hash: branchHash(left, right)}
}

// RootHash returns the trie's current root hash. It is only meaningful
// while Authenticated() is true.
func (t *Trie) RootHash() chainhash.Hash {
	if t.root == nil {
		return chainhash.HashZero
	}
	return t.root.hash
}

// Empty reports whether the trie holds no elements.
func (t *Trie) Empty() bool { return t.root == nil }

// Insert adds elem under its key, returning false if the key already
// exists (the trie is left unmodified in that case).
func (t *Trie) Insert(e Elem) bool {
	key := e.Key()
	if t.root == nil {
		t.root = newLeaf(e, t.authenticated)
		return true
	}

	cur := t.root
	for !cur.leaf {
		if bitAt(key, cur.critbit) == 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	cbit, equal := critBit(key, cur.key)
	if equal {
		return false
	}

	leaf := newLeaf(e, t.authenticated)
	t.root = insertAt(t.root, key, leaf, cbit, t.authenticated)
	return true
}

func insertAt(n *node, key Key, leaf *node, cbit int, authenticated bool) *node {
	if n.leaf || n.critbit > cbit {
		var left, right *node
		if bitAt(key, cbit) == 0 {
			left, right = leaf, n
		} else {
			left, right = n, leaf
		}
		nb := &node{critbit: cbit, left: left, right: right}
		if authenticated {
			nb.hash = branchHash(left, right)
		}
		return nb
	}
	if bitAt(key, n.critbit) == 0 {
		newLeft := insertAt(n.left, key, leaf, cbit, authenticated)
		nb := &node{critbit: n.critbit, left: newLeft, right: n.right}
		if authenticated {
			nb.hash = branchHash(newLeft, n.right)
		}
		return nb
	}
	newRight := insertAt(n.right, key, leaf, cbit, authenticated)
	nb := &node{critbit: n.critbit, left: n.left, right: newRight}
	if authenticated {
		nb.hash = branchHash(n.left, newRight)
	}
	return nb
}

// Remove deletes the element at key, reporting whether it was present.
// Removing the trie's single remaining element empties it; removing a
// leaf under a branch collapses that branch into its sibling, preserving
// the "every internal node has exactly two children" invariant.
func (t *Trie) Remove(key Key) bool {
	if t.root == nil {
		return false
	}
	if t.root.leaf {
		if t.root.key != key {
			return false
		}
		t.root = nil
		return true
	}
	newRoot, ok := removeAt(t.root, key, t.authenticated)
	if !ok {
		return false
	}
	t.root = newRoot
	return true
}

// RemoveIter removes the element an iterator currently points at.
func (t *Trie) RemoveIter(it Iterator) bool {
	if !it.Valid() {
		return false
	}
	return t.Remove(it.Key())
}

func removeAt(n *node, key Key, authenticated bool) (*node, bool) {
	wentLeft := bitAt(key, n.critbit) == 0
	var child, sibling *node
	if wentLeft {
		child, sibling = n.left, n.right
	} else {
		child, sibling = n.right, n.left
	}
	if child.leaf {
		if child.key != key {
			return nil, false
		}
		return sibling, true
	}
	newChild, ok := removeAt(child, key, authenticated)
	if !ok {
		return nil, false
	}
	nb := &node{critbit: n.critbit}
	if wentLeft {
		nb.left, nb.right = newChild, sibling
	} else {
		nb.left, nb.right = sibling, newChild
	}
	if authenticated {
		nb.hash = branchHash(nb.left, nb.right)
	}
	return nb, true
}

// Find looks up key, returning an Iterator positioned at it.
func (t *Trie) Find(key Key) (Iterator, bool) {
	if t.root == nil {
		return Iterator{}, false
	}
	path := []*node{t.root}
	n := t.root
	for !n.leaf {
		if bitAt(key, n.critbit) == 0 {
			n = n.left
		} else {
			n = n.right
		}
		path = append(path, n)
	}
	if n.key != key {
		return Iterator{}, false
	}
	return Iterator{path: path}, true
}

// Snapshot is an O(1) capture of the trie's current state, suitable for a
// cheap tentative operation that might need to be rolled back.
type Snapshot struct {
	root          *node
	authenticated bool
}

// Snapshot captures the trie's current root and authentication mode.
func (t *Trie) Snapshot() Snapshot {
	return Snapshot{root: t.root, authenticated: t.authenticated}
}

// Restore rolls the trie back to a previously taken Snapshot.
func (t *Trie) Restore(s Snapshot) {
	t.root = s.root
	t.authenticated = s.authenticated
}

// Begin returns an iterator at the leftmost (lowest-key) element.
func (t *Trie) Begin() Iterator {
	if t.root == nil {
		return Iterator{}
	}
	path := []*node{t.root}
	n := t.root
	for !n.leaf {
		n = n.left
		path = append(path, n)
	}
	return Iterator{path: path}
}

// End returns the sentinel "one past the last element" iterator.
func (t *Trie) End() Iterator { return Iterator{} }
