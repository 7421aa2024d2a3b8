// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockindex implements SparseTree: a height-indexed trunk plus
// a branch map. Instead of a pointer-linked block-node graph it keeps an
// arena of integer heights and a hash→index lookup.
package blockindex

import (
	"math/big"

	"github.com/libcoin/libcoin-sub001/chainhash"
)

// Elem is the payload a SparseTree node carries. BlockChain's block index
// instantiates this with a block-header summary; Work accumulates along a
// branch to decide which chain is "best".
type Elem interface {
	Hash() chainhash.Hash
	Prev() chainhash.Hash
	Work() *big.Int
}

// node is the arena record for one Elem: its chain height and
// accumulated work, kept so branch comparison never re-walks the chain.
// height is counted from the first trunk element on trunk and branch
// alike; membership in t.trunk vs
// t.branches carries the trunk/branch distinction.
type node struct {
	elem          Elem
	height        int64
	cumWork       *big.Int
	trunk         bool
	branchPredHash chainhash.Hash // prev hash, used when off-trunk
}

// ChangeSet describes the attach/detach set a successful insert produces:
// blocks named in Deleted must be detached (highest height first) before
// blocks named in Inserted are attached (lowest height first).
type ChangeSet struct {
	Deleted  []chainhash.Hash
	Inserted []chainhash.Hash
}

// SparseTree is a height-indexed block index: O(1) lookup by height on the
// trunk, O(log n) lookup over the (small) branch set by hash.
type SparseTree struct {
	trunk    []node               // index i holds the element at height i
	branches map[chainhash.Hash]*node
	byHash   map[chainhash.Hash]int64 // trunk-height lookup; absent means branch-only
}

// New returns an empty SparseTree.
func New() *SparseTree {
	return &SparseTree{
		branches: make(map[chainhash.Hash]*node),
		byHash:   make(map[chainhash.Hash]int64),
	}
}

// Assign bulk-loads trunk in order, validating that each element's Prev
// links to the previous element's Hash.
func (t *SparseTree) Assign(trunk []Elem) error {
	t.trunk = t.trunk[:0]
	t.branches = make(map[chainhash.Hash]*node)
	t.byHash = make(map[chainhash.Hash]int64)

	var cum *big.Int
	for i, e := range trunk {
		if i > 0 && e.Prev() != trunk[i-1].Hash() {
			return errBrokenChain(e.Hash())
		}
		if cum == nil {
			cum = new(big.Int).Set(e.Work())
		} else {
			cum = new(big.Int).Add(cum, e.Work())
		}
		t.trunk = append(t.trunk, node{elem: e, height: int64(i), cumWork: new(big.Int).Set(cum), trunk: true})
		t.byHash[e.Hash()] = int64(i)
	}
	return nil
}

type errBrokenChain chainhash.Hash

func (e errBrokenChain) Error() string {
	h := chainhash.Hash(e)
	return "broken prev-link assigning trunk at " + h.String()
}

// Count returns the number of elements held, trunk plus branches.
func (t *SparseTree) Count() int {
	return len(t.trunk) + len(t.branches)
}

// Height returns the chain height of hash (counted from the first trunk
// element), trunk or branch, or
// (0, false) if hash is unknown. Use OnTrunk to distinguish the two.
func (t *SparseTree) Height(hash chainhash.Hash) (int64, bool) {
	if h, ok := t.byHash[hash]; ok {
		return h, true
	}
	if n, ok := t.branches[hash]; ok {
		return n.height, true
	}
	return 0, false
}

// OnTrunk reports whether hash sits on the current best chain.
func (t *SparseTree) OnTrunk(hash chainhash.Hash) bool {
	_, ok := t.byHash[hash]
	return ok
}

// Have reports whether hash is indexed, on the trunk or a branch.
func (t *SparseTree) Have(hash chainhash.Hash) bool {
	_, ok := t.Height(hash)
	return ok
}

// Find returns the Elem stored for hash.
func (t *SparseTree) Find(hash chainhash.Hash) (Elem, bool) {
	if h, ok := t.byHash[hash]; ok {
		return t.trunk[h].elem, true
	}
	if n, ok := t.branches[hash]; ok {
		return n.elem, true
	}
	return nil, false
}

// AtHeight returns the trunk element at height.
func (t *SparseTree) AtHeight(height int64) (Elem, bool) {
	if height < 0 || height >= int64(len(t.trunk)) {
		return nil, false
	}
	return t.trunk[height].elem, true
}

// Best returns the trunk tip: the element defining the current best
// chain, along with its height.
func (t *SparseTree) Best() (Elem, int64, bool) {
	if len(t.trunk) == 0 {
		return nil, 0, false
	}
	last := t.trunk[len(t.trunk)-1]
	return last.elem, last.height, true
}

// BestInvalid returns the highest-work element ever recorded, trunk or
// branch, regardless of which chain is currently canonical. Callers
// maintaining a parallel invalid tree use this to report the
// deepest known-invalid descent.
func (t *SparseTree) BestInvalid() (Elem, bool) {
	var best *node
	for i := range t.trunk {
		n := &t.trunk[i]
		if best == nil || n.cumWork.Cmp(best.cumWork) > 0 {
			best = n
		}
	}
	for _, n := range t.branches {
		if best == nil || n.cumWork.Cmp(best.cumWork) > 0 {
			best = n
		}
	}
	if best == nil {
		return nil, false
	}
	return best.elem, true
}

// cumulativeWorkAt returns the accumulated work ending at hash, whichever
// of trunk/branches holds it.
func (t *SparseTree) cumulativeWorkAt(hash chainhash.Hash) (*big.Int, bool) {
	if h, ok := t.byHash[hash]; ok {
		return t.trunk[h].cumWork, true
	}
	if n, ok := t.branches[hash]; ok {
		return n.cumWork, true
	}
	return nil, false
}

// Insert adds ref, linked by its Prev hash to an already-indexed element,
// and returns the {deleted, inserted} change-set needed to move the best
// chain from its previous tip to the new one. A ref extending the
// trunk produces an empty Deleted; a fork with equal or lesser cumulative
// work than the current trunk produces an empty Inserted (it is recorded
// but not promoted).
func (t *SparseTree) Insert(ref Elem) (ChangeSet, error) {
	hash := ref.Hash()
	if t.Have(hash) {
		return ChangeSet{}, errAlreadyIndexed(hash)
	}

	if len(t.trunk) == 0 && len(t.branches) == 0 {
		cumWork := new(big.Int).Set(ref.Work())
		t.trunk = append(t.trunk, node{elem: ref, height: 0, cumWork: cumWork, trunk: true})
		t.byHash[hash] = 0
		return ChangeSet{Inserted: []chainhash.Hash{hash}}, nil
	}

	prevWork, ok := t.cumulativeWorkAt(ref.Prev())
	if !ok {
		return ChangeSet{}, errUnknownPrev(ref.Prev())
	}
	cumWork := new(big.Int).Add(prevWork, ref.Work())

	prevHeight, _ := t.Height(ref.Prev())
	newHeight := prevHeight + 1

	// Extending the trunk tip directly: cheap append, no reorg.
	if len(t.trunk) > 0 && ref.Prev() == t.trunk[len(t.trunk)-1].elem.Hash() {
		t.trunk = append(t.trunk, node{elem: ref, height: newHeight, cumWork: cumWork, trunk: true})
		t.byHash[hash] = newHeight
		return ChangeSet{Inserted: []chainhash.Hash{hash}}, nil
	}

	// Otherwise this is a branch node; record it and decide whether it
	// outweighs the current trunk.
	n := &node{elem: ref, height: newHeight, cumWork: cumWork, branchPredHash: ref.Prev()}
	t.branches[hash] = n

	tipWork := t.trunk[len(t.trunk)-1].cumWork
	if cumWork.Cmp(tipWork) <= 0 {
		return ChangeSet{}, nil
	}

	return t.promoteBranch(n)
}

type errAlreadyIndexed chainhash.Hash

func (e errAlreadyIndexed) Error() string {
	return "hash already indexed: " + chainhash.Hash(e).String()
}

type errUnknownPrev chainhash.Hash

func (e errUnknownPrev) Error() string {
	return "prev-hash not indexed: " + chainhash.Hash(e).String()
}

// promoteBranch walks newTip's branch chain back to its first ancestor
// still on the trunk, then rebuilds the trunk from that divergence point
// forward with the branch's elements, returning the blocks detached from
// the old trunk and attached from the new one (highest-first / lowest-
// first respectively, as callers expect for sequential detach/attach).
func (t *SparseTree) promoteBranch(newTip *node) (ChangeSet, error) {
	var newChain []*node
	cur := newTip
	for {
		newChain = append(newChain, cur)
		if divHeight, ok := t.byHash[cur.branchPredHash]; ok {
			divergence := divHeight
			return t.spliceAt(divergence, newChain)
		}
		pred, ok := t.branches[cur.branchPredHash]
		if !ok {
			return ChangeSet{}, errUnknownPrev(cur.branchPredHash)
		}
		cur = pred
	}
}

// spliceAt replaces trunk[divergence+1:] with newChain (given newest-
// first) and returns the resulting detach/attach set.
func (t *SparseTree) spliceAt(divergence int64, newChainNewestFirst []*node) (ChangeSet, error) {
	var cs ChangeSet
	for i := len(t.trunk) - 1; int64(i) > divergence; i-- {
		old := t.trunk[i]
		cs.Deleted = append(cs.Deleted, old.elem.Hash())
		delete(t.byHash, old.elem.Hash())
		t.branches[old.elem.Hash()] = &node{
			elem:           old.elem,
			height:         old.height,
			cumWork:        old.cumWork,
			branchPredHash: old.elem.Prev(),
		}
	}
	t.trunk = t.trunk[:divergence+1]

	for i := len(newChainNewestFirst) - 1; i >= 0; i-- {
		n := newChainNewestFirst[i]
		delete(t.branches, n.elem.Hash())
		height := int64(len(t.trunk))
		t.trunk = append(t.trunk, node{elem: n.elem, height: height, cumWork: n.cumWork, trunk: true})
		t.byHash[n.elem.Hash()] = height
		cs.Inserted = append(cs.Inserted, n.elem.Hash())
	}
	return cs, nil
}

// Reinstate promotes the branch ending at tip back onto the trunk
// regardless of work comparison. It is the rollback path for a failed
// reorganisation commit: the blocks just spliced in have been popped off,
// and the previous trunk blocks (now sitting in the branch map) must
// become canonical again so the index matches the rolled-back storage.
func (t *SparseTree) Reinstate(tip chainhash.Hash) (ChangeSet, error) {
	if _, onTrunk := t.byHash[tip]; onTrunk {
		return ChangeSet{}, nil
	}
	n, ok := t.branches[tip]
	if !ok {
		return ChangeSet{}, errUnknownPrev(tip)
	}
	return t.promoteBranch(n)
}

// PopBack undoes the most recent trunk append, used to roll back a failed
// commit.
func (t *SparseTree) PopBack() (Elem, bool) {
	if len(t.trunk) == 0 {
		return nil, false
	}
	last := t.trunk[len(t.trunk)-1]
	t.trunk = t.trunk[:len(t.trunk)-1]
	delete(t.byHash, last.elem.Hash())
	return last.elem, true
}

// Trim discards the trunk below height and any branch whose deepest node
// ends below height, returning every pruned hash. When the trunk is cut,
// surviving trunk and branch heights are renumbered so the first remaining
// trunk element sits at height 0.
func (t *SparseTree) Trim(height int64) []chainhash.Hash {
	var pruned []chainhash.Hash
	renumbered := false
	if height > 0 && int(height) <= len(t.trunk) {
		for i := int64(0); i < height; i++ {
			h := t.trunk[i].elem.Hash()
			pruned = append(pruned, h)
			delete(t.byHash, h)
		}
		remaining := make([]node, len(t.trunk)-int(height))
		copy(remaining, t.trunk[height:])
		for i := range remaining {
			remaining[i].height -= height
			t.byHash[remaining[i].elem.Hash()] = remaining[i].height
		}
		t.trunk = remaining
		renumbered = true
	}

	for hash, n := range t.branches {
		if n.height < height {
			pruned = append(pruned, hash)
			delete(t.branches, hash)
		} else if renumbered {
			n.height -= height
		}
	}
	return pruned
}

// Iterator walks the trunk forward (Next) or a branch backward to its
// divergence point (Prev) via prev-links, per the iterator ordering contract:
// a < b means "a is an ancestor of b on the same branch", never a total
// order.
type Iterator struct {
	tree *SparseTree
	hash chainhash.Hash
}

// Iter returns an iterator positioned at hash, or ok=false if unknown.
func (t *SparseTree) Iter(hash chainhash.Hash) (Iterator, bool) {
	if !t.Have(hash) {
		return Iterator{}, false
	}
	return Iterator{tree: t, hash: hash}, true
}

// Elem returns the element the iterator currently points at.
func (it Iterator) Elem() (Elem, bool) { return it.tree.Find(it.hash) }

// Next advances along the trunk; it is only valid when the iterator sits
// on the trunk and is not already at the tip.
func (it Iterator) Next() (Iterator, bool) {
	h, ok := it.tree.byHash[it.hash]
	if !ok || int(h)+1 >= len(it.tree.trunk) {
		return Iterator{}, false
	}
	return Iterator{tree: it.tree, hash: it.tree.trunk[h+1].elem.Hash()}, true
}

// Prev walks to the predecessor, across the trunk/branch boundary as
// needed.
func (it Iterator) Prev() (Iterator, bool) {
	e, ok := it.Elem()
	if !ok {
		return Iterator{}, false
	}
	prev := e.Prev()
	if !it.tree.Have(prev) {
		return Iterator{}, false
	}
	return Iterator{tree: it.tree, hash: prev}, true
}
