package utxotrie

import "github.com/libcoin/libcoin-sub001/chainhash"

// BranchStep is one audit-path entry: a sibling hash and which side (left
// or right) it sits on relative to the node being authenticated.
type BranchStep struct {
	SiblingHash chainhash.Hash
	SiblingLeft bool // true if SiblingHash is the left child, current node the right
}

// Branch returns the audit path for the element an iterator points at:
// the sibling hash at each level from the leaf up to the root, suitable
// for an SPV proof that the element belongs under a given trie root.
func (t *Trie) Branch(it Iterator) []BranchStep {
	if !it.Valid() {
		return nil
	}
	path := it.path
	steps := make([]BranchStep, 0, len(path)-1)
	for i := len(path) - 2; i >= 0; i-- {
		parent := path[i]
		child := path[i+1]
		if parent.left == child {
			steps = append(steps, BranchStep{SiblingHash: parent.right.hash, SiblingLeft: false})
		} else {
			steps = append(steps, BranchStep{SiblingHash: parent.left.hash, SiblingLeft: true})
		}
	}
	return steps
}

// Validate re-hashes leafHash up branch and reports whether the result
// equals root — the SPV-side check corresponding to Branch.
func Validate(leafHash chainhash.Hash, branch []BranchStep, root chainhash.Hash) bool {
	cur := leafHash
	for _, step := range branch {
		buf := make([]byte, 0, chainhash.HashSize*2)
		if step.SiblingLeft {
			buf = append(buf, step.SiblingHash[:]...)
			buf = append(buf, cur[:]...)
		} else {
			buf = append(buf, cur[:]...)
			buf = append(buf, step.SiblingHash[:]...)
		}
		cur = chainhash.DoubleHashH(buf)
	}
	return cur == root
}
