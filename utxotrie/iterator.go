package utxotrie

// Iterator walks the trie along its key ordering. A zero Iterator is the
// end() sentinel. Keys are fixed-width byte strings, so the walk order is
// the usual lexicographic one.
type Iterator struct {
	path []*node // path[0] is the trie root, path[len-1] the current leaf
}

// Valid reports whether the iterator refers to an element.
func (it Iterator) Valid() bool { return len(it.path) > 0 }

// Elem returns the element the iterator points at.
func (it Iterator) Elem() Elem { return it.path[len(it.path)-1].elem }

// Key returns the key of the element the iterator points at.
func (it Iterator) Key() Key { return it.path[len(it.path)-1].key }

// Next returns an iterator at the next-greater key, or End() if it is
// currently at the last element.
func (it Iterator) Next() Iterator {
	path := it.path
	for i := len(path) - 2; i >= 0; i-- {
		parent := path[i]
		if parent.left == path[i+1] {
			newPath := append(append([]*node{}, path[:i+1]...), parent.right)
			n := parent.right
			for !n.leaf {
				n = n.left
				newPath = append(newPath, n)
			}
			return Iterator{path: newPath}
		}
	}
	return Iterator{}
}

// Prev returns an iterator at the next-lesser key, or End() if it is
// currently at the first element.
func (it Iterator) Prev() Iterator {
	path := it.path
	for i := len(path) - 2; i >= 0; i-- {
		parent := path[i]
		if parent.right == path[i+1] {
			newPath := append(append([]*node{}, path[:i+1]...), parent.left)
			n := parent.left
			for !n.leaf {
				n = n.right
				newPath = append(newPath, n)
			}
			return Iterator{path: newPath}
		}
	}
	return Iterator{}
}
