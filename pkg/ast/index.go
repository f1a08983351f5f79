package ast

import (
	"github.com/tidwall/btree"
)

// Index answers "which nodes cover this byte offset" for a parsed tree.
//
// Keys are node start offsets. Nodes sharing a start offset are kept in
// pre-order, so ancestors always come before their descendants.
type Index struct {
	tree btree.Map[int, []*Node]
	size int
}

// NewIndex indexes every node of root.
func NewIndex(root *Node) *Index {
	idx := &Index{}
	Walk(root, func(n *Node, _ int) bool {
		existing, _ := idx.tree.Get(n.Start.Index)
		idx.tree.Set(n.Start.Index, append(existing, n))
		idx.size++
		return true
	})
	return idx
}

// At returns the nodes whose span contains offset, outermost first.
func (idx *Index) At(offset int) []*Node {
	var out []*Node
	iter := idx.tree.Iter()
	for more := iter.First(); more && iter.Key() <= offset; more = iter.Next() {
		for _, n := range iter.Value() {
			if n.Span().Contains(offset) {
				out = append(out, n)
			}
		}
	}
	return out
}

// Innermost returns the deepest node covering offset, or nil.
func (idx *Index) Innermost(offset int) *Node {
	chain := idx.At(offset)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

func (idx *Index) Len() int {
	return idx.size
}
