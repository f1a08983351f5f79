package ast

import (
	"fmt"
	"io"
	"strings"
)

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Dump writes an indented outline of the tree, one node per line.
func Dump(w io.Writer, n *Node) error {
	var err error
	Walk(n, func(n *Node, depth int) bool {
		if err != nil {
			return false
		}
		indent := strings.Repeat("  ", depth)
		if n.Value != nil {
			_, err = fmt.Fprintf(w, "%s%s %q [%s-%s]\n", indent, n.Type, n.Value.Value, n.Start, n.End)
		} else {
			_, err = fmt.Fprintf(w, "%s%s [%s-%s]\n", indent, n.Type, n.Start, n.End)
		}
		return true
	})
	return err
}
