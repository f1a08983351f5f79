package ast

import (
	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

var ErrInvalidTree = errors.New("invalid tree")

// allowedChildren lists, per node type, which child types may appear
var allowedChildren = map[NodeType][]NodeType{
	NodeTemplate:               {NodeTag},
	NodeTag:                    {NodeAttribute},
	NodeAttribute:              {NodeAttributeName, NodeAttributeValue, NodeAttributeTemplateValue},
	NodeAttributeTemplateValue: {NodeAttributeValue, NodeExpression},
}

// Validate checks the shape and position invariants of a successfully parsed
// tree. An ERROR root is reported as its syntax error. Every violation found is
// returned, aggregated.
func Validate(root *Node) error {
	if root == nil {
		return errors.Errorf("%w: nil root", ErrInvalidTree)
	}
	if root.Type == NodeError {
		return root.Err()
	}
	if root.Type != NodeTemplate {
		return errors.Errorf("%w: root is %s, expected %s", ErrInvalidTree, root.Type, NodeTemplate)
	}

	var result *multierror.Error
	Walk(root, func(n *Node, _ int) bool {
		for _, err := range validateNode(n) {
			result = multierror.Append(result, err)
		}
		return true
	})
	return result.ErrorOrNil()
}

func validateNode(n *Node) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, errors.Errorf("%w: %s: "+format, append([]any{ErrInvalidTree, n}, args...)...))
	}

	if n.End.Index < n.Start.Index {
		fail("ends before it starts")
	}

	allowed := allowedChildren[n.Type]
	if len(allowed) == 0 && len(n.Children) > 0 {
		fail("must not have children")
	}

	prevEnd := n.Start.Index
	for i, c := range n.Children {
		if !containsType(allowed, c.Type) && len(allowed) > 0 {
			fail("child %d is %s", i, c.Type)
		}
		if c.Start.Index < prevEnd {
			fail("child %d starts at %d, before %d", i, c.Start.Index, prevEnd)
		}
		if c.End.Index > n.End.Index {
			fail("child %d ends at %d, after its parent", i, c.End.Index)
		}
		prevEnd = c.End.Index
	}

	switch n.Type {
	case NodeTag:
		if n.Value == nil {
			fail("has no name")
		}
	case NodeAttribute:
		names, values := 0, 0
		for _, c := range n.Children {
			if c.Type == NodeAttributeName {
				names++
			} else {
				values++
			}
		}
		if names != 1 {
			fail("has %d names", names)
		}
		if values > 1 {
			fail("has %d values", values)
		}
		if len(n.Children) > 0 && n.Children[0].Type != NodeAttributeName {
			fail("name is not the first child")
		}
	case NodeAttributeTemplateValue:
		for i := 1; i < len(n.Children); i++ {
			switch {
			case n.Children[i].Type == NodeAttributeValue && n.Children[i-1].Type == NodeAttributeValue:
				fail("adjacent literal segments at %d", i)
			case n.Children[i].Type == NodeExpression && n.Children[i-1].Type == NodeExpression:
				fail("adjacent expressions at %d", i)
			}
		}
	}

	return errs
}

func containsType(types []NodeType, t NodeType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
