// Package ast defines the concrete syntax tree produced by the feast parser.
package ast

import (
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feast/pkg/lexer"
	"github.com/walteh/feast/pkg/position"
)

// NodeType identifies the kind of a Node
type NodeType uint8

const (
	NodeInvalid NodeType = iota
	NodeTemplate
	NodeTag
	NodeAttribute
	NodeAttributeName
	NodeAttributeValue
	// NodeAttributeTemplateValue wraps the literal and expression segments of one interpolated value
	NodeAttributeTemplateValue
	NodeExpression
	NodeError
)

var nodeTypeNames = map[NodeType]string{
	NodeInvalid:                "INVALID",
	NodeTemplate:               "TEMPLATE",
	NodeTag:                    "TAG",
	NodeAttribute:              "ATTRIBUTE",
	NodeAttributeName:          "ATTRIBUTE_NAME",
	NodeAttributeValue:         "ATTRIBUTE_VALUE",
	NodeAttributeTemplateValue: "ATTRIBUTE_TEMPLATE_VALUE",
	NodeExpression:             "EXPRESSION",
	NodeError:                  "ERROR",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *NodeType) UnmarshalText(text []byte) error {
	for typ, name := range nodeTypeNames {
		if name == string(text) {
			*t = typ
			return nil
		}
	}
	return errors.Errorf("unknown node type %q", string(text))
}

// Node is one element of the tree. Children are in source order and a node is
// never modified after it has been attached to its parent.
type Node struct {
	Type  NodeType          `json:"type" yaml:"type"`
	Start position.Position `json:"start" yaml:"start"`
	End   position.Position `json:"end" yaml:"end"`

	// Value is the token the node was built from. For ERROR nodes it carries the
	// offending token's type and span, with the message as its value.
	Value    *lexer.Token `json:"value,omitempty" yaml:"value,omitempty"`
	Children []*Node      `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n *Node) Span() position.Range {
	return position.NewRange(n.Start, n.End)
}

// Name returns the value token's text, or "" when the node has no value.
func (n *Node) Name() string {
	if n == nil || n.Value == nil {
		return ""
	}
	return n.Value.Value
}

// Message returns the message of an ERROR node.
func (n *Node) Message() string {
	if n == nil || n.Type != NodeError {
		return ""
	}
	return n.Name()
}

// Child returns the first child of the given type.
func (n *Node) Child(typ NodeType) *Node {
	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

func (n *Node) String() string {
	if n.Value != nil {
		return fmt.Sprintf("%s(%q)@%s", n.Type, n.Value.Value, n.Start)
	}
	return fmt.Sprintf("%s@%s", n.Type, n.Start)
}

// NewError builds an ERROR node for an offending token.
func NewError(tok lexer.Token, message string) *Node {
	return &Node{
		Type:  NodeError,
		Start: tok.Start,
		End:   tok.End,
		Value: &lexer.Token{
			Type:  tok.Type,
			Start: tok.Start,
			End:   tok.End,
			Value: message,
		},
	}
}

// SyntaxError describes an ERROR node as a Go error
type SyntaxError struct {
	Token   lexer.Type
	Range   position.Range
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Range.Start.Line, e.Range.Start.Column, e.Message)
}

// Err returns a *SyntaxError when n is an ERROR node and nil otherwise.
func (n *Node) Err() error {
	if n == nil || n.Type != NodeError {
		return nil
	}
	se := &SyntaxError{Range: n.Span()}
	if n.Value != nil {
		se.Token = n.Value.Type
		se.Message = n.Value.Value
	}
	return se
}
