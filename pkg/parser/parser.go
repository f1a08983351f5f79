// Package parser builds the feast syntax tree from the tokenizer output.
//
//	INITIAL                  "<"        TAG_OPEN
//	TAG_OPEN                 name       ATTRIBUTE_NAME
//	ATTRIBUTE_NAME           name       ATTRIBUTE_ASSIGN
//	ATTRIBUTE_NAME           "/"        CLOSING
//	ATTRIBUTE_ASSIGN         name       ATTRIBUTE_ASSIGN
//	ATTRIBUTE_ASSIGN         "="        ATTRIBUTE_VALUE
//	ATTRIBUTE_ASSIGN         "/"        CLOSING
//	ATTRIBUTE_VALUE          value      ATTRIBUTE_NAME
//	ATTRIBUTE_VALUE          'a{        ATTRIBUTE_TEMPLATE_VALUE
//	ATTRIBUTE_TEMPLATE_VALUE }b{ {x}    ATTRIBUTE_TEMPLATE_VALUE
//	ATTRIBUTE_TEMPLATE_VALUE }c'        ATTRIBUTE_NAME
//	CLOSING                  ">"        INITIAL
//
// Parsing stops at the first token with no transition and returns an ERROR
// node in place of the tree.
package parser

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feast/pkg/ast"
	"github.com/walteh/feast/pkg/lexer"
	"github.com/walteh/feast/pkg/position"
)

// ErrCorruptedStack means the construction stack did not hold what a transition
// expected. It points at a bug in the parser, never at bad input.
var ErrCorruptedStack = errors.New("corrupted stack")

// Options configures a single parse
type Options struct {
	// LineDelimiter is passed through to the tokenizer
	LineDelimiter string
	// Strict rejects sources that end inside a quoted string or an expression
	Strict bool
}

// Parse tokenizes and parses source. Syntax errors are returned as an ERROR root
// node; the error is non-nil only for ErrCorruptedStack.
func Parse(ctx context.Context, source string, opts Options) (*ast.Node, error) {
	res := lexer.Scan(ctx, source, lexer.Options{LineDelimiter: opts.LineDelimiter})
	return ParseTokens(ctx, res, opts)
}

// ParseTokens runs the parser over an existing tokenizer result.
func ParseTokens(ctx context.Context, res *lexer.Result, opts Options) (*ast.Node, error) {
	root := &ast.Node{Type: ast.NodeTemplate, Start: position.Start(), End: res.End}

	p := &parser{
		log:   zerolog.Ctx(ctx),
		stack: []*ast.Node{root},
		state: StateInitial,
	}

	for i, tok := range res.Tokens {
		if opts.Strict && res.Unterminated != nil && i == len(res.Tokens)-1 {
			p.fail(tok, fmt.Sprintf("unterminated %s", tok.Type))
			break
		}
		if err := p.consume(tok); err != nil {
			return nil, err
		}
		if p.failed != nil {
			break
		}
	}

	if p.failed == nil && p.state != StateInitial {
		eof := lexer.Token{Start: res.End, End: res.End}
		p.fail(eof, fmt.Sprintf("unexpected end of input, expected %s", expected[p.state]))
	}

	if p.failed != nil {
		p.log.Debug().
			Stringer("state", p.state).
			Stringer("at", p.failed.Start).
			Str("message", p.failed.Message()).
			Msg("syntax error")
		return p.failed, nil
	}

	if len(p.stack) != 1 || p.stack[0] != root {
		return nil, errors.Errorf("%w: %d nodes left open at end of input", ErrCorruptedStack, len(p.stack)-1)
	}

	return root, nil
}

type parser struct {
	log *zerolog.Logger

	// stack holds the nodes under construction, the root first
	stack []*ast.Node
	state State
	// quote is the quote character of the template value in progress
	quote rune

	failed *ast.Node
}

func (p *parser) consume(tok lexer.Token) error {
	tr, ok := transitions[transitionKey{p.state, tok.Type}]
	if !ok {
		p.fail(tok, p.unexpected(tok))
		return nil
	}

	if e := p.log.Trace(); e.Enabled() {
		e.Stringer("state", p.state).
			Stringer("token", tok).
			Str("transition", tr.name).
			Msg("parser transition")
	}

	return tr.apply(p, tok)
}

func (p *parser) current() *ast.Node {
	return p.stack[len(p.stack)-1]
}

func (p *parser) push(n *ast.Node) {
	p.stack = append(p.stack, n)
}

// bake attaches the current node to its parent and makes the parent current.
// The parent must be of type expect.
func (p *parser) bake(expect ast.NodeType) error {
	if len(p.stack) < 2 {
		return errors.Errorf("%w: nothing to bake into %s", ErrCorruptedStack, expect)
	}

	n := p.current()
	p.stack = p.stack[:len(p.stack)-1]
	parent := p.current()

	if parent.Type != expect {
		return errors.Errorf("%w: expected %s, but %s was found instead", ErrCorruptedStack, expect, parent.Type)
	}

	parent.Children = append(parent.Children, n)
	return nil
}

// closeAttribute finishes the attribute on top of the stack at tok and returns
// to its tag.
func (p *parser) closeAttribute(tok lexer.Token) error {
	p.current().End = tok.End
	if err := p.bake(ast.NodeTag); err != nil {
		return err
	}
	p.state = StateAttributeName
	return nil
}

// segment adds the literal part of a template value. Empty parts are skipped.
// segment adds a literal segment to the open template value. Empty segments
// are kept only when keepEmpty is set, so two expressions are never adjacent.
func (p *parser) segment(tok lexer.Token, keepEmpty bool) error {
	p.current().End = tok.End
	if tok.Value == "" && !keepEmpty {
		return nil
	}

	lit := tok
	lit.Type = lexer.String
	p.push(&ast.Node{Type: ast.NodeAttributeValue, Start: tok.Start, End: tok.End, Value: &lit})
	return p.bake(ast.NodeAttributeTemplateValue)
}

func (p *parser) fail(tok lexer.Token, message string) {
	p.failed = ast.NewError(tok, message)
}

func (p *parser) unexpected(tok lexer.Token) string {
	return fmt.Sprintf("unexpected %s %q, expected %s", tok.Type, tok.Value, expected[p.state])
}
