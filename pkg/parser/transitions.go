package parser

import (
	"github.com/walteh/feast/pkg/ast"
	"github.com/walteh/feast/pkg/lexer"
)

// State is the position of the parser within the tag grammar
type State uint8

const (
	StateInitial State = iota
	// StateTagOpen follows "<"
	StateTagOpen
	// StateAttributeName follows a tag name or a complete attribute
	StateAttributeName
	// StateAttributeAssign follows an attribute name that may still take a value
	StateAttributeAssign
	// StateAttributeValue follows "="
	StateAttributeValue
	// StateAttributeTemplateValue is inside a quoted value with embedded expressions
	StateAttributeTemplateValue
	// StateClosing follows "/"
	StateClosing
)

var stateNames = map[State]string{
	StateInitial:                "INITIAL",
	StateTagOpen:                "TAG_OPEN",
	StateAttributeName:          "ATTRIBUTE_NAME",
	StateAttributeAssign:        "ATTRIBUTE_ASSIGN",
	StateAttributeValue:         "ATTRIBUTE_VALUE",
	StateAttributeTemplateValue: "ATTRIBUTE_TEMPLATE_VALUE",
	StateClosing:                "CLOSING",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// expected describes, per state, what a syntax error message says was wanted
var expected = map[State]string{
	StateInitial:                `"<"`,
	StateTagOpen:                "a tag name",
	StateAttributeName:          `an attribute name or "/"`,
	StateAttributeAssign:        `"=", an attribute name or "/"`,
	StateAttributeValue:         "an attribute value",
	StateAttributeTemplateValue: "an expression or the rest of the quoted value",
	StateClosing:                `">"`,
}

type transitionKey struct {
	state State
	token lexer.Type
}

type transition struct {
	name  string
	apply func(p *parser, tok lexer.Token) error
}

var transitions = buildTransitions()

func buildTransitions() map[transitionKey]transition {
	t := map[transitionKey]transition{
		{StateInitial, lexer.TagOpen}:              {"open tag", openTag},
		{StateTagOpen, lexer.String}:               {"tag name", nameTag},
		{StateAttributeName, lexer.String}:         {"attribute name", openAttribute},
		{StateAttributeAssign, lexer.String}:       {"valueless attribute", closeAttributeAndOpen},
		{StateAttributeAssign, lexer.Assign}:       {"assign", assign},
		{StateAttributeName, lexer.ForwardSlash}:   {"self close", selfClose},
		{StateAttributeAssign, lexer.ForwardSlash}: {"valueless attribute self close", closeAttributeAndSelfClose},
		{StateClosing, lexer.TagClose}:             {"close tag", closeTag},

		{StateAttributeValue, lexer.String}:             {"literal value", literalValue},
		{StateAttributeValue, lexer.SingleQuotedString}: {"literal value", literalValue},
		{StateAttributeValue, lexer.DoubleQuotedString}: {"literal value", literalValue},
		{StateAttributeValue, lexer.Expression}:         {"expression value", expressionValue},

		{StateAttributeTemplateValue, lexer.Expression}: {"template expression", templateExpression},
	}

	for _, family := range []struct{ start, middle, end lexer.Type }{
		{lexer.SingleQuotedStringStart, lexer.SingleQuotedStringMiddle, lexer.SingleQuotedStringEnd},
		{lexer.DoubleQuotedStringStart, lexer.DoubleQuotedStringMiddle, lexer.DoubleQuotedStringEnd},
	} {
		t[transitionKey{StateAttributeValue, family.start}] = transition{"template start", templateStart}
		t[transitionKey{StateAttributeTemplateValue, family.middle}] = transition{"template middle", templateMiddle}
		t[transitionKey{StateAttributeTemplateValue, family.end}] = transition{"template end", templateEnd}
	}

	return t
}

func openTag(p *parser, tok lexer.Token) error {
	p.push(&ast.Node{Type: ast.NodeTag, Start: tok.Start, End: tok.End})
	p.state = StateTagOpen
	return nil
}

func nameTag(p *parser, tok lexer.Token) error {
	tag := p.current()
	tag.Value = &tok
	tag.End = tok.End
	p.state = StateAttributeName
	return nil
}

// openAttribute starts an attribute and bakes its name. The attribute itself
// stays on the stack so that a value can still be attached.
func openAttribute(p *parser, tok lexer.Token) error {
	p.push(&ast.Node{Type: ast.NodeAttribute, Start: tok.Start, End: tok.End})
	p.push(&ast.Node{Type: ast.NodeAttributeName, Start: tok.Start, End: tok.End, Value: &tok})
	if err := p.bake(ast.NodeAttribute); err != nil {
		return err
	}
	p.state = StateAttributeAssign
	return nil
}

func closeAttributeAndOpen(p *parser, tok lexer.Token) error {
	if err := p.bake(ast.NodeTag); err != nil {
		return err
	}
	return openAttribute(p, tok)
}

func assign(p *parser, _ lexer.Token) error {
	p.state = StateAttributeValue
	return nil
}

func selfClose(p *parser, _ lexer.Token) error {
	p.state = StateClosing
	return nil
}

func closeAttributeAndSelfClose(p *parser, tok lexer.Token) error {
	if err := p.bake(ast.NodeTag); err != nil {
		return err
	}
	return selfClose(p, tok)
}

func closeTag(p *parser, tok lexer.Token) error {
	p.current().End = tok.End
	if err := p.bake(ast.NodeTemplate); err != nil {
		return err
	}
	p.state = StateInitial
	return nil
}

func literalValue(p *parser, tok lexer.Token) error {
	p.push(&ast.Node{Type: ast.NodeAttributeValue, Start: tok.Start, End: tok.End, Value: &tok})
	if err := p.bake(ast.NodeAttribute); err != nil {
		return err
	}
	return p.closeAttribute(tok)
}

func expressionValue(p *parser, tok lexer.Token) error {
	p.push(&ast.Node{Type: ast.NodeAttributeTemplateValue, Start: tok.Start, End: tok.End})
	p.push(&ast.Node{Type: ast.NodeExpression, Start: tok.Start, End: tok.End, Value: &tok})
	if err := p.bake(ast.NodeAttributeTemplateValue); err != nil {
		return err
	}
	if err := p.bake(ast.NodeAttribute); err != nil {
		return err
	}
	return p.closeAttribute(tok)
}

func templateStart(p *parser, tok lexer.Token) error {
	p.push(&ast.Node{Type: ast.NodeAttributeTemplateValue, Start: tok.Start, End: tok.End})
	p.quote = tok.Type.Quote()
	p.state = StateAttributeTemplateValue
	return p.segment(tok, false)
}

func templateExpression(p *parser, tok lexer.Token) error {
	p.current().End = tok.End
	p.push(&ast.Node{Type: ast.NodeExpression, Start: tok.Start, End: tok.End, Value: &tok})
	return p.bake(ast.NodeAttributeTemplateValue)
}

func templateMiddle(p *parser, tok lexer.Token) error {
	if tok.Type.Quote() != p.quote {
		p.fail(tok, p.unexpected(tok))
		return nil
	}
	return p.segment(tok, true)
}

func templateEnd(p *parser, tok lexer.Token) error {
	if tok.Type.Quote() != p.quote {
		p.fail(tok, p.unexpected(tok))
		return nil
	}
	if err := p.segment(tok, false); err != nil {
		return err
	}
	p.quote = 0
	if err := p.bake(ast.NodeAttribute); err != nil {
		return err
	}
	return p.closeAttribute(tok)
}
