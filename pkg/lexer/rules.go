package lexer

// charClass groups the characters the tokenizer treats alike
type charClass uint8

const (
	classOther charClass = iota
	classSpace
	classTagOpen
	classTagClose
	classSlash
	classAssign
	classSingleQuote
	classDoubleQuote
	classOpenCurly
	classCloseCurly

	classCount
)

func classify(r rune) charClass {
	switch r {
	case ' ', '\t', '\r', '\n':
		return classSpace
	case '<':
		return classTagOpen
	case '>':
		return classTagClose
	case '/':
		return classSlash
	case '=':
		return classAssign
	case '\'':
		return classSingleQuote
	case '"':
		return classDoubleQuote
	case '{':
		return classOpenCurly
	case '}':
		return classCloseCurly
	}
	return classOther
}

type rule struct {
	name  string
	apply func(s *scanner)
}

type ruleKey struct {
	class charClass
	open  Type
}

// rules is complete over every (class, open token) pair the scanner can be in
// and is never written after init.
var rules = buildRules()

var (
	ruleExtend = rule{"extend", func(s *scanner) {}}

	ruleStartString = rule{"start-string", func(s *scanner) {
		s.begin(String, s.at)
	}}

	ruleEnd = rule{"end", func(s *scanner) {
		s.end()
	}}

	ruleOpenExpression = rule{"open-expression", func(s *scanner) {
		s.end()
		s.openExpression(Invalid)
	}}

	ruleNest = rule{"nest", func(s *scanner) {
		s.depth++
	}}

	ruleUnnest = rule{"unnest", func(s *scanner) {
		s.depth--
		if s.depth > 0 {
			return
		}
		resume := s.resume
		s.end()
		if resume != Invalid {
			s.begin(resume, s.next)
		}
	}}
)

func ruleEmit(typ Type) rule {
	return rule{"emit-" + typ.String(), func(s *scanner) {
		s.end()
		s.tokens = append(s.tokens, newToken(s.src, typ, s.at, s.next))
	}}
}

func ruleOpenQuoted(typ Type) rule {
	return rule{"open-" + typ.String(), func(s *scanner) {
		s.end()
		s.begin(typ, s.next)
	}}
}

// ruleSplice closes the literal segment in flight as its own token of type
// segment and opens an embedded expression. Once the expression closes, the
// quoted string continues as a token of type resume.
func ruleSplice(segment, resume Type) rule {
	return rule{"splice-" + segment.String(), func(s *scanner) {
		s.endAs(segment)
		s.openExpression(resume)
	}}
}

type quoteFamily struct {
	quote                   charClass
	plain, start, mid, last Type
}

var quoteFamilies = []quoteFamily{
	{classSingleQuote, SingleQuotedString, SingleQuotedStringStart, SingleQuotedStringMiddle, SingleQuotedStringEnd},
	{classDoubleQuote, DoubleQuotedString, DoubleQuotedStringStart, DoubleQuotedStringMiddle, DoubleQuotedStringEnd},
}

func buildRules() map[ruleKey]rule {
	table := make(map[ruleKey]rule)
	on := func(class charClass, open Type, r rule) {
		table[ruleKey{class, open}] = r
	}
	every := func(open Type, r rule) {
		for c := classOther; c < classCount; c++ {
			on(c, open, r)
		}
	}

	// default context: nothing open, or a bare string open
	for _, open := range []Type{Invalid, String} {
		on(classSpace, open, ruleEnd)
		on(classTagOpen, open, ruleEmit(TagOpen))
		on(classTagClose, open, ruleEmit(TagClose))
		on(classSlash, open, ruleEmit(ForwardSlash))
		on(classAssign, open, ruleEmit(Assign))
		on(classSingleQuote, open, ruleOpenQuoted(SingleQuotedString))
		on(classDoubleQuote, open, ruleOpenQuoted(DoubleQuotedString))
		on(classOpenCurly, open, ruleOpenExpression)
	}
	on(classOther, Invalid, ruleStartString)
	on(classCloseCurly, Invalid, ruleStartString)
	on(classOther, String, ruleExtend)
	on(classCloseCurly, String, ruleExtend)

	// quoted literals; the _END variant is what is in flight after an embedded expression
	for _, f := range quoteFamilies {
		for _, open := range []Type{f.plain, f.last} {
			every(open, ruleExtend)
			on(f.quote, open, ruleEnd)
		}
		on(classOpenCurly, f.plain, ruleSplice(f.start, f.last))
		on(classOpenCurly, f.last, ruleSplice(f.mid, f.last))
	}

	// expressions: everything is content except the braces that balance
	every(Expression, ruleExtend)
	on(classOpenCurly, Expression, ruleNest)
	on(classCloseCurly, Expression, ruleUnnest)

	return table
}
