package lexer

import (
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feast/pkg/position"
)

// Type identifies the lexical class of a token
type Type uint8

const (
	// Invalid is the zero value and also marks "no token open" inside the scanner
	Invalid Type = iota

	TagOpen      // <
	TagClose     // >
	ForwardSlash // /
	Assign       // =

	// String is a bare run of non-delimiter, non-whitespace characters
	String

	// SingleQuotedString and DoubleQuotedString are quoted literals without embedded expressions
	SingleQuotedString
	DoubleQuotedString

	// The segments of a quoted literal broken up by embedded expressions
	SingleQuotedStringStart
	SingleQuotedStringMiddle
	SingleQuotedStringEnd
	DoubleQuotedStringStart
	DoubleQuotedStringMiddle
	DoubleQuotedStringEnd

	// Expression is the raw text between a pair of matching braces
	Expression
)

var typeNames = map[Type]string{
	Invalid:                  "INVALID",
	TagOpen:                  "TAG_OPEN",
	TagClose:                 "TAG_CLOSE",
	ForwardSlash:             "FORWARD_SLASH",
	Assign:                   "ASSIGN",
	String:                   "STRING",
	SingleQuotedString:       "SINGLE_QUOTED_STRING",
	DoubleQuotedString:       "DOUBLE_QUOTED_STRING",
	SingleQuotedStringStart:  "SINGLE_QUOTED_STRING_START",
	SingleQuotedStringMiddle: "SINGLE_QUOTED_STRING_MIDDLE",
	SingleQuotedStringEnd:    "SINGLE_QUOTED_STRING_END",
	DoubleQuotedStringStart:  "DOUBLE_QUOTED_STRING_START",
	DoubleQuotedStringMiddle: "DOUBLE_QUOTED_STRING_MIDDLE",
	DoubleQuotedStringEnd:    "DOUBLE_QUOTED_STRING_END",
	Expression:               "EXPRESSION",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	v, ok := typesByName[string(text)]
	if !ok {
		return errors.Errorf("unknown token type %q", string(text))
	}
	*t = v
	return nil
}

// Quote returns the quote character that delimits a quoted token type, or 0.
func (t Type) Quote() rune {
	switch t {
	case SingleQuotedString, SingleQuotedStringStart, SingleQuotedStringMiddle, SingleQuotedStringEnd:
		return '\''
	case DoubleQuotedString, DoubleQuotedStringStart, DoubleQuotedStringMiddle, DoubleQuotedStringEnd:
		return '"'
	}
	return 0
}

func (t Type) IsQuoted() bool {
	return t.Quote() != 0
}

// Token is a lexical token. Value is always the source text between Start and
// End; quoted strings and expressions exclude their delimiters.
type Token struct {
	Type  Type              `json:"type" yaml:"type"`
	Start position.Position `json:"start" yaml:"start"`
	End   position.Position `json:"end" yaml:"end"`
	Value string            `json:"value" yaml:"value"`
}

func newToken(source string, typ Type, start, end position.Position) Token {
	if end.Index < start.Index {
		end = start
	}
	return Token{
		Type:  typ,
		Start: start,
		End:   end,
		Value: source[start.Index:end.Index],
	}
}

func (t Token) Span() position.Range {
	return position.NewRange(t.Start, t.End)
}

func (t Token) String() string {
	return t.Type.String() + "(" + t.Value + ")@" + t.Start.String()
}
