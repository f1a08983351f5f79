package lexer

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/walteh/feast/pkg/position"
)

// Options configures a single tokenizer run
type Options struct {
	// LineDelimiter is one or two characters drawn from \r and \n. Empty means
	// position.DefaultLineDelimiter.
	LineDelimiter string
}

// Validate reports an unusable line delimiter. Tokenize itself never fails and
// falls back to the default instead.
func (o Options) Validate() error {
	if o.LineDelimiter == "" {
		return nil
	}
	return position.ValidateLineDelimiter(o.LineDelimiter)
}

func (o Options) lineDelimiter(ctx context.Context) string {
	if o.LineDelimiter == "" {
		return position.DefaultLineDelimiter
	}
	if err := position.ValidateLineDelimiter(o.LineDelimiter); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("falling back to default line delimiter")
		return position.DefaultLineDelimiter
	}
	return o.LineDelimiter
}

// Result is the complete output of a tokenizer run
type Result struct {
	Tokens []Token
	// End is the position just past the last character of the source
	End position.Position
	// Unterminated points at the final token when the source ended inside a
	// quoted string or an expression; nil otherwise.
	Unterminated *Token
}

// Tokenize converts source into its token sequence. It accepts any input.
func Tokenize(ctx context.Context, source string, opts Options) []Token {
	return Scan(ctx, source, opts).Tokens
}

// Scan is Tokenize with the end-of-input details the parser needs.
func Scan(ctx context.Context, source string, opts Options) *Result {
	s := &scanner{
		log:     zerolog.Ctx(ctx),
		src:     source,
		tracker: position.NewTracker(source, opts.lineDelimiter(ctx)),
		tokens:  make([]Token, 0, len(source)/4+1),
	}

	for i := 0; i < len(source); {
		r, size := utf8.DecodeRuneInString(source[i:])
		s.step(r, size)
		i += size
	}

	return s.finish()
}

type scanner struct {
	log     *zerolog.Logger
	src     string
	tracker *position.Tracker
	tokens  []Token

	// at is the position of the character being consumed, next the one after it
	at, next position.Position

	open      Type
	openStart position.Position

	// depth counts unbalanced braces of the expression in flight
	depth int
	// resume is the quoted segment type to continue with after the expression
	// in flight closes, Invalid when the expression is not inside a string
	resume Type
}

func (s *scanner) step(r rune, size int) {
	s.at = s.tracker.Position()
	s.tracker.Advance(r, size)
	s.next = s.tracker.Position()

	key := ruleKey{classify(r), s.open}
	ru, ok := rules[key]
	if !ok {
		ru = ruleExtend
	}

	if e := s.log.Trace(); e.Enabled() {
		e.Str("char", string(r)).
			Int("index", s.at.Index).
			Stringer("open", s.open).
			Int("depth", s.depth).
			Str("rule", ru.name).
			Msg("tokenizer rule")
	}

	ru.apply(s)
}

func (s *scanner) begin(typ Type, start position.Position) {
	s.open = typ
	s.openStart = start
}

func (s *scanner) openExpression(resume Type) {
	s.begin(Expression, s.next)
	s.depth = 1
	s.resume = resume
}

// end closes the token in flight at the current character, if any.
func (s *scanner) end() {
	s.endAs(s.open)
}

func (s *scanner) endAs(typ Type) {
	if s.open == Invalid {
		return
	}
	s.tokens = append(s.tokens, newToken(s.src, typ, s.openStart, s.at))
	s.open = Invalid
	s.depth = 0
	s.resume = Invalid
}

func (s *scanner) finish() *Result {
	s.at = s.tracker.Position()

	res := &Result{End: s.at}

	dangling := s.open != Invalid && s.open != String
	if dangling {
		s.log.Debug().
			Stringer("open", s.open).
			Stringer("start", s.openStart).
			Msg("source ended inside an unterminated token")
	}
	s.end()

	res.Tokens = s.tokens
	if dangling {
		res.Unterminated = &res.Tokens[len(res.Tokens)-1]
	}
	return res
}
