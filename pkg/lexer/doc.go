// Package lexer converts feast template source into tokens.
//
// The tokenizer is a character-level state machine. Its only state is the kind
// of token in flight plus a brace depth counter for expressions; every
// character is dispatched on (character class, token in flight) through a
// table built once at init.
//
//	             ┌───────────── whitespace / < > / = ─────────────┐
//	             ▼                                                │
//	       ┌──────────┐   other    ┌──────────┐                   │
//	       │  (none)  │──────────▶│  STRING  │───────────────────┘
//	       └──────────┘            └──────────┘
//	         │      │
//	     ' or "     {
//	         │      │
//	         ▼      ▼
//	┌──────────────┐  {   ┌────────────┐  } (depth 0)  ┌──────────────────┐
//	│ QUOTED_STRING│────▶│ EXPRESSION │─────────────▶│ QUOTED_STRING_END│
//	└──────────────┘ emit └────────────┘               └──────────────────┘
//	       │         START      ▲   │ { depth+1               │      │
//	   quote                    │   │ } depth-1               │  quote
//	       ▼                    └───┴─────── { emit MIDDLE ───┘      ▼
//	emit QUOTED_STRING                                        emit QUOTED_STRING_END
//
// Inside quoted strings and expressions every character other than the
// matching quote or the braces is content, whitespace included. Token values
// are always re-derived from the source between Start and End.
package lexer
