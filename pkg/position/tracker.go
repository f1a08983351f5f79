package position

import (
	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// Tracker computes positions while a scanner walks the source one rune at a
// time.
//
// Columns count extended grapheme clusters, so a base character followed by
// combining marks (or a multi-rune emoji) occupies a single column. Carriage
// returns and line feeds never advance the column; the line counter moves only
// once the trailing run of CR/LF characters equals the delimiter exactly.
type Tracker struct {
	src        []byte
	delimiter  string
	pos        Position
	clusterEnd int
	pending    []byte
}

// NewTracker returns a tracker positioned at the start of source. An invalid
// delimiter is replaced by DefaultLineDelimiter.
func NewTracker(source string, delimiter string) *Tracker {
	if ValidateLineDelimiter(delimiter) != nil {
		delimiter = DefaultLineDelimiter
	}
	return &Tracker{
		src:       []byte(source),
		delimiter: delimiter,
		pos:       Start(),
		pending:   make([]byte, 0, 2),
	}
}

// Position returns the position of the next unread character.
func (t *Tracker) Position() Position {
	return t.pos
}

func (t *Tracker) Delimiter() string {
	return t.delimiter
}

// Advance moves past r, which occupies size bytes at the current position.
func (t *Tracker) Advance(r rune, size int) {
	at := t.pos.Index
	if at >= t.clusterEnd {
		adv, _, _ := textseg.ScanGraphemeClusters(t.src[at:], true)
		if adv < size {
			adv = size
		}
		t.clusterEnd = at + adv
	}

	t.pos.Index += size

	switch r {
	case '\r', '\n':
		t.pushBreak(byte(r))
	default:
		t.pending = t.pending[:0]
		if t.pos.Index >= t.clusterEnd {
			t.pos.Column++
		}
	}
}

func (t *Tracker) pushBreak(c byte) {
	t.pending = append(t.pending, c)
	if extra := len(t.pending) - len(t.delimiter); extra > 0 {
		t.pending = append(t.pending[:0], t.pending[extra:]...)
	}

	if string(t.pending) == t.delimiter {
		t.pending = t.pending[:0]
		t.pos.Line++
		t.pos.Column = 1
	}
}
