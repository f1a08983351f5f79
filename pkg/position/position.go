package position

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Position is a point in the source text.
type Position struct {
	// Index is the byte offset in the source text
	Index int `json:"index" yaml:"index"`
	// Line is 1-based
	Line int `json:"line" yaml:"line"`
	// Column is 1-based and counts grapheme clusters since the last line
	// delimiter. A position inside a cluster shares the column of the cluster's
	// first character, so a quoted value opening with a combining mark starts in
	// the column of its quote.
	Column int `json:"column" yaml:"column"`
}

// Start returns the position of the first character of any source text.
func Start() Position {
	return Position{Index: 0, Line: 1, Column: 1}
}

// Pos converts the position to its hcl equivalent.
func (p Position) Pos() hcl.Pos {
	return hcl.Pos{Line: p.Line, Column: p.Column, Byte: p.Index}
}

func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Index >= 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d@%d", p.Line, p.Column, p.Index)
}

// Range is a half-open span of source text. End points one character past the
// last character covered; zero-width ranges have Start == End.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

// Length returns the number of bytes covered by the range
func (r Range) Length() int {
	return r.End.Index - r.Start.Index
}

// Text returns the slice of source covered by the range.
func (r Range) Text(source string) string {
	if r.Start.Index < 0 || r.End.Index > len(source) || r.End.Index < r.Start.Index {
		return ""
	}
	return source[r.Start.Index:r.End.Index]
}

// Contains reports whether the byte offset falls inside the range. A zero-width
// range contains only its own offset.
func (r Range) Contains(index int) bool {
	if r.Length() == 0 {
		return index == r.Start.Index
	}
	return index >= r.Start.Index && index < r.End.Index
}

// Overlaps reports whether two ranges share at least one offset.
func (r Range) Overlaps(other Range) bool {
	startOffset := other.Start.Index
	endOffset := other.End.Index

	posOffset := r.Start.Index
	posEndOffset := r.End.Index

	// a zero-length range overlaps if it falls within the other range
	if r.Length() == 0 {
		return posOffset >= startOffset && posOffset <= endOffset
	}
	if other.Length() == 0 {
		return startOffset >= posOffset && startOffset <= posEndOffset
	}

	return startOffset < posEndOffset && endOffset > posOffset
}

// HCL converts the range to an hcl.Range for the given file.
func (r Range) HCL(filename string) hcl.Range {
	return hcl.Range{
		Filename: filename,
		Start:    r.Start.Pos(),
		End:      r.End.Pos(),
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
