package diagnostic

import (
	"github.com/hashicorp/hcl/v2"
)

// Severity follows the language server protocol numbering
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// Diagnostic is the editor-facing shape of a diagnostic: 0-based lines and
// characters, end exclusive.
type Diagnostic struct {
	Filename string   `json:"filename" yaml:"filename"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Range    Range    `json:"range" yaml:"range"`
}

type Range struct {
	Start Location `json:"start" yaml:"start"`
	End   Location `json:"end" yaml:"end"`
}

type Location struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

// Convert maps hcl diagnostics onto the editor shape. Diagnostics without a
// subject are placed at the start of the file.
func Convert(diags hcl.Diagnostics) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		item := Diagnostic{
			Severity: SeverityInformation,
			Message:  d.Summary,
		}
		if d.Detail != "" {
			item.Message += ": " + d.Detail
		}

		switch d.Severity {
		case hcl.DiagError:
			item.Severity = SeverityError
		case hcl.DiagWarning:
			item.Severity = SeverityWarning
		}

		if d.Subject != nil {
			item.Filename = d.Subject.Filename
			item.Range = Range{
				Start: location(d.Subject.Start),
				End:   location(d.Subject.End),
			}
		}

		out = append(out, item)
	}
	return out
}

func location(p hcl.Pos) Location {
	l := Location{Line: p.Line - 1, Character: p.Column - 1}
	if l.Line < 0 {
		l.Line = 0
	}
	if l.Character < 0 {
		l.Character = 0
	}
	return l
}
