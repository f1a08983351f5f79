// Package diagnostic turns parse results into hcl diagnostics for display.
package diagnostic

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"

	"github.com/walteh/feast/pkg/ast"
	"github.com/walteh/feast/pkg/lexer"
)

// FromNode reports an ERROR root as a single error diagnostic. Any other node
// yields no diagnostics.
func FromNode(filename string, root *ast.Node) hcl.Diagnostics {
	if root == nil || root.Type != ast.NodeError {
		return nil
	}

	rng := root.Span().HCL(filename)
	return hcl.Diagnostics{
		{
			Severity: hcl.DiagError,
			Summary:  "Syntax error",
			Detail:   capitalize(root.Message()) + ".",
			Subject:  &rng,
		},
	}
}

// Unterminated warns about a quoted string or expression that runs to the end
// of the source.
func Unterminated(filename string, tok lexer.Token) *hcl.Diagnostic {
	what := "quoted string"
	if tok.Type == lexer.Expression {
		what = "expression"
	}

	rng := tok.Span().HCL(filename)
	return &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  "Unterminated " + what,
		Detail:   fmt.Sprintf("The %s starting at line %d, column %d is never closed.", what, tok.Start.Line, tok.Start.Column),
		Subject:  &rng,
	}
}

// Collect gathers every diagnostic for one parsed file. The unterminated token
// warning is left out when the syntax error already points at it.
func Collect(filename string, res *lexer.Result, root *ast.Node) hcl.Diagnostics {
	diags := FromNode(filename, root)

	if res != nil && res.Unterminated != nil {
		reported := root != nil && root.Type == ast.NodeError && root.Start == res.Unterminated.Start
		if !reported {
			diags = append(diags, Unterminated(filename, *res.Unterminated))
		}
	}

	return diags
}

// Write renders diagnostics with source snippets. files maps each filename to
// its contents; width 0 disables wrapping.
func Write(w io.Writer, files map[string][]byte, diags hcl.Diagnostics, width uint, color bool) error {
	hclFiles := make(map[string]*hcl.File, len(files))
	for name, src := range files {
		hclFiles[name] = &hcl.File{Bytes: src}
	}
	return hcl.NewDiagnosticTextWriter(w, hclFiles, width, color).WriteDiagnostics(diags)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
