package parse

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feast/cmd/feast/flags"
	"github.com/walteh/feast/pkg/ast"
	"github.com/walteh/feast/pkg/output"
	"github.com/walteh/feast/pkg/parser"
)

// ErrSyntax is returned when at least one template failed to parse.
var ErrSyntax = errors.New("syntax errors")

type Handler struct {
	flags.Common

	Fs       afero.Fs
	Out      io.Writer
	Patterns []string
	// At, when not negative, prints only the nodes covering this byte offset
	At int
}

type fileTree struct {
	File string    `json:"file" yaml:"file"`
	Tree *ast.Node `json:"tree,omitempty" yaml:"tree,omitempty"`
	// Path is the chain of nodes at the requested offset, outermost first
	Path []string `json:"path,omitempty" yaml:"path,omitempty"`
}

func NewParseCommand() *cobra.Command {
	me := &Handler{Fs: afero.NewOsFs(), At: -1}

	cmd := &cobra.Command{
		Use:   "parse PATTERN...",
		Short: "print the syntax tree of each template",
		Args:  cobra.MinimumNArgs(1),
	}

	me.Register(cmd)
	cmd.Flags().IntVar(&me.At, "at", -1, "print only the nodes covering this byte offset")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.Out = cmd.OutOrStdout()
		me.Patterns = args
		return me.Run(me.Context(cmd.Context(), cmd.ErrOrStderr()))
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	format, err := me.OutputFormat()
	if err != nil {
		return err
	}

	files, err := me.LoadAll(ctx, me.Fs, me.Patterns)
	if err != nil {
		return err
	}

	failed := 0
	results := make([]fileTree, 0, len(files))
	for _, f := range files {
		root, err := parser.Parse(ctx, f.Source(), parser.Options{LineDelimiter: f.LineDelimiter, Strict: me.Strict})
		if err != nil {
			return errors.Errorf("parsing %s: %w", f.Path, err)
		}
		if root.Type == ast.NodeError {
			failed++
		}
		results = append(results, me.result(f.Path, root))
	}

	if format != output.FormatText {
		if err := output.Encode(me.Out, format, results); err != nil {
			return err
		}
	} else {
		for i, r := range results {
			if len(results) > 1 {
				if i > 0 {
					fmt.Fprintln(me.Out)
				}
				fmt.Fprintf(me.Out, "# %s\n", r.File)
			}
			if r.Tree != nil {
				if err := ast.Dump(me.Out, r.Tree); err != nil {
					return errors.Errorf("writing tree of %s: %w", r.File, err)
				}
				continue
			}
			for depth, n := range r.Path {
				fmt.Fprintf(me.Out, "%s%s\n", strings.Repeat("  ", depth), n)
			}
		}
	}

	if failed > 0 {
		return errors.Errorf("%w in %d of %d files", ErrSyntax, failed, len(results))
	}
	return nil
}

func (me *Handler) result(file string, root *ast.Node) fileTree {
	if me.At < 0 || root.Type == ast.NodeError {
		return fileTree{File: file, Tree: root}
	}

	nodes := ast.NewIndex(root).At(me.At)
	path := make([]string, len(nodes))
	for i, n := range nodes {
		path[i] = n.String()
	}
	return fileTree{File: file, Path: path}
}
