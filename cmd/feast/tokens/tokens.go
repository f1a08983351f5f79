package tokens

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feast/cmd/feast/flags"
	"github.com/walteh/feast/pkg/lexer"
	"github.com/walteh/feast/pkg/output"
)

type Handler struct {
	flags.Common

	Fs       afero.Fs
	Out      io.Writer
	Patterns []string
}

type fileTokens struct {
	File         string        `json:"file" yaml:"file"`
	Tokens       []lexer.Token `json:"tokens" yaml:"tokens"`
	Unterminated *lexer.Token  `json:"unterminated,omitempty" yaml:"unterminated,omitempty"`
}

func NewTokensCommand() *cobra.Command {
	me := &Handler{Fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "tokens PATTERN...",
		Short: "print the tokens of each template",
		Args:  cobra.MinimumNArgs(1),
	}

	me.Register(cmd)

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

	results := make([]fileTokens, 0, len(files))
	for _, f := range files {
		res := lexer.Scan(ctx, f.Source(), lexer.Options{LineDelimiter: f.LineDelimiter})
		results = append(results, fileTokens{File: f.Path, Tokens: res.Tokens, Unterminated: res.Unterminated})
	}

	if format != output.FormatText {
		return output.Encode(me.Out, format, results)
	}

	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(me.Out)
			}
			fmt.Fprintf(me.Out, "# %s\n", r.File)
		}
		if err := output.WriteTokens(me.Out, r.Tokens); err != nil {
			return errors.Errorf("writing tokens of %s: %w", r.File, err)
		}
	}

	return nil
}
