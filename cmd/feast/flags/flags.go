// Package flags holds the options shared by every feast sub-command.
package flags

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feast/pkg/debug"
	"github.com/walteh/feast/pkg/output"
	"github.com/walteh/feast/pkg/position"
	"github.com/walteh/feast/pkg/source"
)

const AutoLineDelimiter = "auto"

type Common struct {
	Debug         bool
	LineDelimiter string
	Strict        bool
	Format        string
	NoColor       bool
}

func (c *Common) Register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&c.Debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&c.LineDelimiter, "line-delimiter", AutoLineDelimiter, "line delimiter: auto (from .editorconfig), lf, crlf or cr")
	cmd.Flags().BoolVar(&c.Strict, "strict", false, "reject files that end inside a quoted string or an expression")
	cmd.Flags().StringVar(&c.Format, "format", string(output.FormatText), "output format: text, json or yaml")
	cmd.Flags().BoolVar(&c.NoColor, "no-color", false, "disable colored output")
}

func (c *Common) Color() bool {
	return !c.NoColor && !color.NoColor
}

// Context attaches the command logger to ctx. Logs always go to w, never to
// the output stream.
func (c *Common) Context(ctx context.Context, w io.Writer) context.Context {
	level := zerolog.WarnLevel
	if c.Debug {
		level = zerolog.TraceLevel
	}
	return debug.WithLogger(ctx, debug.Options{Out: w, Level: level, Color: c.Color()})
}

func (c *Common) OutputFormat() (output.Format, error) {
	return output.ParseFormat(c.Format)
}

// Loader builds a loader over fsys. With "auto" each file's delimiter comes
// from .editorconfig.
func (c *Common) Loader(fsys afero.Fs) (*source.Loader, error) {
	loader := source.NewLoader(fsys)
	if c.LineDelimiter == "" || c.LineDelimiter == AutoLineDelimiter {
		return loader, nil
	}

	delim, err := position.ParseLineDelimiter(c.LineDelimiter)
	if err != nil {
		return nil, errors.Errorf("--line-delimiter: %w", err)
	}
	loader.LineDelimiter = delim
	return loader, nil
}

// LoadAll expands patterns and loads every matching file in order.
func (c *Common) LoadAll(ctx context.Context, fsys afero.Fs, patterns []string) ([]*source.File, error) {
	loader, err := c.Loader(fsys)
	if err != nil {
		return nil, err
	}

	names, err := loader.Glob(ctx, patterns...)
	if err != nil {
		return nil, err
	}

	files := make([]*source.File, 0, len(names))
	for _, name := range names {
		f, err := loader.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
