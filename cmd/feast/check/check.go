package check

import (
	"context"
	"io"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/feast/cmd/feast/flags"
	"github.com/walteh/feast/pkg/ast"
	"github.com/walteh/feast/pkg/diagnostic"
	"github.com/walteh/feast/pkg/lexer"
	"github.com/walteh/feast/pkg/output"
	"github.com/walteh/feast/pkg/parser"
	"github.com/walteh/feast/pkg/source"
)

var ErrFailed = errors.New("check failed")

type Handler struct {
	flags.Common

	Fs       afero.Fs
	Out      io.Writer
	Patterns []string
	// Width wraps diagnostic text, 0 disables wrapping
	Width uint
	// Jobs bounds the number of files parsed at once, 0 means GOMAXPROCS
	Jobs int
}

func NewCheckCommand() *cobra.Command {
	me := &Handler{Fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "check PATTERN...",
		Short: "parse templates and report syntax errors",
		Args:  cobra.MinimumNArgs(1),
	}

	me.Register(cmd)
	cmd.Flags().UintVar(&me.Width, "width", 0, "wrap diagnostics at this width")
	cmd.Flags().IntVar(&me.Jobs, "jobs", 0, "number of files to parse at once")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.Out = cmd.OutOrStdout()
		me.Patterns = args
		return me.Run(me.Context(cmd.Context(), cmd.ErrOrStderr()))
	}

	return cmd
}

type result struct {
	file  *source.File
	diags hcl.Diagnostics
	err   error
}

func (me *Handler) Run(ctx context.Context) error {
	format, err := me.OutputFormat()
	if err != nil {
		return err
	}

	loader, err := me.Loader(me.Fs)
	if err != nil {
		return err
	}

	names, err := loader.Glob(ctx, me.Patterns...)
	if err != nil {
		return err
	}

	jobs := me.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = me.checkFile(gctx, loader, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var merr *multierror.Error
	var diags hcl.Diagnostics
	files := make(map[string][]byte, len(results))
	for _, r := range results {
		if r.err != nil {
			merr = multierror.Append(merr, r.err)
			continue
		}
		files[r.file.Path] = r.file.Bytes
		diags = append(diags, r.diags...)
	}

	if err := me.write(format, files, diags); err != nil {
		merr = multierror.Append(merr, err)
	}

	if diags.HasErrors() {
		merr = multierror.Append(merr, errors.Errorf("%w: %d syntax errors in %d files", ErrFailed, countErrors(diags), len(names)))
	}

	zerolog.Ctx(ctx).Debug().Int("files", len(names)).Int("diagnostics", len(diags)).Msg("check finished")

	return merr.ErrorOrNil()
}

func (me *Handler) checkFile(ctx context.Context, loader *source.Loader, name string) result {
	f, err := loader.Load(ctx, name)
	if err != nil {
		return result{err: err}
	}

	res := lexer.Scan(ctx, f.Source(), lexer.Options{LineDelimiter: f.LineDelimiter})

	root, err := parser.ParseTokens(ctx, res, parser.Options{LineDelimiter: f.LineDelimiter, Strict: me.Strict})
	if err != nil {
		return result{err: errors.Errorf("parsing %s: %w", name, err)}
	}

	if root.Type != ast.NodeError {
		if err := ast.Validate(root); err != nil {
			return result{err: errors.Errorf("parsing %s: %w", name, err)}
		}
	}

	return result{file: f, diags: diagnostic.Collect(name, res, root)}
}

func (me *Handler) write(format output.Format, files map[string][]byte, diags hcl.Diagnostics) error {
	if format != output.FormatText {
		return output.Encode(me.Out, format, diagnostic.Convert(diags))
	}
	if len(diags) == 0 {
		return nil
	}
	if err := diagnostic.Write(me.Out, files, diags, me.Width, me.Color()); err != nil {
		return errors.Errorf("writing diagnostics: %w", err)
	}
	return nil
}

func countErrors(diags hcl.Diagnostics) int {
	n := 0
	for _, d := range diags {
		if d.Severity == hcl.DiagError {
			n++
		}
	}
	return n
}
