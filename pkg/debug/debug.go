// Package debug builds the zerolog logger used by the command line and the
// hooks that stamp each event with a short time and the calling file.
package debug

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultTimeFormat = "15:04:05.0000"

type Options struct {
	Out   io.Writer
	Level zerolog.Level
	Color bool
	// JSON writes raw events instead of the console format
	JSON bool
	// RunID tags every event, a random uuid when empty
	RunID string
}

// NewLogger returns a logger writing to opts.Out with the time and caller
// hooks installed.
func NewLogger(opts Options) zerolog.Logger {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	out := opts.Out
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: opts.Out, NoColor: !opts.Color, TimeFormat: DefaultTimeFormat}
	}

	return zerolog.New(out).With().
		Str("run", runID).
		Logger().
		Level(opts.Level).
		Hook(CustomTimeHook{WithColor: opts.Color, Format: DefaultTimeFormat}).
		Hook(CustomCallerHook{WithColor: opts.Color})
}

// WithLogger attaches a new logger to ctx.
func WithLogger(ctx context.Context, opts Options) context.Context {
	return NewLogger(opts).WithContext(ctx)
}

func callerSkipFrameCount(e *zerolog.Event) int {
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")
	if field.IsValid() && field.CanAddr() {
		return int(field.Int())
	}
	return 0
}

type CustomTimeHook struct {
	WithColor bool
	Format    string
}

func (t CustomTimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		format = "2006-01-02T15:04:05.0000Z"
	}
	e.Str(zerolog.TimestampFieldName, time.Now().Format(format))
}

type CustomCallerHook struct {
	WithColor bool
}

func (c CustomCallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	// Run, Event.msg, Event.Msg, then the logging call site
	pc, file, line, ok := runtime.Caller(callerSkipFrameCount(e) + 3)
	if !ok {
		return
	}

	pkg := ""
	if fn := runtime.FuncForPC(pc); fn != nil {
		pkg, _ = PackageAndFunc(fn.Name())
	}

	e.Str(zerolog.CallerFieldName, FormatCaller(pkg, file, line, c.WithColor))
}

// PackageAndFunc splits a fully qualified function name as reported by the
// runtime, e.g. "github.com/a/b.(*T).M", into its package and function.
func PackageAndFunc(name string) (pkg, function string) {
	lastSlash := max(strings.LastIndexByte(name, '/'), 0)

	firstDot := strings.IndexByte(name[lastSlash:], '.')
	if firstDot < 0 {
		return name, ""
	}
	firstDot += lastSlash

	pkg = name[:firstDot]
	function = name[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		parts := strings.SplitN(pkg, ".(", 2)
		pkg = parts[0]
		function = "(" + parts[1] + "." + function
	}

	return pkg, function
}

func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := FileNameOfPath(path)
	if colorize {
		p = color.New(color.Bold).Sprint(p)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
		sep := color.New(color.Faint).Sprint(":")

		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, p, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

func FileNameOfPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
