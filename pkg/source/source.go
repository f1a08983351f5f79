// Package source finds and reads template files and works out which line
// delimiter each one uses.
package source

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feast/pkg/position"
)

var ErrNoMatches = errors.New("pattern matched no files")

// File is a loaded template
type File struct {
	Path          string
	Bytes         []byte
	LineDelimiter string
}

func (f *File) Source() string {
	return string(f.Bytes)
}

// Loader reads templates from Fs
type Loader struct {
	Fs afero.Fs
	// LineDelimiter, when set, is used for every file instead of looking at
	// .editorconfig files
	LineDelimiter string
}

func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{Fs: fsys}
}

// Glob expands doublestar patterns into a sorted, de-duplicated list of file
// paths. Patterns without meta characters must name an existing file.
func (l *Loader) Glob(ctx context.Context, patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if !hasMeta(pattern) {
			if _, err := l.Fs.Stat(pattern); err != nil {
				return nil, errors.Errorf("stat %s: %w", pattern, err)
			}
			add(pattern)
			continue
		}

		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid pattern %q", pattern)
		}

		base, rest := doublestar.SplitPattern(pattern)
		var fsys fs.FS = afero.NewIOFS(l.Fs)
		if base != "." {
			fsys = afero.NewIOFS(afero.NewBasePathFs(l.Fs, base))
		}

		matches, err := doublestar.Glob(fsys, rest, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("glob %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("%w: %s", ErrNoMatches, pattern)
		}

		zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("expanded pattern")

		for _, m := range matches {
			add(path.Join(base, m))
		}
	}

	sort.Strings(out)
	return out, nil
}

// Load reads one file and resolves its line delimiter.
func (l *Loader) Load(ctx context.Context, name string) (*File, error) {
	data, err := afero.ReadFile(l.Fs, name)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", name, err)
	}

	delim, err := l.ResolveLineDelimiter(ctx, name)
	if err != nil {
		return nil, err
	}

	return &File{Path: name, Bytes: data, LineDelimiter: delim}, nil
}

// ResolveLineDelimiter returns the loader override, else the end_of_line of
// the nearest .editorconfig section matching name, else the default.
func (l *Loader) ResolveLineDelimiter(ctx context.Context, name string) (string, error) {
	if l.LineDelimiter != "" {
		if err := position.ValidateLineDelimiter(l.LineDelimiter); err != nil {
			return "", err
		}
		return l.LineDelimiter, nil
	}

	eol, from, err := l.editorconfigEndOfLine(ctx, name)
	if err != nil {
		return "", err
	}
	if eol == "" {
		return position.DefaultLineDelimiter, nil
	}

	delim, err := position.ParseLineDelimiter(eol)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("editorconfig", from).Msg("ignoring end_of_line")
		return position.DefaultLineDelimiter, nil
	}

	zerolog.Ctx(ctx).Debug().Str("file", name).Str("editorconfig", from).Str("end_of_line", eol).Msg("resolved line delimiter")
	return delim, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
