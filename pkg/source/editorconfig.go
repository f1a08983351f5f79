package source

import (
	"context"
	"path/filepath"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const editorconfigName = ".editorconfig"

// editorconfigEndOfLine walks from the file's directory towards the root of
// the filesystem and returns the first end_of_line that applies, along with
// the .editorconfig it came from. The walk stops at a file marked root.
func (l *Loader) editorconfigEndOfLine(ctx context.Context, name string) (eol string, from string, err error) {
	clean := filepath.Clean(name)
	dir := filepath.Dir(clean)

	for {
		cfgPath := filepath.Join(dir, editorconfigName)

		cfg, err := l.readEditorconfig(cfgPath)
		if err != nil {
			return "", "", err
		}

		if cfg != nil {
			rel, err := filepath.Rel(dir, clean)
			if err != nil {
				return "", "", errors.Errorf("relative path of %s: %w", clean, err)
			}

			def, err := cfg.GetDefinitionForFilename("/" + filepath.ToSlash(rel))
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("editorconfig", cfgPath).Msg("skipping unmatchable editorconfig")
			} else if def.EndOfLine != "" {
				return def.EndOfLine, cfgPath, nil
			}

			if cfg.Root {
				return "", "", nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == "." {
			return "", "", nil
		}
		dir = parent
	}
}

func (l *Loader) readEditorconfig(cfgPath string) (*editorconfig.Editorconfig, error) {
	exists, err := afero.Exists(l.Fs, cfgPath)
	if err != nil {
		return nil, errors.Errorf("checking %s: %w", cfgPath, err)
	}
	if !exists {
		return nil, nil
	}

	f, err := l.Fs.Open(cfgPath)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", cfgPath, err)
	}
	defer f.Close()

	cfg, err := editorconfig.Parse(f)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", cfgPath, err)
	}
	return cfg, nil
}
