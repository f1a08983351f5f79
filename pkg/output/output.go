// Package output renders tokens, trees and diagnostics for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/walteh/feast/pkg/lexer"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("%w %q, expected one of text, json, yaml", ErrUnknownFormat, s)
}

// Encode writes v as indented JSON or YAML.
func Encode(w io.Writer, format Format, v any) (err error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() {
			err = multierr.Append(err, enc.Close())
		}()
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encoding yaml: %w", err)
		}
		return nil
	}
	return errors.Errorf("%w %q for structured output", ErrUnknownFormat, format)
}

// WriteTokens prints one token per line in aligned columns: type, quoted value,
// start and end. Values are padded by display width so wide characters line up.
func WriteTokens(w io.Writer, tokens []lexer.Token) error {
	typeWidth, valueWidth, startWidth := 0, 0, 0
	values := make([]string, len(tokens))
	for i, tok := range tokens {
		values[i] = strconv.Quote(tok.Value)
		typeWidth = max(typeWidth, len(tok.Type.String()))
		valueWidth = max(valueWidth, uniseg.StringWidth(values[i]))
		startWidth = max(startWidth, len(tok.Start.String()))
	}

	for i, tok := range tokens {
		pad := strings.Repeat(" ", valueWidth-uniseg.StringWidth(values[i]))
		_, err := fmt.Fprintf(w, "%-*s  %s%s  %-*s  %s\n", typeWidth, tok.Type, values[i], pad, startWidth, tok.Start, tok.End)
		if err != nil {
			return errors.Errorf("writing token: %w", err)
		}
	}
	return nil
}
