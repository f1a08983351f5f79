package tokens_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/feast/cmd/feast/flags"
	"github.com/walteh/feast/cmd/feast/tokens"
	"github.com/walteh/feast/pkg/lexer"
	"github.com/walteh/feast/pkg/output"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.TestWriter{T: t}).Level(zerolog.DebugLevel).WithContext(context.Background())
}

func TestTokensText(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "a.feast", []byte("<a/>"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "b.feast", []byte("<b\r\n/>"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, ".editorconfig", []byte("root = true\n\n[b.feast]\nend_of_line = crlf\n"), 0o644))

	var out bytes.Buffer
	h := &tokens.Handler{Common: flags.Common{Format: "text"}, Fs: fsys, Out: &out, Patterns: []string{"*.feast"}}
	require.NoError(t, h.Run(testContext(t)))

	var want bytes.Buffer
	want.WriteString("# a.feast\n")
	require.NoError(t, output.WriteTokens(&want, lexer.Tokenize(context.Background(), "<a/>", lexer.Options{})))
	want.WriteString("\n# b.feast\n")
	require.NoError(t, output.WriteTokens(&want, lexer.Tokenize(context.Background(), "<b\r\n/>", lexer.Options{LineDelimiter: "\r\n"})))

	assert.Equal(t, want.String(), out.String())
	assert.Contains(t, out.String(), "FORWARD_SLASH  \"/\"  2:1@4")
}

func TestTokensJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "open.feast", []byte("<a b={x"), 0o644))

	var out bytes.Buffer
	h := &tokens.Handler{Common: flags.Common{Format: "json"}, Fs: fsys, Out: &out, Patterns: []string{"open.feast"}}
	require.NoError(t, h.Run(testContext(t)))

	var got []struct {
		File         string        `json:"file"`
		Tokens       []lexer.Token `json:"tokens"`
		Unterminated *lexer.Token  `json:"unterminated"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "open.feast", got[0].File)
	require.NotNil(t, got[0].Unterminated)
	assert.Equal(t, lexer.Expression, got[0].Unterminated.Type)
	assert.Equal(t, got[0].Tokens[len(got[0].Tokens)-1], *got[0].Unterminated)
}
