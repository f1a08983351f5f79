package flags_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/feast/cmd/feast/flags"
	"github.com/walteh/feast/pkg/position"
)

func TestLoaderLineDelimiter(t *testing.T) {
	tests := []struct {
		flag    string
		want    string
		wantErr bool
	}{
		{flag: "", want: ""},
		{flag: "auto", want: ""},
		{flag: "lf", want: "\n"},
		{flag: "CRLF", want: "\r\n"},
		{flag: "cr", want: "\r"},
		{flag: "tab", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			c := &flags.Common{LineDelimiter: tt.flag}
			loader, err := c.Loader(afero.NewMemMapFs())
			if tt.wantErr {
				require.ErrorIs(t, err, position.ErrInvalidLineDelimiter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, loader.LineDelimiter)
		})
	}
}

func TestRegister(t *testing.T) {
	c := &flags.Common{}
	cmd := &cobra.Command{Use: "x"}
	c.Register(cmd)

	require.NoError(t, cmd.ParseFlags([]string{"--strict", "--format", "yaml", "--line-delimiter", "crlf", "--no-color"}))
	assert.True(t, c.Strict)
	assert.Equal(t, "yaml", c.Format)
	assert.Equal(t, "crlf", c.LineDelimiter)
	assert.False(t, c.Color())
	assert.False(t, c.Debug)
}
