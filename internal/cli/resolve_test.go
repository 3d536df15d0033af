package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/layercast/internal/ir"
)

func TestResolveText(t *testing.T) {
	out, _, err := execute(t, "", "resolve", "--", "push", "layer", "a", "camera")
	require.NoError(t, err)
	assert.Equal(t, "push layer a camera\nflags: 10 20 201\nrole: define\n", out)
}

func TestResolveJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "resolve", "--", "process", "a", "alpha", "circular", "inverted", "10", "40")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   ResolveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ir.NewFlagSet(ir.FlagProcess, ir.FlagAlpha, ir.FlagAlphaCircular, ir.FlagAlphaInverted), resp.Data.Flags)
	assert.Equal(t, "process", resp.Data.Role)
}

func TestResolveRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown word", []string{"jump"}, "command not recognized"},
		{"too few", []string{"process", "a", "resize"}, "too few arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"resolve", "--"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error [E002]")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestResolveCustomGrammar(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tiny.grammar", "blink /99 INT\n")

	out, _, err := execute(t, "", "resolve", "--grammar", path, "--", "blink", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "flags: 99\nrole: none\n")
}
