package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONResult(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Result(map[string]int{"nodes": 42}, func(w io.Writer) error {
		t.Fatal("text renderer must not run in json mode")
		return nil
	})
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"nodes": float64(42)}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_TextResult(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Result("ignored", func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "grammar ok")
		return err
	}))
	assert.Equal(t, "grammar ok\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Result("plain", nil))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	details := map[string]string{"file": "console.grammar", "line": "4"}
	require.NoError(t, formatter.Error(CodeGrammar, "unknown label", details))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeGrammar, resp.Error.Code)
	assert.Equal(t, "unknown label", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error(CodeInli, "line 2: invalid flag", []string{"x"}))
			assert.Contains(t, buf.String(), "Error [E003]: line 2: invalid flag")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("replaying session %s", "abc")
	assert.Empty(t, out.String())
	assert.Equal(t, "replaying session abc\n", diag.String())

	formatter.Verbose = false
	diag.Reset()
	formatter.VerboseLog("hidden")
	assert.Empty(t, diag.String())
}

func TestExitCodes(t *testing.T) {
	base := errors.New("no such file")
	err := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "failed to open journal", base))

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ExitFailure, GetExitCode(base))
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
	assert.Equal(t, "failed to open journal: no such file", WrapExitError(2, "failed to open journal", base).Error())
}
