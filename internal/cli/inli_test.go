package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showInli = `layer a camera
20 201
draw b
22
layer logo image logo.png
20 202
draw a
22
`

func TestInliShowText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "show.inli", showInli)

	out, _, err := execute(t, "", "inli", "show", path)
	require.NoError(t, err)

	assert.Contains(t, out, "(4 instructions)")
	assert.Contains(t, out, "0) layer a camera")
	assert.Contains(t, out, "refactor would prune 1:\n  draw b (layer is not defined earlier)\n")
}

func TestInliShowJSONWithCatalog(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "show.inli", showInli)

	out, _, err := execute(t, "", "--format", "json", "inli", "show", path, "--images", dir)
	require.NoError(t, err)

	var resp struct {
		Data InliShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Instructions, 4)
	assert.Equal(t, "define", resp.Data.Instructions[0].Role)
	require.Len(t, resp.Data.Pruned, 2)
	assert.Equal(t, "draw b", resp.Data.Pruned[0].Command)
	assert.Equal(t, "layer logo image logo.png", resp.Data.Pruned[1].Command)
	assert.Equal(t, "image is not in the catalog", resp.Data.Pruned[1].Reason)
	assert.Equal(t, []string{"a"}, resp.Data.Layers)
	assert.NotEmpty(t, resp.Data.Hash)
}

func TestInliShowMalformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.inli", "draw a\n")

	out, _, err := execute(t, "", "inli", "show", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "command without a flag line")
}
