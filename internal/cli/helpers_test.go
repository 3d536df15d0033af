package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testConfig writes a configuration with in-memory outputs, no camera and
// small frames, rooted in dir.
func testConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "layercast.yaml", `
devices:
  vive: memory
  monitor: memory
camera:
  device: ""
  width: 8
  height: 6
images_dir: `+filepath.Join(dir, "images")+`
instructions_dir: `+filepath.Join(dir, "instructions")+`
max_fps: 200
`)
}
