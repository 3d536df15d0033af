package harness

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenarioFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.Equal(t, filepath.Base(f), s.Name+".yaml")
		})
	}
}

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: basic
description: one push
camera: { width: 4, height: 2, color: [1, 2, 3, 255] }
steps:
  - command: layer a camera
  - render: 2
assertions:
  - type: edit_count
    count: 1
`))
	require.NoError(t, err)
	assert.Equal(t, "basic", s.Name)
	require.NotNil(t, s.Camera)
	assert.Equal(t, uint8(3), s.Camera.RGBA().B)
	assert.Equal(t, []Step{{Command: "layer a camera"}, {Render: 2}}, s.Steps)
}

func TestParseScenarioErrors(t *testing.T) {
	base := "name: n\ndescription: d\n"
	steps := "steps:\n  - command: help\n"
	asserts := "assertions:\n  - type: final_list\n"

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", base + steps + asserts + "assertion: []\n", "field assertion not found"},
		{"missing name", "description: d\n" + steps + asserts, "name is required"},
		{"missing description", "name: n\n" + steps + asserts, "description is required"},
		{"no steps", base + asserts, "steps list is required"},
		{"no assertions", base + steps, "assertions list is required"},
		{"empty step", base + "steps:\n  - {}\n" + asserts, "steps[0]: command or a positive render count"},
		{"both step kinds", base + "steps:\n  - { command: help, render: 1 }\n" + asserts, "steps[0]: command and render are exclusive"},
		{"bad camera", base + "camera: { width: 0, height: 2 }\n" + steps + asserts, "camera: width and height must be positive"},
		{"bad image colour", base + "images:\n  x.png: { width: 1, height: 1, color: [1, 2] }\n" + steps + asserts, "images.x.png: color must be"},
		{"nested file", base + "files:\n  a/b.inli: x\n" + steps + asserts, "must be a plain file name"},
		{"unknown assertion", base + steps + "assertions:\n  - type: vibes\n", `unknown assertion type "vibes"`},
		{"untyped assertion", base + steps + "assertions:\n  - text: x\n", "type is required"},
		{"pixel output", base + steps + "assertions:\n  - { type: pixel, output: tv, color: [0, 0, 0, 0] }\n", "output must be vive or monitor"},
		{"pixel colour", base + steps + "assertions:\n  - { type: pixel, output: vive }\n", "color must be [r, g, b, a] for pixel"},
		{"output text", base + steps + "assertions:\n  - type: output_contains\n", "text is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
