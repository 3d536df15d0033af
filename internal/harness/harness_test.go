package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestScenariosGolden(t *testing.T) {
	for _, name := range []string{
		"compose_camera_and_logo",
		"delete_prunes_dependents",
		"load_prunes_missing_image",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRejectsBadCommands(t *testing.T) {
	result, err := Run(loadScenario(t, "rejects_bad_commands"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)

	require.Len(t, result.Transcript, 6)
	assert.Empty(t, result.Transcript[5].Output, "blank lines print nothing")
	assert.Empty(t, result.Edits)
}

func TestRunReportsFailedAssertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "every assertion is wrong",
		Steps: []Step{
			{Command: "layer a camera"},
			{Command: "draw a"},
			{Render: 2},
		},
		Assertions: []Assertion{
			{Type: AssertFinalList, Commands: []string{"draw a"}},
			{Type: AssertOutputContains, Text: "never printed"},
			{Type: AssertDrawn, Frame: 5},
			{Type: AssertDrawn, Frame: 1, Layers: []string{"b"}},
			{Type: AssertPixel, Output: "vive", X: 100, Y: 0, Color: []int{0, 0, 0, 255}},
			{Type: AssertPixel, Output: "vive", X: 0, Y: 0, Color: []int{1, 2, 3, 255}},
			{Type: AssertEditCount, Count: 9},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[2], "frame 5 not rendered (2 frames)")
	assert.Contains(t, result.Errors[4], "outside the vive surface")
	assert.Contains(t, result.Errors[6], "journal has 2 edits, want 9")

	require.Len(t, result.Frames, 2)
	for _, f := range result.Frames {
		assert.Equal(t, Frame{Drawn: []string{"a"}, Defined: 1}, f)
	}
}

func TestTextOverCamera(t *testing.T) {
	scenario := &Scenario{
		Name:        "caption",
		Description: "text is stamped onto the camera layer",
		Camera:      &Fill{Width: 64, Height: 48, Color: []int{0, 0, 0, 255}},
		Steps: []Step{
			{Command: "layer a camera"},
			{Command: "process a text hi"},
			{Command: "draw a"},
			{Render: 1},
		},
		Assertions: []Assertion{
			{Type: AssertDrawn, Frame: 0, Layers: []string{"a"}},
			{Type: AssertJournalReplays},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.Equal(t, Frame{Drawn: []string{"a"}, Defined: 1, Processed: 1}, result.Frames[0])
}

func TestTranscriptHidesWorkDir(t *testing.T) {
	scenario := &Scenario{
		Name:        "save",
		Description: "save reports a path under the work dir",
		Steps:       []Step{{Command: "layer a camera"}, {Command: "save show"}},
		Assertions:  []Assertion{{Type: AssertOutputContains, Text: "Saved 1 instructions to $DIR/show.inli"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.False(t, strings.Contains(result.Output(), "layercast-harness-"))
}
