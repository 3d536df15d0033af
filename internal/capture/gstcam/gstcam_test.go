package gstcam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapsString(t *testing.T) {
	assert.Equal(t, "video/x-raw,format=RGBA,width=640,height=480",
		Config{Width: 640, Height: 480}.caps())
	assert.Equal(t, "video/x-raw,format=RGBA,width=1080,height=1200,framerate=30/1",
		Config{Width: 1080, Height: 1200, FPS: 30}.caps())
}

func TestOpenRejectsEmptyGeometry(t *testing.T) {
	_, err := Open(Config{Device: TestSource}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid camera size")
}
