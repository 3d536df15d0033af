package testutil

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/roach88/layercast/internal/layer"
)

// ErrNoFrames is returned by a FakeCamera with no frames and no error set.
var ErrNoFrames = errors.New("fake camera has no frames")

// FakeCamera replays a fixed sequence of frames, repeating the last one.
type FakeCamera struct {
	mu     sync.Mutex
	frames []*image.RGBA
	err    error
	reads  int
}

// NewFakeCamera returns a camera serving frames in order.
func NewFakeCamera(frames ...*image.RGBA) *FakeCamera {
	return &FakeCamera{frames: frames}
}

// SolidFrame returns a w x h frame filled with c.
func SolidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// Fail makes every following read return err. A nil err clears it.
func (c *FakeCamera) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *FakeCamera) ReadFrame() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.err != nil {
		return nil, c.err
	}
	if len(c.frames) == 0 {
		return nil, ErrNoFrames
	}
	i := min(c.reads-1, len(c.frames)-1)
	return c.frames[i], nil
}

// Reads counts ReadFrame calls.
func (c *FakeCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Drawn is one layer handed to a RecordingOutput.
type Drawn struct {
	Name  string
	Size  image.Point
	Layer *layer.Layer
}

// RecordingOutput keeps a copy of every layer drawn to it.
type RecordingOutput struct {
	mu    sync.Mutex
	drawn []Drawn
	err   error
}

// Fail makes every following Draw return err.
func (o *RecordingOutput) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *RecordingOutput) Draw(l *layer.Layer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.drawn = append(o.drawn, Drawn{Name: l.Name, Size: l.Bounds().Size(), Layer: l.Clone()})
	return nil
}

// Drawn returns everything drawn so far.
func (o *RecordingOutput) Drawn() []Drawn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Drawn(nil), o.drawn...)
}

// Names returns the names of the drawn layers in order.
func (o *RecordingOutput) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, len(o.drawn))
	for i, d := range o.drawn {
		names[i] = d.Name
	}
	return names
}

// Reset forgets everything drawn.
func (o *RecordingOutput) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drawn = nil
}
