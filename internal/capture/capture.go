// Package capture provides camera frames to the compositor.
//
// A camera is anything with ReadFrame. Blank stands in when no device is
// configured or the device fails to open; Latest is the hand-off point
// between a capture pipeline's streaming thread and the render loop.
package capture

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
)

// Blank yields black, opaque frames of a fixed size.
type Blank struct {
	Width  int
	Height int
}

// ReadFrame returns a new black frame.
func (b Blank) ReadFrame() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img, nil
}

// Latest holds the most recent frame published by a capture pipeline.
// Publish may be called from any goroutine; frames are never modified
// after publication, so ReadFrame hands them out without copying.
type Latest struct {
	fallback Blank

	mu    sync.Mutex
	frame *image.RGBA

	published atomic.Uint64
	rejected  atomic.Uint64
}

// NewLatest returns a holder that serves black frames of width x height
// until the first frame is published.
func NewLatest(width, height int) *Latest {
	return &Latest{fallback: Blank{Width: width, Height: height}}
}

// Publish copies a tightly packed RGBA buffer into a new frame and makes it
// current.
func (l *Latest) Publish(width, height int, pix []byte) error {
	if want := width * height * 4; len(pix) < want {
		l.rejected.Add(1)
		return fmt.Errorf("short frame: %d bytes, want %d", len(pix), want)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)

	l.mu.Lock()
	l.frame = img
	l.mu.Unlock()
	l.published.Add(1)
	return nil
}

// ReadFrame returns the current frame, or a black one if nothing has been
// published yet. Callers must not modify the result.
func (l *Latest) ReadFrame() (*image.RGBA, error) {
	l.mu.Lock()
	f := l.frame
	l.mu.Unlock()
	if f == nil {
		return l.fallback.ReadFrame()
	}
	return f, nil
}

// Published is the number of frames accepted so far.
func (l *Latest) Published() uint64 { return l.published.Load() }

// Rejected is the number of frames dropped for being too short.
func (l *Latest) Rejected() uint64 { return l.rejected.Load() }
