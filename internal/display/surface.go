// Package display writes composited layers to the two outputs: the
// head-mounted stereo surface ("vive") and the operator monitor.
package display

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Surface is a writable output of fixed size.
type Surface interface {
	// Size is the visible resolution.
	Size() image.Point
	// Blit copies src with its top-left corner at at, clipped to the
	// surface. src's alpha channel is ignored.
	Blit(src *image.RGBA, at image.Point) error
	// Fill sets every visible pixel to c.
	Fill(c color.RGBA) error
	Close() error
}

// Memory is a Surface backed by an in-memory image. It is the fallback when
// a device cannot be opened, and what tests inspect.
type Memory struct {
	img   *image.RGBA
	blits int
}

// NewMemory returns a black surface of the given size.
func NewMemory(width, height int) *Memory {
	m := &Memory{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	_ = m.Fill(color.RGBA{A: 0xff})
	return m
}

func (m *Memory) Size() image.Point { return m.img.Rect.Size() }

func (m *Memory) Blit(src *image.RGBA, at image.Point) error {
	xdraw.Copy(m.img, at, src, src.Bounds(), xdraw.Src, nil)
	for y := max(at.Y, 0); y < min(at.Y+src.Rect.Dy(), m.img.Rect.Dy()); y++ {
		row := m.img.Pix[m.img.PixOffset(0, y):]
		for x := max(at.X, 0); x < min(at.X+src.Rect.Dx(), m.img.Rect.Dx()); x++ {
			row[4*x+3] = 0xff
		}
	}
	m.blits++
	return nil
}

func (m *Memory) Fill(c color.RGBA) error {
	for i := 0; i < len(m.img.Pix); i += 4 {
		m.img.Pix[i], m.img.Pix[i+1], m.img.Pix[i+2], m.img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Image is the surface contents. Callers must not modify it.
func (m *Memory) Image() *image.RGBA { return m.img }

// Blits counts Blit calls since creation.
func (m *Memory) Blits() int { return m.blits }
