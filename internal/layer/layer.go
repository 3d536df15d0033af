// Package layer implements the compositor's named image buffers.
//
// A Layer pairs an opaque colour plane with a separate 8-bit alpha plane of
// identical size. Geometry changes are delegated to golang.org/x/image/draw
// and are applied to both planes so they never drift apart.
package layer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Layer is a named image with per-pixel transparency.
// A Layer lives for one render iteration and is not safe for concurrent use.
type Layer struct {
	Name  string
	Image *image.RGBA
	Alpha *image.Gray
}

// New returns a black, fully opaque layer of the given size.
func New(name string, width, height int) *Layer {
	r := image.Rect(0, 0, max(width, 0), max(height, 0))
	l := &Layer{
		Name:  name,
		Image: image.NewRGBA(r),
		Alpha: image.NewGray(r),
	}
	draw.Draw(l.Image, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(l.Alpha, r, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	return l
}

// Empty returns a zero-sized layer. Operations on it are no-ops.
func Empty(name string) *Layer {
	return New(name, 0, 0)
}

// Clone returns a deep copy.
func (l *Layer) Clone() *Layer {
	c := &Layer{
		Name:  l.Name,
		Image: image.NewRGBA(l.Image.Rect),
		Alpha: image.NewGray(l.Alpha.Rect),
	}
	copy(c.Image.Pix, l.Image.Pix)
	copy(c.Alpha.Pix, l.Alpha.Pix)
	return c
}

// FromImage copies src into a new layer. The colour plane keeps the
// un-premultiplied colour and the alpha plane takes src's alpha.
func FromImage(name string, src image.Image) *Layer {
	switch img := src.(type) {
	case *image.RGBA:
		return fromRGBA(name, img)
	case *image.NRGBA:
		return fromNRGBA(name, img)
	}
	b := src.Bounds()
	l := New(name, b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			l.Image.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
			l.Alpha.SetGray(x, y, color.Gray{Y: c.A})
		}
	}
	return l
}

// fromRGBA copies a premultiplied RGBA image row by row. Opaque pixels,
// the common case for camera frames, need no conversion.
func fromRGBA(name string, src *image.RGBA) *Layer {
	b := src.Rect
	l := New(name, b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		srow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		drow := l.Image.Pix[l.Image.PixOffset(0, y):]
		copy(drow[:4*b.Dx()], srow[:4*b.Dx()])
		for x := 0; x < b.Dx(); x++ {
			a := drow[4*x+3]
			l.Alpha.Pix[l.Alpha.PixOffset(x, y)] = a
			if a != 255 {
				c := color.NRGBAModel.Convert(color.RGBA{R: drow[4*x], G: drow[4*x+1], B: drow[4*x+2], A: a}).(color.NRGBA)
				drow[4*x], drow[4*x+1], drow[4*x+2] = c.R, c.G, c.B
			}
			drow[4*x+3] = 255
		}
	}
	return l
}

// fromNRGBA splits a non-premultiplied image into the two planes with row
// copies only. The image catalog stores its images in this form.
func fromNRGBA(name string, src *image.NRGBA) *Layer {
	b := src.Rect
	l := New(name, b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		srow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		drow := l.Image.Pix[l.Image.PixOffset(0, y):]
		arow := l.Alpha.Pix[l.Alpha.PixOffset(0, y):]
		copy(drow[:4*b.Dx()], srow[:4*b.Dx()])
		for x := 0; x < b.Dx(); x++ {
			arow[x] = drow[4*x+3]
			drow[4*x+3] = 255
		}
	}
	return l
}

// Width in pixels.
func (l *Layer) Width() int { return l.Image.Rect.Dx() }

// Height in pixels.
func (l *Layer) Height() int { return l.Image.Rect.Dy() }

// Bounds of both planes. Always anchored at the origin.
func (l *Layer) Bounds() image.Rectangle { return l.Image.Rect }

// IsEmpty reports whether the layer has no pixels.
func (l *Layer) IsEmpty() bool { return l.Bounds().Empty() }

// NRGBA flattens the layer into a single image with the alpha plane as
// the alpha channel.
func (l *Layer) NRGBA() *image.NRGBA {
	r := l.Bounds()
	out := image.NewNRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := l.Image.RGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: l.Alpha.GrayAt(x, y).Y})
		}
	}
	return out
}

// SetAlpha sets a flat alpha across the layer. v is clamped to [0,1].
func (l *Layer) SetAlpha(v float64) {
	a := color.Gray{Y: toByte(v)}
	draw.Draw(l.Alpha, l.Alpha.Rect, image.NewUniform(a), image.Point{}, draw.Src)
}

// SetAlphaCircular writes a radial alpha pattern centred on the layer.
//
// For a pixel at distance d from the centre, t = clamp((d-inner)/(outer-inner))
// is mapped onto [minAlpha,maxAlpha]. With middle set the pattern is
// inverted so the centre is opaque and the edges fade out.
func (l *Layer) SetAlphaCircular(inner, outer float64, middle bool, minAlpha, maxAlpha float64) {
	minAlpha, maxAlpha = clamp01(minAlpha), clamp01(maxAlpha)
	cx, cy := l.Width()/2, l.Height()/2
	span := outer - inner

	for y := 0; y < l.Height(); y++ {
		for x := 0; x < l.Width(); x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			var t float64
			switch {
			case span <= 0:
				// Degenerate ring: a hard edge at inner.
				if d >= inner {
					t = 1
				}
			default:
				t = clamp01((d - inner) / span)
			}
			if middle {
				t = 1 - t
			}
			l.Alpha.SetGray(x, y, color.Gray{Y: toByte(minAlpha + t*(maxAlpha-minAlpha))})
		}
	}
}

// Overlay composites top centred on l.
func (l *Layer) Overlay(top *Layer) {
	l.OverlayAt(top, (l.Width()-top.Width())/2, (l.Height()-top.Height())/2)
}

// OverlayAt composites top with its origin at (x, y) in l's coordinates.
// Pixels of l outside the overlap are untouched; inside it each colour
// channel becomes self*(1-a) + top*a with a = top's alpha / 255.
func (l *Layer) OverlayAt(top *Layer, x, y int) {
	placed := top.Bounds().Add(image.Pt(x, y))
	overlap := placed.Intersect(l.Bounds())
	if overlap.Empty() {
		return
	}

	for py := overlap.Min.Y; py < overlap.Max.Y; py++ {
		for px := overlap.Min.X; px < overlap.Max.X; px++ {
			tx, ty := px-x, py-y
			a := uint32(top.Alpha.GrayAt(tx, ty).Y)
			if a == 0 {
				continue
			}
			src := top.Image.RGBAAt(tx, ty)
			if a == 255 {
				l.Image.SetRGBA(px, py, color.RGBA{R: src.R, G: src.G, B: src.B, A: 255})
				continue
			}
			dst := l.Image.RGBAAt(px, py)
			l.Image.SetRGBA(px, py, color.RGBA{
				R: blend(dst.R, src.R, a),
				G: blend(dst.G, src.G, a),
				B: blend(dst.B, src.B, a),
				A: 255,
			})
		}
	}
}

func blend(dst, src uint8, a uint32) uint8 {
	return uint8((uint32(dst)*(255-a) + uint32(src)*a + 127) / 255)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
