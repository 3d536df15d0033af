package layer

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// MaxDimension bounds both sides of a resized layer.
const MaxDimension = 8192

// ErrTooLarge is returned by Resize and Scale when the result would exceed
// MaxDimension on either side. The layer is left unchanged.
var ErrTooLarge = errors.New("layer too large")

// Resize scales the layer to width x height with bilinear filtering.
// Non-positive dimensions leave the layer empty.
func (l *Layer) Resize(width, height int) error {
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("resize to %dx%d (max %d): %w", width, height, MaxDimension, ErrTooLarge)
	}
	if width <= 0 || height <= 0 {
		l.Image, l.Alpha = image.NewRGBA(image.Rectangle{}), image.NewGray(image.Rectangle{})
		return nil
	}
	if l.IsEmpty() {
		return nil
	}
	r := image.Rect(0, 0, width, height)
	img := image.NewRGBA(r)
	alpha := image.NewGray(r)
	xdraw.BiLinear.Scale(img, r, l.Image, l.Image.Rect, xdraw.Src, nil)
	xdraw.BiLinear.Scale(alpha, r, l.Alpha, l.Alpha.Rect, xdraw.Src, nil)
	l.Image, l.Alpha = img, alpha
	return nil
}

// Scale resizes the layer by a uniform factor.
func (l *Layer) Scale(factor float64) error {
	if factor == 1 {
		return nil
	}
	if math.IsNaN(factor) {
		return fmt.Errorf("scale by %v: not a number", factor)
	}
	// Compare as floats so huge factors never reach the int conversion.
	w := math.Round(float64(l.Width()) * factor)
	h := math.Round(float64(l.Height()) * factor)
	if w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("scale %dx%d by %v (max %d): %w", l.Width(), l.Height(), factor, MaxDimension, ErrTooLarge)
	}
	if w <= 0 || h <= 0 {
		return l.Resize(0, 0)
	}
	return l.Resize(int(w), int(h))
}

// Rotate turns the layer counter-clockwise by degrees around its centre.
// The result keeps the original bounds: corners that leave the frame are
// cropped and uncovered pixels become black and transparent.
func (l *Layer) Rotate(degrees float64) {
	if l.IsEmpty() || math.Mod(degrees, 360) == 0 {
		return
	}
	m := rotation(l.Bounds(), degrees)
	img := image.NewRGBA(l.Image.Rect)
	alpha := image.NewGray(l.Alpha.Rect)
	xdraw.BiLinear.Transform(img, m, l.Image, l.Image.Rect, xdraw.Src, nil)
	xdraw.BiLinear.Transform(alpha, m, l.Alpha, l.Alpha.Rect, xdraw.Src, nil)
	opaque(img)
	l.Image, l.Alpha = img, alpha
}

// rotation builds the source-to-destination affine transform for a
// rotation about the centre of r. Positive angles turn counter-clockwise
// on screen. x/image samples at pixel centres (x+0.5), so the geometric
// centre is Dx/2 rather than (Dx-1)/2.
func rotation(r image.Rectangle, degrees float64) f64.Aff3 {
	rad := degrees * math.Pi / 180
	a, b := math.Cos(rad), math.Sin(rad)
	cx := float64(r.Dx()) / 2
	cy := float64(r.Dy()) / 2
	return f64.Aff3{
		a, b, (1-a)*cx - b*cy,
		-b, a, b*cx + (1-a)*cy,
	}
}

// Crop keeps only the part of the layer inside r, re-anchored at the origin.
func (l *Layer) Crop(r image.Rectangle) {
	r = r.Intersect(l.Bounds())
	dst := image.Rect(0, 0, r.Dx(), r.Dy())
	img := image.NewRGBA(dst)
	alpha := image.NewGray(dst)
	xdraw.Copy(img, image.Point{}, l.Image, r, xdraw.Src, nil)
	xdraw.Copy(alpha, image.Point{}, l.Alpha, r, xdraw.Src, nil)
	l.Image, l.Alpha = img, alpha
}

// opaque forces the colour plane's own alpha back to 255. Transparency
// lives in the alpha plane only.
func opaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
}
