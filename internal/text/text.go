// Package text rasterizes operator captions into layers.
//
// Glyph rendering is done by golang.org/x/image/font; this package only
// wraps lines, tints the coverage mask and scales the result.
package text

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/roach88/layercast/internal/layer"
)

// Built-in face names accepted by LoadFace.
const (
	FaceBasic = "basic"
	FaceGo    = "go"
)

// Style controls how captions look.
type Style struct {
	Color    color.NRGBA
	Scale    float64
	MaxChars int
}

// DefaultStyle is white text, tripled in size, wrapped at 15 characters.
var DefaultStyle = Style{
	Color:    color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	Scale:    3,
	MaxChars: 15,
}

// LoadFace returns the basic bitmap face, the Go Regular face at size, or
// the TrueType/OpenType font at path spec.
func LoadFace(spec string, size float64) (font.Face, error) {
	switch spec {
	case "", FaceBasic:
		return basicfont.Face7x13, nil
	case FaceGo:
		return parseFace(goregular.TTF, size)
	default:
		data, err := os.ReadFile(spec)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		face, err := parseFace(data, size)
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", spec, err)
		}
		return face, nil
	}
}

func parseFace(data []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 13
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Renderer turns strings into tinted layers. It is safe for concurrent
// use; font faces are not, so rendering is serialized.
type Renderer struct {
	mu    sync.Mutex
	face  font.Face
	style Style
}

// NewRenderer creates a renderer. A nil face falls back to the basic face.
func NewRenderer(face font.Face, style Style) *Renderer {
	if face == nil {
		face = basicfont.Face7x13
	}
	if style.Scale <= 0 {
		style.Scale = 1
	}
	return &Renderer{face: face, style: style}
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style { return r.style }

// Render draws s as wrapped lines on a transparent layer named "text".
// The colour plane is the style colour everywhere; the glyph coverage is
// the alpha plane.
func (r *Renderer) Render(s string) *layer.Layer {
	lines := Wrap(s, r.style.MaxChars)
	if len(lines) == 0 {
		return layer.Empty("text")
	}

	r.mu.Lock()
	mask := r.rasterize(lines)
	r.mu.Unlock()

	l := layer.New("text", mask.Rect.Dx(), mask.Rect.Dy())
	c := r.style.Color
	for y := 0; y < mask.Rect.Dy(); y++ {
		for x := 0; x < mask.Rect.Dx(); x++ {
			l.Image.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
			cov := uint32(mask.AlphaAt(x, y).A)
			l.Alpha.SetGray(x, y, color.Gray{Y: uint8((cov*uint32(c.A) + 127) / 255)})
		}
	}
	// A caption too tall to scale is drawn at its natural size.
	_ = l.Scale(r.style.Scale)
	return l
}

func (r *Renderer) rasterize(lines []string) *image.Alpha {
	m := r.face.Metrics()
	lineHeight := m.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = (m.Ascent + m.Descent).Ceil()
	}

	// Lines past the layer size limit are never visible.
	if n := layer.MaxDimension / max(lineHeight, 1); len(lines) > n {
		lines = lines[:n]
	}
	width := 0
	for _, line := range lines {
		width = max(width, font.MeasureString(r.face, line).Ceil())
	}
	mask := image.NewAlpha(image.Rect(0, 0, min(width, layer.MaxDimension), lineHeight*len(lines)))

	d := &font.Drawer{Dst: mask, Src: image.Opaque, Face: r.face}
	for i, line := range lines {
		d.Dot = fixed.Point26_6{X: 0, Y: m.Ascent + fixed.I(i*lineHeight)}
		d.DrawString(line)
	}
	return mask
}

// Wrap splits s into lines of at most maxChars runes, breaking between
// words where possible and splitting words longer than a line. A
// non-positive maxChars disables wrapping.
func Wrap(s string, maxChars int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	if maxChars <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var (
		lines []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}
	for _, w := range words {
		word := []rune(w)
		for len(word) > maxChars {
			flush()
			lines = append(lines, string(word[:maxChars]))
			word = word[maxChars:]
		}
		if len(cur) > 0 && len(cur)+1+len(word) > maxChars {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, word...)
	}
	flush()
	return lines
}
