package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/roach88/layercast/internal/layer"
)

// DefaultMonitorScale is the size of the monitor preview relative to one eye.
const DefaultMonitorScale = 0.5

var black = color.RGBA{A: 0xff}

// Outputs routes drawn layers to the stereo surface and the monitor.
//
// The stereo surface is split into two eyes side by side. A layer is
// centred in the left eye, cropped to it when larger, and the same pixels
// are written to the right eye. The monitor receives a scaled copy of that
// crop, right-aligned on the top edge.
//
// Outputs is not safe for concurrent use; the compositor only touches it
// under the instruction store's lock.
type Outputs struct {
	vive    Surface
	monitor Surface
	scale   float64
	logger  *slog.Logger

	viveOn    bool
	monitorOn bool
}

// Option configures Outputs.
type Option func(*Outputs)

// WithMonitorScale sets the monitor preview scale. Non-positive values are
// ignored.
func WithMonitorScale(s float64) Option {
	return func(o *Outputs) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Outputs) { o.logger = l }
}

// NewOutputs routes to vive and monitor, both enabled.
func NewOutputs(vive, monitor Surface, opts ...Option) *Outputs {
	o := &Outputs{
		vive:      vive,
		monitor:   monitor,
		scale:     DefaultMonitorScale,
		logger:    slog.Default(),
		viveOn:    true,
		monitorOn: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Vive reports whether the stereo output is enabled.
func (o *Outputs) Vive() bool { return o.viveOn }

// Monitor reports whether the monitor output is enabled.
func (o *Outputs) Monitor() bool { return o.monitorOn }

// SetVive enables or disables the stereo output. Disabling blanks it.
func (o *Outputs) SetVive(on bool) error {
	o.viveOn = on
	if on {
		return nil
	}
	if err := o.vive.Fill(black); err != nil {
		return fmt.Errorf("blank vive: %w", err)
	}
	return nil
}

// SetMonitor enables or disables the monitor. Disabling blanks it.
func (o *Outputs) SetMonitor(on bool) error {
	o.monitorOn = on
	if on {
		return nil
	}
	if err := o.monitor.Fill(black); err != nil {
		return fmt.Errorf("blank monitor: %w", err)
	}
	return nil
}

// EyeSize is the size of one eye of the stereo surface.
func (o *Outputs) EyeSize() image.Point {
	s := o.vive.Size()
	return image.Pt(s.X/2, s.Y)
}

// Draw writes l to every enabled output. Empty layers are ignored.
func (o *Outputs) Draw(l *layer.Layer) error {
	if l == nil || l.IsEmpty() || (!o.viveOn && !o.monitorOn) {
		return nil
	}
	eye := o.EyeSize()
	crop, at := centre(l.Image, eye)

	var errs []error
	if o.viveOn {
		if err := o.vive.Blit(crop, at); err != nil {
			errs = append(errs, fmt.Errorf("draw vive left: %w", err))
		}
		if err := o.vive.Blit(crop, at.Add(image.Pt(eye.X, 0))); err != nil {
			errs = append(errs, fmt.Errorf("draw vive right: %w", err))
		}
	}
	if o.monitorOn {
		small := o.preview(crop)
		at := image.Pt(o.monitor.Size().X-small.Rect.Dx(), 0)
		if err := o.monitor.Blit(small, at); err != nil {
			errs = append(errs, fmt.Errorf("draw monitor: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close closes both surfaces.
func (o *Outputs) Close() error {
	return errors.Join(o.vive.Close(), o.monitor.Close())
}

// centre returns the part of img that fits in an eye of the given size
// and where its top-left corner lands.
func centre(img *image.RGBA, eye image.Point) (*image.RGBA, image.Point) {
	b := img.Bounds()
	at := image.Pt((eye.X-b.Dx())/2, (eye.Y-b.Dy())/2)
	r := b
	if at.X < 0 {
		r.Min.X, r.Max.X = b.Min.X-at.X, b.Min.X-at.X+eye.X
		at.X = 0
	}
	if at.Y < 0 {
		r.Min.Y, r.Max.Y = b.Min.Y-at.Y, b.Min.Y-at.Y+eye.Y
		at.Y = 0
	}
	if r == b {
		return img, at
	}
	return img.SubImage(r).(*image.RGBA), at
}

func (o *Outputs) preview(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w := max(int(math.Round(float64(b.Dx())*o.scale)), 1)
	h := max(int(math.Round(float64(b.Dy())*o.scale)), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Rect, src, b, xdraw.Src, nil)
	return dst
}
