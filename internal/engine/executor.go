package engine

import (
	"image"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/ir"
	"github.com/roach88/layercast/internal/layer"
)

// Camera supplies live frames.
type Camera interface {
	ReadFrame() (*image.RGBA, error)
}

// Images looks up catalog images by file name.
type Images interface {
	Image(name string) (image.Image, bool)
}

// TextRenderer turns a string into a layer whose alpha plane is the glyph
// coverage.
type TextRenderer interface {
	Render(s string) *layer.Layer
}

// Output receives layers to display.
type Output interface {
	Draw(l *layer.Layer) error
}

// Stats describes one Render call.
type Stats struct {
	Defined   int
	Processed int
	Drawn     int
	Errors    int
}

// Executor interprets an instruction list into layers and draws them.
type Executor struct {
	camera Camera
	images Images
	text   TextRenderer
	output Output
	logger *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// WithText sets the renderer used by text instructions. Without one,
// text instructions are skipped.
func WithText(t TextRenderer) ExecutorOption {
	return func(e *Executor) { e.text = t }
}

// NewExecutor returns an executor drawing to output. camera and images may
// be nil; layers defined from a missing collaborator are empty.
func NewExecutor(camera Camera, images Images, output Output, opts ...ExecutorOption) *Executor {
	e := &Executor{
		camera: camera,
		images: images,
		output: output,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render executes list once. Per-instruction failures are logged and
// counted; the rest of the list still runs.
func (e *Executor) Render(list instructions.List) Stats {
	var (
		stats  Stats
		layers []*layer.Layer
	)
	for i, inst := range list {
		switch inst.Role() {
		case ir.RoleDefine:
			layers = append(layers, e.define(inst, &stats))
			stats.Defined++
		case ir.RoleProcess:
			target := find(layers, inst.Layer())
			if target == nil {
				continue
			}
			if !e.process(target, inst, layers) {
				stats.Errors++
				e.logger.Debug("instruction skipped", "index", i, "instruction", inst.String())
				continue
			}
			stats.Processed++
		case ir.RoleDraw:
			target := find(layers, inst.Layer())
			if target == nil {
				continue
			}
			if err := e.output.Draw(target); err != nil {
				stats.Errors++
				e.logger.Warn("draw failed", "layer", target.Name, "error", err)
				continue
			}
			stats.Drawn++
		}
	}
	return stats
}

func find(layers []*layer.Layer, name string) *layer.Layer {
	for _, l := range layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func (e *Executor) define(inst ir.Instruction, stats *Stats) *layer.Layer {
	name := inst.Layer()
	switch {
	case inst.Flags.Has(ir.FlagCamera):
		if e.camera == nil {
			e.logger.Debug("no camera, defining empty layer", "layer", name)
			return layer.Empty(name)
		}
		frame, err := e.camera.ReadFrame()
		if err != nil {
			stats.Errors++
			e.logger.Warn("camera read failed", "layer", name, "error", err)
			return layer.Empty(name)
		}
		return layer.FromImage(name, frame)
	case inst.Flags.Has(ir.FlagImage):
		file := inst.Token(len(inst.Tokens) - 1)
		if e.images == nil {
			e.logger.Debug("no catalog, defining empty layer", "layer", name)
			return layer.Empty(name)
		}
		img, ok := e.images.Image(file)
		if !ok {
			e.logger.Debug("image not in catalog", "layer", name, "file", file)
			return layer.Empty(name)
		}
		return layer.FromImage(name, img)
	default:
		e.logger.Debug("unknown layer source", "layer", name, "instruction", inst.String())
		return layer.Empty(name)
	}
}

// process applies one process instruction to target. It reports false when
// an argument does not parse.
func (e *Executor) process(target *layer.Layer, inst ir.Instruction, layers []*layer.Layer) bool {
	f := inst.Flags
	switch {
	case f.Has(ir.FlagResizeDims):
		w, okw := intArg(inst, 4)
		h, okh := intArg(inst, 5)
		if !okw || !okh {
			return false
		}
		if err := target.Resize(w, h); err != nil {
			e.logger.Debug("resize rejected", "layer", target.Name, "error", err)
			return false
		}
	case f.Has(ir.FlagResizeScale):
		s, ok := floatArg(inst, 4)
		if !ok {
			return false
		}
		if err := target.Scale(s); err != nil {
			e.logger.Debug("scale rejected", "layer", target.Name, "error", err)
			return false
		}
	case f.Has(ir.FlagRotate):
		deg, ok := floatArg(inst, 3)
		if !ok {
			return false
		}
		target.Rotate(deg)
	case f.Has(ir.FlagAlphaFlat):
		v, ok := floatArg(inst, 4)
		if !ok {
			return false
		}
		target.SetAlpha(v)
	case f.Has(ir.FlagAlphaInverted):
		in, okIn := floatArg(inst, 5)
		out, okOut := floatArg(inst, 6)
		if !okIn || !okOut {
			return false
		}
		target.SetAlphaCircular(in, out, true, 0, 1)
	case f.Has(ir.FlagAlphaCircular):
		in, okIn := floatArg(inst, 4)
		out, okOut := floatArg(inst, 5)
		if !okIn || !okOut {
			return false
		}
		target.SetAlphaCircular(in, out, false, 0, 1)
	case f.Has(ir.FlagText):
		if e.text == nil {
			return false
		}
		if len(inst.Tokens) <= 3 {
			return false
		}
		target.Overlay(e.text.Render(strings.Join(inst.Tokens[3:], " ")))
	case f.Has(ir.FlagOverlayAt):
		top := find(layers, inst.Token(3))
		x, okx := intArg(inst, 4)
		y, oky := intArg(inst, 5)
		if top == nil || !okx || !oky {
			return false
		}
		target.OverlayAt(top, x, y)
	case f.Has(ir.FlagOverlay):
		top := find(layers, inst.Token(3))
		if top == nil {
			return false
		}
		target.Overlay(top)
	default:
		return false
	}
	return true
}

func intArg(inst ir.Instruction, i int) (int, bool) {
	v, err := strconv.Atoi(inst.Token(i))
	return v, err == nil
}

func floatArg(inst ir.Instruction, i int) (float64, bool) {
	v, err := strconv.ParseFloat(inst.Token(i), 64)
	return v, err == nil
}
