package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/layercast/internal/instructions"
)

// Source gives the render loop read access to the instruction list.
// *instructions.Store implements it under its low-priority lock.
type Source interface {
	Read(fn func(list instructions.List))
}

// Renderer runs the Executor until its context ends.
type Renderer struct {
	source  Source
	exec    *Executor
	limiter *rate.Limiter
	logger  *slog.Logger
	frames  atomic.Uint64
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithMaxFPS caps the frame rate. Zero or less means uncapped.
func WithMaxFPS(fps float64) RendererOption {
	return func(r *Renderer) {
		if fps > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(fps), 1)
		} else {
			r.limiter = nil
		}
	}
}

// WithRenderLogger sets the logger. Defaults to slog.Default().
func WithRenderLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer returns a loop rendering source with exec.
func NewRenderer(source Source, exec *Executor, opts ...RendererOption) *Renderer {
	r := &Renderer{source: source, exec: exec, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run renders frames until ctx is cancelled, then returns nil. Rendering
// errors never stop the loop.
func (r *Renderer) Run(ctx context.Context) error {
	r.logger.Info("render loop starting")
	for {
		if ctx.Err() != nil {
			r.logger.Info("render loop stopping", "frames", r.Frames())
			return nil
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				continue
			}
		}
		r.Step()
	}
}

// Step renders exactly one frame.
func (r *Renderer) Step() Stats {
	start := time.Now()
	var stats Stats
	r.source.Read(func(list instructions.List) {
		stats = r.exec.Render(list)
	})
	renderDuration.Observe(time.Since(start).Seconds())
	layersBuilt.Observe(float64(stats.Defined))
	if stats.Errors > 0 {
		renderErrors.Add(float64(stats.Errors))
	}
	framesTotal.Inc()
	r.frames.Add(1)
	return stats
}

// Frames is the number of frames rendered so far.
func (r *Renderer) Frames() uint64 { return r.frames.Load() }
