package cli

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/roach88/layercast/internal/capture"
	"github.com/roach88/layercast/internal/capture/gstcam"
	"github.com/roach88/layercast/internal/catalog"
	"github.com/roach88/layercast/internal/config"
	"github.com/roach88/layercast/internal/display"
	"github.com/roach88/layercast/internal/engine"
	"github.com/roach88/layercast/internal/grammar"
	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/store"
	"github.com/roach88/layercast/internal/text"
)

// components are the collaborators of one compositor run. Every resource
// that fails to open is replaced by a stand-in and logged, so a run only
// fails on an unusable journal.
type components struct {
	grammar *grammar.Grammar
	catalog *catalog.Catalog
	camera  engine.Camera
	gst     *gstcam.Camera
	outputs *display.Outputs
	text    *text.Renderer
	journal *store.Store
	session *store.Session
	store   *instructions.Store
	logger  *slog.Logger
}

func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*components, error) {
	c := &components{logger: logger}

	c.grammar = openGrammar(cfg.Grammar, logger)
	c.catalog = openCatalog(cfg.ImagesDir, logger)
	c.camera, c.gst = openCamera(cfg.Camera, logger)

	eye := capture.Blank{Width: cfg.Camera.Width, Height: cfg.Camera.Height}
	vive := openSurface("vive", cfg.Devices.Vive, 2*eye.Width, eye.Height, logger)
	monitor := openSurface("monitor", cfg.Devices.Monitor, eye.Width, eye.Height, logger)
	c.outputs = display.NewOutputs(vive, monitor,
		display.WithMonitorScale(cfg.MonitorScale),
		display.WithLogger(logger),
	)
	if !cfg.Outputs.Vive {
		logIfErr(logger, "disable vive", c.outputs.SetVive(false))
	}
	if !cfg.Outputs.Monitor {
		logIfErr(logger, "disable monitor", c.outputs.SetMonitor(false))
	}

	c.text = newTextRenderer(cfg.Text, logger)

	if cfg.Journal != "" {
		st, err := store.Open(cfg.Journal)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		sess, err := st.BeginSession(ctx, cfg.Load)
		if err != nil {
			st.Close()
			c.close()
			return nil, fmt.Errorf("begin journal session: %w", err)
		}
		c.journal, c.session = st, sess
		logger.Info("journaling edits", "db", cfg.Journal, "session", sess.ID())
	}

	c.store = instructions.NewStore(storeOptions(c, logger)...)
	return c, nil
}

// close releases devices and the journal. Errors are logged.
func (c *components) close() {
	if c.outputs != nil {
		logIfErr(c.logger, "close outputs", c.outputs.Close())
	}
	if c.gst != nil {
		logIfErr(c.logger, "close camera", c.gst.Close())
	}
	if c.journal != nil {
		logIfErr(c.logger, "close journal", c.journal.Close())
	}
}

func openGrammar(path string, logger *slog.Logger) *grammar.Grammar {
	if path == "" {
		return grammar.Default()
	}
	g, err := grammar.CompileFile(path)
	if err != nil {
		logger.Error("grammar does not compile, no command will be recognized", "path", path, "error", err)
		return grammar.Empty()
	}
	logger.Info("grammar loaded", "path", path, "nodes", g.Count())
	return g
}

func openCatalog(dir string, logger *slog.Logger) *catalog.Catalog {
	cat, err := catalog.Open(dir, logger)
	if err != nil {
		logger.Warn("image catalog unavailable, image layers will be pruned", "dir", dir, "error", err)
		return catalog.New()
	}
	logger.Info("image catalog loaded", "dir", dir, "images", len(cat.Names()))
	return cat
}

func openCamera(cfg config.Camera, logger *slog.Logger) (engine.Camera, *gstcam.Camera) {
	blank := capture.Blank{Width: cfg.Width, Height: cfg.Height}
	if cfg.Device == "" {
		logger.Info("no camera configured, serving black frames")
		return blank, nil
	}
	cam, err := gstcam.Open(gstcam.Config{
		Device: cfg.Device,
		Width:  cfg.Width,
		Height: cfg.Height,
		FPS:    cfg.FPS,
	}, logger)
	if err != nil {
		logger.Warn("camera unavailable, serving black frames", "device", cfg.Device, "error", err)
		return blank, nil
	}
	return cam, cam
}

// openSurface maps a framebuffer, or returns an in-memory surface of the
// given size for config.Memory and for devices that cannot be opened.
func openSurface(name, path string, width, height int, logger *slog.Logger) display.Surface {
	if path == config.Memory || path == "" {
		return display.NewMemory(width, height)
	}
	fb, err := display.OpenFramebuffer(path)
	if err != nil {
		logger.Warn("output unavailable, drawing to memory", "output", name, "device", path, "error", err)
		return display.NewMemory(width, height)
	}
	size := fb.Size()
	logger.Info("output opened", "output", name, "device", path, "width", size.X, "height", size.Y)
	return fb
}

func newTextRenderer(cfg config.Text, logger *slog.Logger) *text.Renderer {
	face, err := text.LoadFace(cfg.Font, cfg.Size)
	if err != nil {
		logger.Warn("font unavailable, using the basic face", "font", cfg.Font, "error", err)
		face = nil
	}
	return text.NewRenderer(face, text.Style{
		Color: color.NRGBA{
			R: uint8(cfg.Color.R),
			G: uint8(cfg.Color.G),
			B: uint8(cfg.Color.B),
			A: uint8(cfg.Color.A),
		},
		Scale:    cfg.Scale,
		MaxChars: cfg.MaxChars,
	})
}

func logIfErr(logger *slog.Logger, what string, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn(what+" failed", "error", err)
	}
}
