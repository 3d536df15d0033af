package harness

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/roach88/layercast/internal/catalog"
	"github.com/roach88/layercast/internal/console"
	"github.com/roach88/layercast/internal/display"
	"github.com/roach88/layercast/internal/engine"
	"github.com/roach88/layercast/internal/grammar"
	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/layer"
	"github.com/roach88/layercast/internal/store"
	"github.com/roach88/layercast/internal/testutil"
	"github.com/roach88/layercast/internal/text"
)

// DirPlaceholder replaces the session's working directory in transcripts.
const DirPlaceholder = "$DIR"

// Default camera frame when a scenario names none.
const (
	defaultCameraWidth  = 8
	defaultCameraHeight = 6
)

// session is one scenario's compositor, wired like "layercast run" but
// with fake devices and an in-memory journal.
type session struct {
	dir      string
	journal  *store.Store
	history  *store.Session
	store    *instructions.Store
	console  *console.Console
	renderer *engine.Renderer
	vive     *display.Memory
	monitor  *display.Memory
	recorder *testutil.RecordingOutput
	out      *bytes.Buffer
}

// tee draws to the routed outputs and records what was drawn.
type tee struct {
	outputs  *display.Outputs
	recorder *testutil.RecordingOutput
}

func (t tee) Draw(l *layer.Layer) error {
	if err := t.recorder.Draw(l); err != nil {
		return err
	}
	return t.outputs.Draw(l)
}

// Run executes a scenario and returns its result.
//
// Each scenario runs in a fresh temporary directory and a fresh in-memory
// journal. Commands go through the real grammar, console and instruction
// store; rendering uses the real executor and output routing.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	s, err := newSession(ctx, scenario)
	if err != nil {
		return nil, err
	}
	defer s.close()

	result := NewResult()
	for _, step := range scenario.Steps {
		if step.Command != "" {
			s.console.Execute(ctx, step.Command)
			result.Transcript = append(result.Transcript, Exchange{
				Command: step.Command,
				Output:  strings.ReplaceAll(s.out.String(), s.dir, DirPlaceholder),
			})
			s.out.Reset()
			continue
		}
		for range step.Render {
			s.recorder.Reset()
			stats := s.renderer.Step()
			drawn := s.recorder.Names()
			if drawn == nil {
				drawn = []string{}
			}
			result.Frames = append(result.Frames, Frame{
				Drawn:     drawn,
				Defined:   stats.Defined,
				Processed: stats.Processed,
				Errors:    stats.Errors,
			})
		}
	}

	for _, inst := range s.store.Snapshot() {
		result.List = append(result.List, inst.String())
	}
	edits, err := s.history.Edits(ctx)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	for _, e := range edits {
		result.Edits = append(result.Edits, console.FormatEdit(e))
	}

	if err := s.evaluate(ctx, scenario.Assertions, result); err != nil {
		return nil, err
	}
	return result, nil
}

func newSession(ctx context.Context, scenario *Scenario) (*session, error) {
	dir, err := os.MkdirTemp("", "layercast-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	s := &session{dir: dir, out: &bytes.Buffer{}, recorder: &testutil.RecordingOutput{}}

	for name, content := range scenario.Files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			s.close()
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	clock := testutil.NewStepClock(testutil.Epoch, time.Millisecond)
	s.journal, err = store.Open(":memory:", store.WithClock(clock.Now))
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	s.history, err = s.journal.BeginSession(ctx, scenario.Name)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to begin session: %w", err)
	}

	cam := Fill{Width: defaultCameraWidth, Height: defaultCameraHeight}
	if scenario.Camera != nil {
		cam = *scenario.Camera
	}
	camera := testutil.NewFakeCamera(testutil.SolidFrame(cam.Width, cam.Height, cam.RGBA()))

	images := catalog.New()
	names := make([]string, 0, len(scenario.Images))
	for name := range scenario.Images {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		f := scenario.Images[name]
		images.Put(name, testutil.SolidFrame(f.Width, f.Height, f.RGBA()))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.vive = display.NewMemory(2*cam.Width, cam.Height)
	s.monitor = display.NewMemory(cam.Width, cam.Height)
	outputs := display.NewOutputs(s.vive, s.monitor, display.WithLogger(logger))

	s.store = instructions.NewStore(
		instructions.WithImages(images),
		instructions.WithJournal(s.history),
		instructions.WithLogger(logger),
	)
	s.console = console.New(grammar.Default(), s.store,
		console.WithOutputs(outputs),
		console.WithHistory(s.history),
		console.WithInstructionsDir(dir),
		console.WithWriter(s.out),
		console.WithLogger(logger),
	)
	s.renderer = engine.NewRenderer(s.store,
		engine.NewExecutor(camera, images, tee{outputs: outputs, recorder: s.recorder},
			engine.WithLogger(logger),
			engine.WithText(text.NewRenderer(nil, text.DefaultStyle)),
		),
		engine.WithRenderLogger(logger),
	)
	return s, nil
}

func (s *session) close() {
	if s.journal != nil {
		s.journal.Close()
	}
	os.RemoveAll(s.dir)
}

// surface returns the named output surface.
func (s *session) surface(name string) *image.RGBA {
	if name == "vive" {
		return s.vive.Image()
	}
	return s.monitor.Image()
}

func colorOf(c []int) color.RGBA {
	return Fill{Color: c}.RGBA()
}
