// Package gstcam captures a V4L2 camera through a GStreamer pipeline:
//
//	v4l2src → videoconvert → videoscale → capsfilter(RGBA) → appsink
//
// The appsink keeps one buffer and drops the rest, so the render loop always
// sees the newest frame and never queues behind the camera.
package gstcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/roach88/layercast/internal/capture"
)

// TestSource selects videotestsrc instead of a device node.
const TestSource = "test"

// ErrEndOfStream is returned by Run when the source stops producing frames.
var ErrEndOfStream = errors.New("end of stream")

// Config selects the device and the frame geometry the pipeline negotiates.
type Config struct {
	Device string
	Width  int
	Height int
	FPS    int
}

func (c Config) caps() string {
	s := fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d", c.Width, c.Height)
	if c.FPS > 0 {
		s += fmt.Sprintf(",framerate=%d/1", c.FPS)
	}
	return s
}

// Camera is a running capture pipeline.
type Camera struct {
	cfg      Config
	logger   *slog.Logger
	pipeline *gst.Pipeline
	latest   *capture.Latest
}

// Open builds the pipeline and sets it playing. Frames arrive
// asynchronously; until the first one ReadFrame returns black.
func Open(cfg Config, logger *slog.Logger) (*Camera, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid camera size %dx%d", cfg.Width, cfg.Height)
	}
	if logger == nil {
		logger = slog.Default()
	}
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	src, err := newSource(cfg.Device)
	if err != nil {
		return nil, err
	}
	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("create videoconvert: %w", err)
	}
	scale, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("create videoscale: %w", err)
	}
	filter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("create capsfilter: %w", err)
	}
	filter.SetProperty("caps", gst.NewCapsFromString(cfg.caps()))

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 1)
	sink.SetProperty("drop", true)

	if err := pipeline.AddMany(src, convert, scale, filter, sink.Element); err != nil {
		return nil, fmt.Errorf("add elements: %w", err)
	}
	if err := gst.ElementLinkMany(src, convert, scale, filter, sink.Element); err != nil {
		return nil, fmt.Errorf("link elements: %w", err)
	}

	c := &Camera{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		latest:   capture.NewLatest(cfg.Width, cfg.Height),
	}
	sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: c.onSample,
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("start pipeline: %w", err)
	}
	logger.Info("camera started", "device", cfg.Device, "caps", cfg.caps())
	return c, nil
}

func newSource(device string) (*gst.Element, error) {
	if device == TestSource {
		src, err := gst.NewElement("videotestsrc")
		if err != nil {
			return nil, fmt.Errorf("create videotestsrc: %w", err)
		}
		src.SetProperty("is-live", true)
		return src, nil
	}
	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return nil, fmt.Errorf("create v4l2src: %w", err)
	}
	if device != "" {
		src.SetProperty("device", device)
	}
	return src, nil
}

// onSample runs on the GStreamer streaming thread. A bad sample is skipped
// rather than ending the stream.
func (c *Camera) onSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}
	data := buffer.Map(gst.MapRead).Bytes()
	err := c.latest.Publish(c.cfg.Width, c.cfg.Height, data)
	buffer.Unmap()
	if err != nil {
		c.logger.Debug("dropping camera frame", "error", err)
	}
	return gst.FlowOK
}

// ReadFrame returns the newest captured frame.
func (c *Camera) ReadFrame() (*image.RGBA, error) {
	return c.latest.ReadFrame()
}

// Frames is the number of frames captured so far.
func (c *Camera) Frames() uint64 { return c.latest.Published() }

// Run watches the pipeline bus until ctx is cancelled. It returns nil on
// cancellation and an error when the pipeline fails or reaches end of
// stream; the last frame stays readable either way.
func (c *Camera) Run(ctx context.Context) error {
	bus := c.pipeline.GetPipelineBus()
	started := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			c.logger.Warn("camera end of stream", "uptime", time.Since(started), "frames", c.Frames())
			return ErrEndOfStream
		case gst.MessageError:
			gerr := msg.ParseError()
			c.logger.Error("camera pipeline error",
				"error", gerr.Error(),
				"debug", gerr.DebugString(),
				"frames", c.Frames(),
			)
			return fmt.Errorf("camera pipeline: %s", gerr.Error())
		case gst.MessageStateChanged:
			if msg.Source() == c.pipeline.GetName() {
				from, to := msg.ParseStateChanged()
				c.logger.Debug("camera state changed", "from", from, "to", to)
			}
		}
	}
}

// Close stops the pipeline.
func (c *Camera) Close() error {
	if err := c.pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("stop pipeline: %w", err)
	}
	return nil
}
