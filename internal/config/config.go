// Package config loads layercast's settings: built-in defaults, then an
// optional YAML file, then command-line overrides. The merged result is
// checked against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Memory selects an in-memory surface instead of a framebuffer device.
const Memory = "memory"

// Config is the full set of settings.
type Config struct {
	Devices         Devices `yaml:"devices" json:"devices"`
	Camera          Camera  `yaml:"camera" json:"camera"`
	ImagesDir       string  `yaml:"images_dir" json:"images_dir"`
	InstructionsDir string  `yaml:"instructions_dir" json:"instructions_dir"`
	Grammar         string  `yaml:"grammar" json:"grammar"`
	Load            string  `yaml:"load" json:"load"`
	Text            Text    `yaml:"text" json:"text"`
	Outputs         Outputs `yaml:"outputs" json:"outputs"`
	MonitorScale    float64 `yaml:"monitor_scale" json:"monitor_scale"`
	MaxFPS          float64 `yaml:"max_fps" json:"max_fps"`
	Journal         string  `yaml:"journal" json:"journal"`
	MetricsAddr     string  `yaml:"metrics_addr" json:"metrics_addr"`
}

// Devices are the framebuffer paths of the two outputs, or Memory.
type Devices struct {
	Vive    string `yaml:"vive" json:"vive"`
	Monitor string `yaml:"monitor" json:"monitor"`
}

// Camera selects the capture device. An empty Device serves black frames.
type Camera struct {
	Device string `yaml:"device" json:"device"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	FPS    int    `yaml:"fps" json:"fps"`
}

// Text styles captions.
type Text struct {
	Font     string  `yaml:"font" json:"font"`
	Size     float64 `yaml:"size" json:"size"`
	Scale    float64 `yaml:"scale" json:"scale"`
	MaxChars int     `yaml:"max_chars" json:"max_chars"`
	Color    Color   `yaml:"color" json:"color"`
}

// Color is an 8-bit RGBA colour.
type Color struct {
	R int `yaml:"r" json:"r"`
	G int `yaml:"g" json:"g"`
	B int `yaml:"b" json:"b"`
	A int `yaml:"a" json:"a"`
}

// Outputs is the initial display routing.
type Outputs struct {
	Monitor bool `yaml:"monitor" json:"monitor"`
	Vive    bool `yaml:"vive" json:"vive"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Devices: Devices{Vive: "/dev/fb1", Monitor: "/dev/fb0"},
		Camera:  Camera{Device: "/dev/video0", Width: 1080, Height: 1200, FPS: 30},
		ImagesDir:       "images",
		InstructionsDir: "instructions",
		Text: Text{
			Font:     "basic",
			Size:     13,
			Scale:    3,
			MaxChars: 15,
			Color:    Color{R: 255, G: 255, B: 255, A: 255},
		},
		Outputs:      Outputs{Monitor: true, Vive: true},
		MonitorScale: 0.5,
		MaxFPS:       60,
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays YAML from r onto cfg. Unknown keys are errors.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// ValidationError is a schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "invalid config: " + e.Message
	}
	return fmt.Sprintf("invalid config: %s: %s", e.Path, e.Message)
}

// Validate checks cfg against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError reduces a CUE error list to its first entry.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	first := errs[0]
	format, args := first.Msg()
	path := slices.DeleteFunc(slices.Clone(first.Path()), func(p string) bool { return p == "#Config" })
	return &ValidationError{
		Path:    strings.Join(path, "."),
		Message: fmt.Sprintf(format, args...),
	}
}
