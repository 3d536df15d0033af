package harness

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted operator session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Camera is the frame the fake camera serves. Defaults to 8x6 black.
	Camera *Fill `yaml:"camera,omitempty"`

	// Images are placed in the image catalog under their file names.
	Images map[string]Fill `yaml:"images,omitempty"`

	// Files are written to the instructions directory before the first
	// step, for load commands to read.
	Files map[string]string `yaml:"files,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Fill is a solid-colour image.
type Fill struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Color  []int `yaml:"color"`
}

// RGBA returns the fill colour. A missing colour is opaque black.
func (f Fill) RGBA() color.RGBA {
	c := color.RGBA{A: 255}
	if len(f.Color) == 4 {
		c = color.RGBA{R: uint8(f.Color[0]), G: uint8(f.Color[1]), B: uint8(f.Color[2]), A: uint8(f.Color[3])}
	}
	return c
}

// Step is one operator action: a console command, or rendering frames.
type Step struct {
	Command string `yaml:"command,omitempty"`
	Render  int    `yaml:"render,omitempty"`
}

// Assertion checks the outcome of a session.
type Assertion struct {
	Type string `yaml:"type"`

	// Commands is the expected list (final_list).
	Commands []string `yaml:"commands,omitempty"`

	// Text must appear in the console output (output_contains).
	Text string `yaml:"text,omitempty"`

	// Frame indexes rendered frames from 0; Layers are the expected draws (drawn).
	Frame  int      `yaml:"frame,omitempty"`
	Layers []string `yaml:"layers,omitempty"`

	// Output is "vive" or "monitor"; X, Y and Color locate and describe the
	// expected pixel (pixel).
	Output string `yaml:"output,omitempty"`
	X      int    `yaml:"x,omitempty"`
	Y      int    `yaml:"y,omitempty"`
	Color  []int  `yaml:"color,omitempty"`

	// Count is the expected number of journaled edits (edit_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalList      = "final_list"
	AssertOutputContains = "output_contains"
	AssertDrawn          = "drawn"
	AssertPixel          = "pixel"
	AssertJournalReplays = "journal_replays"
	AssertEditCount      = "edit_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected to catch typos like "assertion:".
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Camera != nil {
		if err := validateFill("camera", *s.Camera); err != nil {
			return err
		}
	}
	for name, f := range s.Images {
		if err := validateFill("images."+name, f); err != nil {
			return err
		}
	}
	for name := range s.Files {
		if name != filepath.Base(name) {
			return fmt.Errorf("files.%s: must be a plain file name", name)
		}
	}

	for i, step := range s.Steps {
		switch {
		case step.Command != "" && step.Render != 0:
			return fmt.Errorf("steps[%d]: command and render are exclusive", i)
		case step.Command == "" && step.Render <= 0:
			return fmt.Errorf("steps[%d]: command or a positive render count is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateFill(where string, f Fill) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%s: width and height must be positive", where)
	}
	if f.Color != nil && len(f.Color) != 4 {
		return fmt.Errorf("%s: color must be [r, g, b, a]", where)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalList, AssertJournalReplays:
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for output_contains", index)
		}
	case AssertDrawn:
		if a.Frame < 0 {
			return fmt.Errorf("assertions[%d]: frame must be non-negative for drawn", index)
		}
	case AssertPixel:
		if a.Output != "vive" && a.Output != "monitor" {
			return fmt.Errorf("assertions[%d]: output must be vive or monitor", index)
		}
		if len(a.Color) != 4 {
			return fmt.Errorf("assertions[%d]: color must be [r, g, b, a] for pixel", index)
		}
	case AssertEditCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for edit_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
