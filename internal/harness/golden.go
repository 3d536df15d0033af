package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/layercast/internal/ir"
)

// Snapshot is what a golden file records for one scenario run.
type Snapshot struct {
	Scenario   string
	Transcript []Exchange
	Frames     []Frame
	List       []string
	Edits      []string
}

// NewSnapshot captures result under the scenario name.
func NewSnapshot(name string, result *Result) Snapshot {
	return Snapshot{
		Scenario:   name,
		Transcript: result.Transcript,
		Frames:     result.Frames,
		List:       result.List,
		Edits:      result.Edits,
	}
}

// MarshalCanonical encodes the snapshot as canonical JSON, so golden files
// are byte-stable.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	transcript := make([]any, len(s.Transcript))
	for i, e := range s.Transcript {
		transcript[i] = map[string]any{"command": e.Command, "output": e.Output}
	}
	frames := make([]any, len(s.Frames))
	for i, f := range s.Frames {
		frames[i] = map[string]any{
			"drawn":     f.Drawn,
			"defined":   f.Defined,
			"processed": f.Processed,
			"errors":    f.Errors,
		}
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario":   s.Scenario,
		"transcript": transcript,
		"frames":     frames,
		"list":       s.List,
		"edits":      s.Edits,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, result).MarshalCanonical()
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
