package harness

import (
	"context"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/roach88/layercast/internal/instructions"
)

// evaluate checks every assertion, recording failures on result.
func (s *session) evaluate(ctx context.Context, assertions []Assertion, result *Result) error {
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalList:
			err = assertFinalList(a, result)
		case AssertOutputContains:
			err = assertOutputContains(a, result)
		case AssertDrawn:
			err = assertDrawn(a, result)
		case AssertPixel:
			err = s.assertPixel(a)
		case AssertJournalReplays:
			err = s.assertJournalReplays(ctx)
		case AssertEditCount:
			err = assertEditCount(a, result)
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return nil
}

func assertFinalList(a Assertion, result *Result) error {
	want := a.Commands
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(result.List, want) {
		return fmt.Errorf("list is %q, want %q", result.List, want)
	}
	return nil
}

func assertOutputContains(a Assertion, result *Result) error {
	if !strings.Contains(result.Output(), a.Text) {
		return fmt.Errorf("output does not contain %q", a.Text)
	}
	return nil
}

func assertDrawn(a Assertion, result *Result) error {
	if a.Frame >= len(result.Frames) {
		return fmt.Errorf("frame %d not rendered (%d frames)", a.Frame, len(result.Frames))
	}
	got := result.Frames[a.Frame].Drawn
	want := a.Layers
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("frame %d drew %q, want %q", a.Frame, got, want)
	}
	return nil
}

func (s *session) assertPixel(a Assertion) error {
	img := s.surface(a.Output)
	if !image.Pt(a.X, a.Y).In(img.Rect) {
		return fmt.Errorf("(%d, %d) is outside the %s surface %v", a.X, a.Y, a.Output, img.Rect)
	}
	got := img.RGBAAt(a.X, a.Y)
	want := colorOf(a.Color)
	if got != want {
		return fmt.Errorf("%s pixel (%d, %d) is %v, want %v", a.Output, a.X, a.Y, got, want)
	}
	return nil
}

// assertJournalReplays rebuilds the list from the journal and compares it
// with the live list.
func (s *session) assertJournalReplays(ctx context.Context) error {
	edits, err := s.history.Edits(ctx)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	replayed, err := instructions.Replay(edits)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if live := s.store.Snapshot(); !replayed.Equal(live) {
		return fmt.Errorf("replayed list %v differs from the live list %v", commands(replayed), commands(live))
	}
	return nil
}

func assertEditCount(a Assertion, result *Result) error {
	if len(result.Edits) != a.Count {
		return fmt.Errorf("journal has %d edits, want %d", len(result.Edits), a.Count)
	}
	return nil
}

func commands(list instructions.List) []string {
	out := make([]string, len(list))
	for i, inst := range list {
		out[i] = inst.String()
	}
	return out
}
