package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roach88/layercast/internal/ir"
	"github.com/roach88/layercast/internal/testutil"
)

// createTestStore creates a new store in a temp directory with a stepping clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path, WithClock(testutil.NewStepClock(testutil.Epoch, time.Second).Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func beginTestSession(t *testing.T, s *Store, label string) *Session {
	t.Helper()
	sess, err := s.BeginSession(context.Background(), label)
	if err != nil {
		t.Fatalf("BeginSession() failed: %v", err)
	}
	return sess
}

func inst(command string, flags ...ir.Flag) ir.Instruction {
	return ir.Instruction{Tokens: strings.Fields(command), Flags: ir.NewFlagSet(flags...)}
}
