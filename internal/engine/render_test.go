package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/ir"
	"github.com/roach88/layercast/internal/testutil"
)

func TestStepReadsStoreAndDraws(t *testing.T) {
	f := newFixture(t)
	store := instructions.NewStore(instructions.WithList(instructions.List{layerA, drawA}), instructions.WithLogger(quiet()))
	r := NewRenderer(store, f.exec, WithRenderLogger(quiet()))

	stats := r.Step()

	assert.Equal(t, 1, stats.Drawn)
	assert.Equal(t, uint64(1), r.Frames())
	assert.Equal(t, []string{"a"}, f.out.Names())
}

func TestStepSeesConsoleEditsOnNextFrame(t *testing.T) {
	f := newFixture(t)
	store := instructions.NewStore(instructions.WithLogger(quiet()))
	r := NewRenderer(store, f.exec, WithRenderLogger(quiet()))

	r.Step()
	assert.Empty(t, f.out.Names())

	require.NoError(t, store.Update(context.Background(), func(tx *instructions.Tx) error {
		if _, err := tx.Push(-1, layerA); err != nil {
			return err
		}
		_, err := tx.Push(-1, drawA)
		return err
	}))
	r.Step()
	assert.Equal(t, []string{"a"}, f.out.Names())

	require.NoError(t, store.Update(context.Background(), func(tx *instructions.Tx) error {
		_, err := tx.Delete(0)
		return err
	}))
	f.out.Reset()
	r.Step()
	assert.Empty(t, f.out.Names(), "draw a was pruned with its layer")
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	store := instructions.NewStore(instructions.WithList(instructions.List{layerA, drawA}), instructions.WithLogger(quiet()))
	r := NewRenderer(store, f.exec, WithRenderLogger(quiet()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Frames() >= 3 }, 5*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("render loop did not stop")
	}
}

func TestRunHonoursMaxFPS(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	out := &testutil.RecordingOutput{}
	exec := NewExecutor(nil, nil, out, WithLogger(quiet()))
	store := instructions.NewStore(instructions.WithLogger(quiet()))
	r := NewRenderer(store, exec, WithMaxFPS(20), WithRenderLogger(quiet()))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))

	// 20 fps for 0.3s is about 7 frames including the initial burst
	assert.LessOrEqual(t, r.Frames(), uint64(10))
	assert.GreaterOrEqual(t, r.Frames(), uint64(2))
}

func TestMaxFPSZeroIsUncapped(t *testing.T) {
	r := NewRenderer(instructions.NewStore(), NewExecutor(nil, nil, &testutil.RecordingOutput{}), WithMaxFPS(20), WithMaxFPS(0))
	assert.Nil(t, r.limiter)
}

var _ Source = (*instructions.Store)(nil)

func TestRoleIsTakenFromFlags(t *testing.T) {
	// a grammar that only tags the source still yields a definition
	f := newFixture(t)
	stats := f.exec.Render(instructions.List{inst("layer a camera", ir.FlagCamera), drawA})
	assert.Equal(t, 1, stats.Defined)
	assert.Equal(t, 1, stats.Drawn)
}
