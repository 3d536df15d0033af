package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/ir"
	"github.com/roach88/layercast/internal/testutil"
)

var (
	layerA = inst("layer a camera", ir.FlagLayer, ir.FlagCamera)
	drawA  = inst("draw a", ir.FlagDraw)
)

func TestAppendAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	sess := beginTestSession(t, s, "test")

	edits := []ir.Edit{
		{Seq: 1, Op: ir.OpPush, Index: 0, Instruction: layerA},
		{Seq: 2, Op: ir.OpPush, Index: 1, Instruction: drawA},
		{Seq: 3, Op: ir.OpDelete, Index: 0},
		{Seq: 4, Op: ir.OpPrune, Index: 0, Instruction: drawA},
		{Seq: 5, Op: ir.OpLoad, List: []ir.Instruction{layerA, drawA}},
		{Seq: 6, Op: ir.OpClear},
	}
	require.NoError(t, sess.Append(ctx, edits[:2]))
	require.NoError(t, sess.Append(ctx, edits[2:]))

	got, err := sess.Edits(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(edits))
	for i := range edits {
		assert.Equal(t, edits[i].Seq, got[i].Seq)
		assert.Equal(t, edits[i].Op, got[i].Op)
		assert.Equal(t, edits[i].Index, got[i].Index)
		assert.True(t, edits[i].Instruction.Equal(got[i].Instruction) || len(edits[i].Instruction.Tokens) == 0,
			"edit %d instruction", i)
		assert.Equal(t, len(edits[i].List), len(got[i].List))
	}
	assert.True(t, got[4].List[1].Equal(drawA))
}

func TestAppendIsIdempotentPerSeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	sess := beginTestSession(t, s, "")

	e := ir.Edit{Seq: 1, Op: ir.OpPush, Index: 0, Instruction: layerA}
	require.NoError(t, sess.Append(ctx, []ir.Edit{e}))
	require.NoError(t, sess.Append(ctx, []ir.Edit{e}))
	require.NoError(t, sess.Append(ctx, nil))

	got, err := sess.Edits(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSessionsAreIsolatedAndListed(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	first := beginTestSession(t, s, "first")
	second := beginTestSession(t, s, "second")
	require.NotEqual(t, first.ID(), second.ID())

	require.NoError(t, first.Append(ctx, []ir.Edit{{Seq: 1, Op: ir.OpPush, Instruction: layerA}}))
	require.NoError(t, second.Append(ctx, []ir.Edit{
		{Seq: 1, Op: ir.OpPush, Instruction: layerA},
		{Seq: 2, Op: ir.OpPush, Index: 1, Instruction: drawA},
	}))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "first", sessions[0].Label)
	assert.Equal(t, 1, sessions[0].Edits)
	assert.Equal(t, "second", sessions[1].Label)
	assert.Equal(t, 2, sessions[1].Edits)
	assert.Equal(t, testutil.Epoch, sessions[0].StartedAt)
	assert.True(t, sessions[1].StartedAt.After(sessions[0].StartedAt))

	latest, err := s.LatestSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID(), latest)
}

func TestSessionsEmpty(t *testing.T) {
	s := createTestStore(t)

	sessions, err := s.Sessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)

	_, err = s.LatestSession(context.Background())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEditsUnknownSession(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Edits(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestEditsDetectTampering(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	sess := beginTestSession(t, s, "")
	require.NoError(t, sess.Append(ctx, []ir.Edit{{Seq: 1, Op: ir.OpPush, Instruction: drawA}}))

	_, err := s.db.Exec(`UPDATE edits SET payload = replace(payload, '"a"', '"b"')`)
	require.NoError(t, err)

	_, err = sess.Edits(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestJournaledStoreReplaysToSameList(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	sess := beginTestSession(t, s, "")

	store := instructions.NewStore(instructions.WithJournal(sess))
	steps := []func(tx *instructions.Tx) error{
		func(tx *instructions.Tx) error { _, err := tx.Push(-1, layerA); return err },
		func(tx *instructions.Tx) error { _, err := tx.Push(-1, drawA); return err },
		func(tx *instructions.Tx) error { _, err := tx.Push(0, inst("layer b camera", ir.FlagLayer, ir.FlagCamera)); return err },
		func(tx *instructions.Tx) error { _, err := tx.Delete(1); return err },
	}
	for _, step := range steps {
		require.NoError(t, store.Update(ctx, step))
	}

	edits, err := sess.Edits(ctx)
	require.NoError(t, err)
	replayed, err := instructions.Replay(edits)
	require.NoError(t, err)

	assert.True(t, store.Snapshot().Equal(replayed))
	assert.Equal(t, instructions.List{inst("layer b camera", ir.FlagLayer, ir.FlagCamera)}, replayed)
}

var _ instructions.Journal = (*Session)(nil)
