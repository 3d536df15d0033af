package instructions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/layercast/internal/ir"
)

type recordingJournal struct {
	mu    sync.Mutex
	edits []ir.Edit
	err   error
}

func (j *recordingJournal) Append(_ context.Context, edits []ir.Edit) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.edits = append(j.edits, edits...)
	return j.err
}

func TestStorePushEditDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.Update(ctx, func(tx *Tx) error {
		_, err := tx.Push(-1, layerA)
		require.NoError(t, err)
		_, err = tx.Push(-1, drawA)
		require.NoError(t, err)
		_, err = tx.Push(1, rotateA)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, List{layerA, rotateA, drawA}, s.Snapshot())

	err = s.Update(ctx, func(tx *Tx) error {
		_, err := tx.Edit(1, inst("process a rotate 90", ir.FlagProcess, ir.FlagRotate))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "process a rotate 90", s.Snapshot()[1].String())

	var report Report
	err = s.Update(ctx, func(tx *Tx) error {
		var err error
		report, err = tx.Delete(0)
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot(), "deleting the definition prunes its dependents")
	assert.Len(t, report.Pruned, 2)
}

func TestStoreRejectsOutOfRange(t *testing.T) {
	s := NewStore(WithList(List{layerA}))

	err := s.Update(context.Background(), func(tx *Tx) error {
		_, err := tx.Delete(5)
		return err
	})

	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Equal(t, List{layerA}, s.Snapshot())
}

func TestStoreSeedIsRefactored(t *testing.T) {
	s := NewStore(WithList(List{drawA, layerA}))
	assert.Equal(t, List{layerA}, s.Snapshot())
}

func TestStoreLoadRefactorsAgainstCatalog(t *testing.T) {
	s := NewStore(WithImages(catalogSet{}))

	var report Report
	require.NoError(t, s.Update(context.Background(), func(tx *Tx) error {
		report = tx.Load(List{layerA, layerB, drawB, drawA})
		return nil
	}))

	assert.Equal(t, List{layerA, drawA}, s.Snapshot())
	assert.Len(t, report.Pruned, 2)
}

func TestStoreJournalsEditsInOrder(t *testing.T) {
	j := &recordingJournal{}
	s := NewStore(WithJournal(j))
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		if _, err := tx.Push(-1, layerA); err != nil {
			return err
		}
		_, err := tx.Push(-1, drawA)
		return err
	}))
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		_, err := tx.Delete(0)
		return err
	}))
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		tx.Clear()
		return nil
	}))

	ops := make([]ir.Op, len(j.edits))
	for i, e := range j.edits {
		ops[i] = e.Op
		assert.Equal(t, int64(i+1), e.Seq)
	}
	assert.Equal(t, []ir.Op{ir.OpPush, ir.OpPush, ir.OpDelete, ir.OpPrune, ir.OpClear}, ops)
}

func TestStoreJournalFailureDoesNotFailUpdate(t *testing.T) {
	j := &recordingJournal{err: errors.New("disk full")}
	s := NewStore(WithJournal(j))

	err := s.Update(context.Background(), func(tx *Tx) error {
		_, err := tx.Push(-1, layerA)
		return err
	})

	require.NoError(t, err)
	assert.Len(t, s.Snapshot(), 1)
}

func TestReplayReproducesStore(t *testing.T) {
	j := &recordingJournal{}
	s := NewStore(WithJournal(j), WithImages(catalogSet{"logo.png": true}))
	ctx := context.Background()

	steps := []func(tx *Tx) error{
		func(tx *Tx) error { _, err := tx.Push(-1, layerA); return err },
		func(tx *Tx) error { _, err := tx.Push(-1, layerB); return err },
		func(tx *Tx) error { _, err := tx.Push(-1, overlayAB); return err },
		func(tx *Tx) error { _, err := tx.Push(-1, drawA); return err },
		func(tx *Tx) error { _, err := tx.Push(0, drawB); return err },
		func(tx *Tx) error { _, err := tx.Edit(0, rotateA); return err },
		func(tx *Tx) error { _, err := tx.Delete(0); return err },
		func(tx *Tx) error { tx.Load(List{layerA, drawA}); return nil },
		func(tx *Tx) error { _, err := tx.Push(1, rotateA); return err },
	}
	for _, step := range steps {
		require.NoError(t, s.Update(ctx, step))
	}

	replayed, err := Replay(j.edits)
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Equal(replayed))
}

func TestReplayRejectsBadIndex(t *testing.T) {
	_, err := Replay([]ir.Edit{{Seq: 1, Op: ir.OpDelete, Index: 0}})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	_, err = Replay([]ir.Edit{{Seq: 1, Op: "bogus"}})
	assert.Error(t, err)
}

func TestStoreConcurrentReadersSeeConsistentLists(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			s.Read(func(list List) {
				_, report := Refactor(list, nil)
				if len(report.Pruned) > 0 {
					t.Errorf("reader saw dangling reference in %v", list)
				}
			})
		}
	}()

	for i := 0; ctx.Err() == nil; i++ {
		_ = s.Update(ctx, func(tx *Tx) error {
			if i%2 == 0 {
				if _, err := tx.Push(-1, layerA); err != nil {
					return err
				}
				_, err := tx.Push(-1, drawA)
				return err
			}
			_, err := tx.Delete(0)
			return err
		})
	}
	wg.Wait()
}
