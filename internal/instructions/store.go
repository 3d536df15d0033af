package instructions

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/layercast/internal/ir"
	"github.com/roach88/layercast/internal/prioritylock"
)

// Journal receives every successful edit, in order.
type Journal interface {
	Append(ctx context.Context, edits []ir.Edit) error
}

// Store is the single owner of the instruction list.
type Store struct {
	lock    prioritylock.Lock
	list    List
	images  ImageChecker
	journal Journal
	logger  *slog.Logger
	seq     int64
}

// Option configures a Store.
type Option func(*Store)

// WithImages makes refactor prune image layers missing from the catalog.
func WithImages(images ImageChecker) Option {
	return func(s *Store) { s.images = images }
}

// WithJournal appends every edit to j after the update that made it.
func WithJournal(j Journal) Option {
	return func(s *Store) { s.journal = j }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithList seeds the store. The list is refactored before use.
func WithList(list List) Option {
	return func(s *Store) { s.list = list.Clone() }
}

// NewStore creates a store.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.list, _ = Refactor(s.list, s.images)
	listLength.Set(float64(len(s.list)))
	return s
}

// Update runs fn with the high-priority lock held. Edits made through the
// Tx are journaled after fn returns, whether or not fn failed, because
// each Tx method either fully applies or leaves the list untouched.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	start := time.Now()
	s.lock.LockHigh()
	lockWait.WithLabelValues("high").Observe(time.Since(start).Seconds())

	tx := &Tx{store: s}
	var length int
	err := func() error {
		defer s.lock.UnlockHigh()
		defer func() { length = len(s.list) }()
		return fn(tx)
	}()

	listLength.Set(float64(length))
	if len(tx.edits) > 0 && s.journal != nil {
		if jerr := s.journal.Append(ctx, tx.edits); jerr != nil {
			s.logger.Warn("journal append failed", "edits", len(tx.edits), "error", jerr)
		}
	}
	return err
}

// Read runs fn with the low-priority lock held. fn must not retain list.
func (s *Store) Read(fn func(list List)) {
	start := time.Now()
	s.lock.LockLow()
	lockWait.WithLabelValues("low").Observe(time.Since(start).Seconds())
	defer s.lock.UnlockLow()
	fn(s.list)
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() List {
	var out List
	s.Read(func(list List) { out = list.Clone() })
	return out
}

// Tx is the mutation handle passed to Update. It is only valid inside the
// Update callback.
type Tx struct {
	store *Store
	edits []ir.Edit
}

// List returns the current list. Callers must not modify it.
func (tx *Tx) List() List {
	return tx.store.list
}

// Len is the number of instructions.
func (tx *Tx) Len() int {
	return len(tx.store.list)
}

// Push inserts inst at index, or appends when index is negative, and
// refactors.
func (tx *Tx) Push(index int, inst ir.Instruction) (Report, error) {
	s := tx.store
	if index < 0 {
		index = len(s.list)
	}
	list, err := s.list.Insert(index, inst)
	if err != nil {
		return Report{}, err
	}
	s.list = list
	tx.record(ir.Edit{Op: ir.OpPush, Index: index, Instruction: inst.Clone()})
	return tx.refactor(), nil
}

// Edit replaces the instruction at index and refactors.
func (tx *Tx) Edit(index int, inst ir.Instruction) (Report, error) {
	s := tx.store
	list, err := s.list.Replace(index, inst)
	if err != nil {
		return Report{}, err
	}
	s.list = list
	tx.record(ir.Edit{Op: ir.OpEdit, Index: index, Instruction: inst.Clone()})
	return tx.refactor(), nil
}

// Delete removes the instruction at index and refactors.
func (tx *Tx) Delete(index int) (Report, error) {
	s := tx.store
	list, err := s.list.Remove(index)
	if err != nil {
		return Report{}, err
	}
	s.list = list
	tx.record(ir.Edit{Op: ir.OpDelete, Index: index})
	return tx.refactor(), nil
}

// Clear empties the list.
func (tx *Tx) Clear() {
	tx.store.list = nil
	tx.record(ir.Edit{Op: ir.OpClear})
}

// Load replaces the whole list and refactors.
func (tx *Tx) Load(list List) Report {
	tx.store.list = list.Clone()
	tx.record(ir.Edit{Op: ir.OpLoad, List: list.Clone()})
	return tx.refactor()
}

func (tx *Tx) record(e ir.Edit) {
	s := tx.store
	s.seq++
	e.Seq = s.seq
	tx.edits = append(tx.edits, e)
	mutationsTotal.WithLabelValues(string(e.Op)).Inc()
}

func (tx *Tx) refactor() Report {
	s := tx.store
	list, report := Refactor(s.list, s.images)
	s.list = list
	for _, p := range report.Pruned {
		prunedTotal.WithLabelValues(string(p.Reason)).Inc()
		tx.record(ir.Edit{Op: ir.OpPrune, Index: p.Index, Instruction: p.Instruction})
		s.logger.Debug("pruned instruction", "index", p.Index, "instruction", p.Instruction.String(), "reason", string(p.Reason))
	}
	return report
}
