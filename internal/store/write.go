package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/layercast/internal/ir"
)

// Session is the journal of one compositor run. It implements
// instructions.Journal.
type Session struct {
	store *Store
	id    string
}

// BeginSession records a new session and returns it.
func (s *Store) BeginSession(ctx context.Context, label string) (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, label)
		VALUES (?, ?, ?)
	`, id.String(), s.timestamp(), label)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &Session{store: s, id: id.String()}, nil
}

// ID is the session's UUIDv7.
func (sess *Session) ID() string { return sess.id }

// Append writes edits in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency - re-appending an edit with
// a seq already recorded for this session is silently ignored.
func (sess *Session) Append(ctx context.Context, edits []ir.Edit) error {
	if len(edits) == 0 {
		return nil
	}
	s := sess.store
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append edits: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edits (session_id, seq, op, idx, payload, hash, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("append edits: prepare: %w", err)
	}
	defer stmt.Close()

	now := s.timestamp()
	for _, e := range edits {
		payload, err := ir.MarshalCanonical(e)
		if err != nil {
			return fmt.Errorf("append edit %d: %w", e.Seq, err)
		}
		hash, err := ir.EditHash(e)
		if err != nil {
			return fmt.Errorf("append edit %d: %w", e.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx, sess.id, e.Seq, string(e.Op), e.Index, string(payload), hash, now); err != nil {
			return fmt.Errorf("append edit %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append edits: commit: %w", err)
	}
	return nil
}

// Edits reads this session's edits back in seq order.
func (sess *Session) Edits(ctx context.Context) ([]ir.Edit, error) {
	return sess.store.Edits(ctx, sess.id)
}
