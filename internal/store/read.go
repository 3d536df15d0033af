package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/layercast/internal/ir"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo summarizes a recorded session.
type SessionInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Label     string    `json:"label"`
	Edits     int       `json:"edits"`
}

// Sessions lists every session, oldest first.
// Returns an empty slice (not nil) if no sessions exist.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.label, COUNT(e.seq)
		FROM sessions s
		LEFT JOIN edits e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var (
			info    SessionInfo
			started string
		)
		if err := rows.Scan(&info.ID, &started, &info.Label, &info.Edits); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("session %s: parse started_at: %w", info.ID, err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LatestSession returns the id of the most recently started session.
func (s *Store) LatestSession(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM sessions
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query latest session: %w", err)
	}
	return id, nil
}

// Edits returns the edits of a session ordered by seq. Each payload is
// checked against its stored hash.
func (s *Store) Edits(ctx context.Context, sessionID string) ([]ir.Edit, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, payload, hash
		FROM edits
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	edits := []ir.Edit{}
	for rows.Next() {
		var (
			seq           int64
			payload, hash string
		)
		if err := rows.Scan(&seq, &payload, &hash); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		e, err := decodeEdit(payload, hash)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", seq, err)
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edits: %w", err)
	}
	return edits, nil
}

func decodeEdit(payload, hash string) (ir.Edit, error) {
	var e ir.Edit
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return ir.Edit{}, fmt.Errorf("decode payload: %w", err)
	}
	got, err := ir.EditHash(e)
	if err != nil {
		return ir.Edit{}, err
	}
	if got != hash {
		return ir.Edit{}, fmt.Errorf("hash mismatch: stored %s, computed %s", hash, got)
	}
	return e, nil
}
