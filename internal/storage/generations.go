package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// SaveGeneration persists a generation event. Events are immutable, so a
// duplicate ID is an error.
func (s *Store) SaveGeneration(ctx context.Context, ev model.GenerationEvent) error {
	return saveGeneration(ctx, s.db, ev)
}

// SaveGenerationWithPattern persists ev and, when p is non-nil, records a
// sighting of p's skeleton in the same transaction. A rejected event leaves
// the pattern frequency untouched. The returned pattern is nil when p is nil.
func (s *Store) SaveGenerationWithPattern(ctx context.Context, ev model.GenerationEvent, p *model.CodePattern) (*model.CodePattern, error) {
	var out *model.CodePattern
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		out = nil
		if err := saveGeneration(ctx, tx, ev); err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		observed, err := observePattern(ctx, tx, *p)
		if err != nil {
			return err
		}
		out = observed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func saveGeneration(ctx context.Context, q querier, ev model.GenerationEvent) error {
	params := []byte("{}")
	if len(ev.Params) > 0 {
		var err error
		if params, err = json.Marshal(ev.Params); err != nil {
			return goerr.Wrap(err, "marshaling params", goerr.V("id", ev.ID))
		}
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO generations (id, tool, params_json, component_type, framework, content_hash, skeleton_hash, session_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Tool, string(params), ev.ComponentType, ev.Framework,
		ev.ContentHash, ev.SkeletonHash, ev.SessionID, formatTime(ev.Timestamp),
	)
	if err != nil {
		return goerr.Wrap(err, "saving generation", goerr.V("id", ev.ID))
	}
	return nil
}

// GetGeneration retrieves a generation event by ID.
func (s *Store) GetGeneration(ctx context.Context, id string) (*model.GenerationEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tool, params_json, component_type, framework, content_hash, skeleton_hash, session_id, created_at
		 FROM generations WHERE id = ?`, id)
	ev, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "generation not found", goerr.V("id", id))
	}
	return ev, err
}

// ListSessionGenerations returns a session's events oldest first.
func (s *Store) ListSessionGenerations(ctx context.Context, sessionID string) ([]model.GenerationEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, params_json, component_type, framework, content_hash, skeleton_hash, session_id, created_at
		 FROM generations WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, goerr.Wrap(err, "listing session generations", goerr.V("session", sessionID))
	}
	defer rows.Close()

	var out []model.GenerationEvent
	for rows.Next() {
		ev, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// CountGenerations returns the number of stored generation events.
func (s *Store) CountGenerations(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations").Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "counting generations")
	}
	return n, nil
}

func scanGeneration(row scanner) (*model.GenerationEvent, error) {
	var (
		ev        model.GenerationEvent
		params    string
		createdAt string
	)
	if err := row.Scan(&ev.ID, &ev.Tool, &params, &ev.ComponentType, &ev.Framework,
		&ev.ContentHash, &ev.SkeletonHash, &ev.SessionID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "scanning generation")
	}

	if params != "" && params != "{}" {
		if err := json.Unmarshal([]byte(params), &ev.Params); err != nil {
			return nil, goerr.Wrap(err, "decoding params", goerr.V("id", ev.ID))
		}
	}

	ts, err := parseTime("created_at", createdAt)
	if err != nil {
		return nil, err
	}
	ev.Timestamp = ts
	return &ev, nil
}
