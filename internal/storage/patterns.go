package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

const patternColumns = `id, skeleton_hash, skeleton, snippet, component_type, category,
	frequency, avg_score, score_samples, promoted, promoted_at, created_at, updated_at`

// ObservePattern records a sighting of p's skeleton. The first sighting
// creates the pattern with frequency 1; later sightings only increment the
// frequency and keep the original representative snippet.
func (s *Store) ObservePattern(ctx context.Context, p model.CodePattern) (*model.CodePattern, error) {
	return observePattern(ctx, s.db, p)
}

func observePattern(ctx context.Context, q querier, p model.CodePattern) (*model.CodePattern, error) {
	if p.SkeletonHash == "" {
		return nil, goerr.New("skeleton hash is empty")
	}
	if p.ID == "" {
		p.ID = model.NewID()
	}
	now := formatTime(time.Now())

	_, err := q.ExecContext(ctx,
		`INSERT INTO code_patterns (id, skeleton_hash, skeleton, snippet, component_type, category, frequency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
		 ON CONFLICT(skeleton_hash) DO UPDATE SET
		   frequency = frequency + 1,
		   updated_at = excluded.updated_at`,
		p.ID, p.SkeletonHash, p.Skeleton, p.Snippet, p.ComponentType, string(p.Category), now, now,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "observing pattern", goerr.V("hash", p.SkeletonHash))
	}
	return getPattern(ctx, q, p.SkeletonHash)
}

// GetPattern retrieves a pattern by skeleton hash.
func (s *Store) GetPattern(ctx context.Context, hash string) (*model.CodePattern, error) {
	return getPattern(ctx, s.db, hash)
}

func getPattern(ctx context.Context, q querier, hash string) (*model.CodePattern, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+patternColumns+" FROM code_patterns WHERE skeleton_hash = ?", hash)
	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "pattern not found", goerr.V("hash", hash))
	}
	return p, err
}

// ListPatterns returns all patterns, most frequent first.
func (s *Store) ListPatterns(ctx context.Context) ([]model.CodePattern, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+patternColumns+" FROM code_patterns ORDER BY frequency DESC, rowid ASC")
	if err != nil {
		return nil, goerr.Wrap(err, "listing patterns")
	}
	defer rows.Close()

	var out []model.CodePattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// PromotePattern flips the pattern's promoted flag from false to true and
// inserts the derived snippet in one transaction. It returns
// model.ErrAlreadyPromoted when the flag was already set, leaving the
// catalog untouched.
func (s *Store) PromotePattern(ctx context.Context, patternID string, rec model.SnippetRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := formatTime(time.Now())
		res, err := tx.ExecContext(ctx,
			`UPDATE code_patterns SET promoted = 1, promoted_at = ?, updated_at = ?
			 WHERE id = ? AND promoted = 0`, now, now, patternID)
		if err != nil {
			return goerr.Wrap(err, "marking pattern promoted", goerr.V("pattern", patternID))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return goerr.Wrap(err, "reading rows affected")
		}
		if n != 1 {
			var exists int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM code_patterns WHERE id = ?", patternID).Scan(&exists); err != nil {
				return goerr.Wrap(err, "checking pattern", goerr.V("pattern", patternID))
			}
			if exists == 0 {
				return goerr.Wrap(model.ErrNotFound, "pattern not found", goerr.V("pattern", patternID))
			}
			return goerr.Wrap(model.ErrAlreadyPromoted, "promotion skipped", goerr.V("pattern", patternID))
		}

		return upsertSnippetTx(ctx, tx, rec)
	})
}

func scanPattern(row scanner) (*model.CodePattern, error) {
	var (
		p                    model.CodePattern
		category             string
		promoted             int
		promotedAt           sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.SkeletonHash, &p.Skeleton, &p.Snippet, &p.ComponentType, &category,
		&p.Frequency, &p.AvgScore, &p.ScoreSamples, &promoted, &promotedAt, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "scanning pattern")
	}
	p.Category = model.Category(category)
	p.Promoted = promoted != 0

	if promotedAt.Valid {
		t, err := parseTime("promoted_at", promotedAt.String)
		if err != nil {
			return nil, err
		}
		p.PromotedAt = &t
	}

	var err error
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
