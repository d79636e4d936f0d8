package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// AppendFeedback inserts a feedback entry. When the referenced generation
// produced a fingerprinted pattern, the entry's score is folded into that
// pattern's running mean in the same transaction.
func (s *Store) AppendFeedback(ctx context.Context, e model.FeedbackEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO feedback (id, generation_id, source, rating, score, confidence, comment, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.GenerationID, string(e.Source), string(e.Rating),
			e.Score, e.Confidence, e.Comment, formatTime(e.CreatedAt),
		)
		if err != nil {
			return goerr.Wrap(err, "inserting feedback", goerr.V("id", e.ID), goerr.V("generation", e.GenerationID))
		}

		var hash string
		err = tx.QueryRowContext(ctx,
			"SELECT skeleton_hash FROM generations WHERE id = ?", e.GenerationID).Scan(&hash)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && hash == "") {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "looking up generation skeleton", goerr.V("generation", e.GenerationID))
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE code_patterns
			 SET avg_score = avg_score + (? - avg_score) / (score_samples + 1),
			     score_samples = score_samples + 1,
			     updated_at = ?
			 WHERE skeleton_hash = ?`,
			e.Score, formatTime(e.CreatedAt), hash,
		)
		if err != nil {
			return goerr.Wrap(err, "folding feedback into pattern", goerr.V("hash", hash))
		}
		return nil
	})
}

// ListFeedback returns the entries recorded against a generation, oldest first.
func (s *Store) ListFeedback(ctx context.Context, generationID string) ([]model.FeedbackEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generation_id, source, rating, score, confidence, comment, created_at
		 FROM feedback WHERE generation_id = ? ORDER BY created_at ASC, rowid ASC`, generationID)
	if err != nil {
		return nil, goerr.Wrap(err, "listing feedback", goerr.V("generation", generationID))
	}
	defer rows.Close()

	var out []model.FeedbackEntry
	for rows.Next() {
		var (
			e                      model.FeedbackEntry
			source, rating, create string
		)
		if err := rows.Scan(&e.ID, &e.GenerationID, &source, &rating,
			&e.Score, &e.Confidence, &e.Comment, &create); err != nil {
			return nil, goerr.Wrap(err, "scanning feedback")
		}
		e.Source = model.FeedbackSource(source)
		e.Rating = model.Rating(rating)
		if e.CreatedAt, err = parseTime("created_at", create); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FeedbackStats returns aggregate feedback counts.
func (s *Store) FeedbackStats(ctx context.Context) (model.FeedbackStats, error) {
	var st model.FeedbackStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN source = 'explicit' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN source = 'implicit' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN rating = 'positive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN rating = 'negative' THEN 1 ELSE 0 END), 0)
		FROM feedback`).Scan(&st.Total, &st.Explicit, &st.Implicit, &st.Positive, &st.Negative)
	if err != nil {
		return model.FeedbackStats{}, goerr.Wrap(err, "querying feedback stats")
	}
	return st, nil
}

// ScoreStats averages feedback scores by the referenced generation's
// component type and skeleton hash.
func (s *Store) ScoreStats(ctx context.Context) (model.ScoreStats, error) {
	out := model.ScoreStats{
		ByComponentType: map[string]model.ScoreStat{},
		ByPattern:       map[string]model.ScoreStat{},
	}

	groups := []struct {
		column string
		dst    map[string]model.ScoreStat
	}{
		{"component_type", out.ByComponentType},
		{"skeleton_hash", out.ByPattern},
	}
	for _, g := range groups {
		rows, err := s.db.QueryContext(ctx,
			`SELECT g.`+g.column+`, AVG(f.score), COUNT(*)
			 FROM feedback f JOIN generations g ON g.id = f.generation_id
			 WHERE g.`+g.column+` != ''
			 GROUP BY g.`+g.column)
		if err != nil {
			return model.ScoreStats{}, goerr.Wrap(err, "querying score stats", goerr.V("group", g.column))
		}
		for rows.Next() {
			var (
				key string
				st  model.ScoreStat
			)
			if err := rows.Scan(&key, &st.Avg, &st.Count); err != nil {
				rows.Close()
				return model.ScoreStats{}, goerr.Wrap(err, "scanning score stats", goerr.V("group", g.column))
			}
			g.dst[key] = st
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return model.ScoreStats{}, goerr.Wrap(err, "iterating score stats", goerr.V("group", g.column))
		}
	}
	return out, nil
}
