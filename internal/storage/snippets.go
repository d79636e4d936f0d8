package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// setTables maps each multi-valued snippet field to its join table.
var setTables = []struct {
	table  string
	column string
	get    func(*model.SnippetRecord) []string
	set    func(*model.SnippetRecord, []string)
}{
	{"snippet_tags", "tag",
		func(r *model.SnippetRecord) []string { return r.Tags },
		func(r *model.SnippetRecord, v []string) { r.Tags = v }},
	{"snippet_moods", "mood",
		func(r *model.SnippetRecord) []string { return r.Mood },
		func(r *model.SnippetRecord, v []string) { r.Mood = v }},
	{"snippet_industries", "industry",
		func(r *model.SnippetRecord) []string { return r.Industry },
		func(r *model.SnippetRecord, v []string) { r.Industry = v }},
	{"snippet_styles", "style",
		func(r *model.SnippetRecord) []string { return r.VisualStyle },
		func(r *model.SnippetRecord, v []string) { r.VisualStyle = v }},
}

// UpsertSnippet inserts rec or replaces the stored record with the same ID.
// A replaced record keeps its original creation time and list position.
func (s *Store) UpsertSnippet(ctx context.Context, rec model.SnippetRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertSnippetTx(ctx, tx, rec)
	})
}

func upsertSnippetTx(ctx context.Context, tx *sql.Tx, rec model.SnippetRecord) error {
	classes, err := json.Marshal(rec.Classes)
	if err != nil {
		return goerr.Wrap(err, "marshaling classes", goerr.V("id", rec.ID))
	}
	a11y, err := json.Marshal(rec.A11y)
	if err != nil {
		return goerr.Wrap(err, "marshaling a11y", goerr.V("id", rec.ID))
	}

	now := time.Now()
	created := rec.CreatedAt
	if created.IsZero() {
		created = now
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snippets (id, name, type, variant, category, html, classes_json, a11y_json, source, pattern_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   type = excluded.type,
		   variant = excluded.variant,
		   category = excluded.category,
		   html = excluded.html,
		   classes_json = excluded.classes_json,
		   a11y_json = excluded.a11y_json,
		   source = excluded.source,
		   pattern_hash = excluded.pattern_hash,
		   updated_at = excluded.updated_at`,
		rec.ID, rec.Name, rec.Type, rec.Variant, string(rec.Category), rec.HTML,
		string(classes), string(a11y), string(rec.Source), rec.PatternHash,
		formatTime(created), formatTime(now),
	)
	if err != nil {
		return goerr.Wrap(err, "upserting snippet", goerr.V("id", rec.ID))
	}

	for _, st := range setTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+st.table+" WHERE snippet_id = ?", rec.ID); err != nil {
			return goerr.Wrap(err, "clearing snippet set", goerr.V("table", st.table), goerr.V("id", rec.ID))
		}
		for _, v := range st.get(&rec) {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO "+st.table+" (snippet_id, "+st.column+") VALUES (?, ?)",
				rec.ID, v,
			); err != nil {
				return goerr.Wrap(err, "inserting snippet set member", goerr.V("table", st.table), goerr.V("id", rec.ID))
			}
		}
	}
	return nil
}

// GetSnippet retrieves a snippet by ID. Returns model.ErrNotFound if absent.
func (s *Store) GetSnippet(ctx context.Context, id string) (*model.SnippetRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, variant, category, html, classes_json, a11y_json, source, pattern_hash, created_at, updated_at
		 FROM snippets WHERE id = ?`, id)
	rec, err := scanSnippet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "snippet not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, err
	}

	for _, st := range setTables {
		values, err := s.loadSet(ctx, st.table, st.column, id)
		if err != nil {
			return nil, err
		}
		st.set(rec, values)
	}
	return rec, nil
}

// ListSnippets returns every stored snippet in insertion order.
func (s *Store) ListSnippets(ctx context.Context) ([]model.SnippetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, variant, category, html, classes_json, a11y_json, source, pattern_hash, created_at, updated_at
		 FROM snippets ORDER BY rowid ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "listing snippets")
	}
	defer rows.Close()

	var out []model.SnippetRecord
	index := map[string]int{}
	for rows.Next() {
		rec, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		index[rec.ID] = len(out)
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "iterating snippets")
	}

	for _, st := range setTables {
		members, err := s.loadAllSets(ctx, st.table, st.column)
		if err != nil {
			return nil, err
		}
		for id, values := range members {
			if i, ok := index[id]; ok {
				st.set(&out[i], values)
			}
		}
	}
	return out, nil
}

// DeleteSnippet removes a snippet and its set members.
func (s *Store) DeleteSnippet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snippets WHERE id = ?", id)
	if err != nil {
		return goerr.Wrap(err, "deleting snippet", goerr.V("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "reading rows affected")
	}
	if n == 0 {
		return goerr.Wrap(model.ErrNotFound, "snippet not found", goerr.V("id", id))
	}
	return nil
}

// CountSnippets returns the number of stored snippets.
func (s *Store) CountSnippets(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snippets").Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "counting snippets")
	}
	return n, nil
}

func (s *Store) loadSet(ctx context.Context, table, column, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+" FROM "+table+" WHERE snippet_id = ? ORDER BY rowid ASC", id)
	if err != nil {
		return nil, goerr.Wrap(err, "loading snippet set", goerr.V("table", table))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, goerr.Wrap(err, "scanning snippet set", goerr.V("table", table))
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) loadAllSets(ctx context.Context, table, column string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT snippet_id, "+column+" FROM "+table+" ORDER BY rowid ASC")
	if err != nil {
		return nil, goerr.Wrap(err, "loading snippet sets", goerr.V("table", table))
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var id, v string
		if err := rows.Scan(&id, &v); err != nil {
			return nil, goerr.Wrap(err, "scanning snippet sets", goerr.V("table", table))
		}
		out[id] = append(out[id], v)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanSnippet(row scanner) (*model.SnippetRecord, error) {
	var (
		rec                  model.SnippetRecord
		category, source     string
		classes, a11y        string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Type, &rec.Variant, &category, &rec.HTML,
		&classes, &a11y, &source, &rec.PatternHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "scanning snippet")
	}
	rec.Category = model.Category(category)
	rec.Source = model.SnippetSource(source)

	if err := json.Unmarshal([]byte(classes), &rec.Classes); err != nil {
		return nil, goerr.Wrap(err, "decoding classes", goerr.V("id", rec.ID))
	}
	if err := json.Unmarshal([]byte(a11y), &rec.A11y); err != nil {
		return nil, goerr.Wrap(err, "decoding a11y", goerr.V("id", rec.ID))
	}

	var err error
	if rec.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
