package ranking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/ranking"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/storage"
)

// --- Mock stats source ---

type mockStats struct {
	mu    sync.Mutex
	stats model.ScoreStats
	err   error
	calls int
}

func (m *mockStats) ScoreStats(context.Context) (model.ScoreStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats, m.err
}

func (m *mockStats) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock clock ---

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCatalog(t *testing.T, recs ...model.SnippetRecord) *catalog.Registry {
	t.Helper()
	reg := catalog.New(nil)
	gt.Equal(t, reg.RegisterBatch(context.Background(), recs), len(recs))
	return reg
}

func ids(results []catalog.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Snippet.ID
	}
	return out
}

func TestSearchWithoutFeedbackMatchesCatalog(t *testing.T) {
	reg := newCatalog(t,
		model.SnippetRecord{ID: "a", Type: "hero", Variant: "centered"},
		model.SnippetRecord{ID: "b", Type: "hero-card", Variant: "default"},
	)
	src := &mockStats{stats: model.ScoreStats{}}
	r := ranking.NewRanker(reg, ranking.NewStatsCache(src, 0), 0)

	got := r.Search(context.Background(), catalog.Query{Type: "hero"})
	gt.Equal(t, got, reg.Search(catalog.Query{Type: "hero"}))
}

func TestBoostReordersByFeedback(t *testing.T) {
	reg := newCatalog(t,
		model.SnippetRecord{ID: "disliked", Type: "hero", Variant: "v1", PatternHash: "bad"},
		model.SnippetRecord{ID: "liked", Type: "hero", Variant: "v2", PatternHash: "good"},
	)
	src := &mockStats{stats: model.ScoreStats{
		ByPattern: map[string]model.ScoreStat{
			"bad":  {Avg: -1.0, Count: 10},
			"good": {Avg: 1.5, Count: 10},
		},
	}}
	r := ranking.NewRanker(reg, ranking.NewStatsCache(src, 0), 0)

	got := r.Search(context.Background(), catalog.Query{Type: "hero"})
	gt.Equal(t, ids(got), []string{"liked", "disliked"})
	gt.Equal(t, got[0].Score, 1.0)
	for _, res := range got {
		gt.Number(t, res.Score).Greater(0.0).LessOrEqual(1.0)
	}
	gt.Number(t, got[1].Score).Less(got[0].Score)
}

func TestBoostIsNormalizedAndStable(t *testing.T) {
	results := []catalog.Result{
		{Snippet: model.SnippetRecord{ID: "1", Type: "hero"}, Score: 1},
		{Snippet: model.SnippetRecord{ID: "2", Type: "card"}, Score: 0.5},
		{Snippet: model.SnippetRecord{ID: "3", Type: "card"}, Score: 0.5},
	}
	stats := model.ScoreStats{ByComponentType: map[string]model.ScoreStat{"hero": {Avg: 2, Count: 100}}}

	got := ranking.Boost(results, stats, 0.3)
	gt.Equal(t, ids(got), []string{"1", "2", "3"})
	gt.Equal(t, got[0].Score, 1.0)
	gt.Number(t, got[1].Score).Less(0.5)
	gt.Equal(t, got[1].Score, got[2].Score)

	// The input is untouched.
	gt.Equal(t, results[0].Score, 1.0)
}

func TestBoostDropsZeroedResults(t *testing.T) {
	results := []catalog.Result{
		{Snippet: model.SnippetRecord{ID: "1", Type: "hero"}, Score: 0.8},
		{Snippet: model.SnippetRecord{ID: "2", Type: "card"}, Score: 0.6},
	}
	stats := model.ScoreStats{ByComponentType: map[string]model.ScoreStat{"hero": {Avg: -50, Count: 1000000}}}

	got := ranking.Boost(results, stats, 5)
	gt.Equal(t, ids(got), []string{"2"})
}

func TestSearchFallsBackOnStatsError(t *testing.T) {
	reg := newCatalog(t,
		model.SnippetRecord{ID: "a", Type: "hero", Variant: "centered", PatternHash: "p"},
		model.SnippetRecord{ID: "b", Type: "hero", Variant: "split"},
	)
	src := &mockStats{err: errors.New("database is locked")}
	r := ranking.NewRanker(reg, ranking.NewStatsCache(src, time.Minute), 0)

	got := r.Search(context.Background(), catalog.Query{Type: "hero", Variant: "split"})
	gt.Equal(t, got, reg.Search(catalog.Query{Type: "hero", Variant: "split"}))
}

func TestSearchFallsBackToTypeMatch(t *testing.T) {
	reg := newCatalog(t, model.SnippetRecord{ID: "a", Type: "hero", Variant: "centered"})
	r := ranking.NewRanker(&typeOnlyCatalog{reg}, ranking.NewStatsCache(&mockStats{}, 0), 0)

	got := r.Search(context.Background(), catalog.Query{Type: "hero", Mood: "calm"})
	gt.A(t, got).Length(1)
	gt.Equal(t, got[0].Snippet.ID, "a")
	gt.Equal(t, got[0].Score, 1.0)

	gt.A(t, r.Search(context.Background(), catalog.Query{Mood: "calm"})).Length(0)
}

// typeOnlyCatalog never returns search hits, forcing the last fallback.
type typeOnlyCatalog struct{ *catalog.Registry }

func (typeOnlyCatalog) Search(catalog.Query) []catalog.Result { return nil }

func TestSearchAppliesLimitAfterBoost(t *testing.T) {
	reg := newCatalog(t,
		model.SnippetRecord{ID: "a", Type: "hero", Variant: "v1", PatternHash: "bad"},
		model.SnippetRecord{ID: "b", Type: "hero", Variant: "v2", PatternHash: "good"},
	)
	src := &mockStats{stats: model.ScoreStats{ByPattern: map[string]model.ScoreStat{
		"bad": {Avg: -1, Count: 5}, "good": {Avg: 1, Count: 5},
	}}}
	r := ranking.NewRanker(reg, ranking.NewStatsCache(src, 0), 0)

	got := r.Search(context.Background(), catalog.Query{Type: "hero", Limit: 1})
	gt.Equal(t, ids(got), []string{"b"})
}

func TestNilStatsCacheDisablesBoost(t *testing.T) {
	reg := newCatalog(t, model.SnippetRecord{ID: "a", Type: "hero", Variant: "centered"})
	r := ranking.NewRanker(reg, nil, 0)
	gt.A(t, r.Search(context.Background(), catalog.Query{Type: "hero"})).Length(1)
}

func TestStatsCacheTTL(t *testing.T) {
	src := &mockStats{}
	clock := &mockClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := ranking.NewStatsCacheWithClock(src, clock, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx)
	gt.NoError(t, err)
	_, err = c.Get(ctx)
	gt.NoError(t, err)
	gt.Equal(t, src.callCount(), 1)

	clock.Advance(2 * time.Minute)
	_, err = c.Get(ctx)
	gt.NoError(t, err)
	gt.Equal(t, src.callCount(), 2)

	c.Invalidate()
	_, err = c.Get(ctx)
	gt.NoError(t, err)
	gt.Equal(t, src.callCount(), 3)
}

func TestStatsCacheDisabled(t *testing.T) {
	src := &mockStats{}
	c := ranking.NewStatsCache(src, 0)
	for range 3 {
		_, err := c.Get(context.Background())
		gt.NoError(t, err)
	}
	gt.Equal(t, src.callCount(), 3)
}

func TestRankerWithStoredFeedback(t *testing.T) {
	ctx := context.Background()
	s, err := storage.Open(":memory:")
	gt.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	reg := catalog.New(s)
	gt.NoError(t, reg.Register(ctx, model.SnippetRecord{ID: "card", Type: "hero-card", Variant: "default"}))
	gt.NoError(t, reg.Register(ctx, model.SnippetRecord{ID: "hero", Type: "hero", Variant: "centered"}))

	gt.NoError(t, s.SaveGeneration(ctx, model.GenerationEvent{ID: "g1", ComponentType: "hero", Timestamp: time.Now()}))
	gt.NoError(t, s.AppendFeedback(ctx, model.FeedbackEntry{ID: "f1", GenerationID: "g1", Source: model.FeedbackExplicit, Rating: model.RatingNegative, Score: -1, Confidence: 1}))

	r := ranking.NewRanker(reg, ranking.NewStatsCache(s, 0), 0)
	got := r.Search(ctx, catalog.Query{Type: "hero"})
	gt.Equal(t, ids(got), []string{"hero", "card"})
	gt.Number(t, got[0].Score).Less(1.0)
}
