// Package ranking re-weights catalog search results with learned feedback.
package ranking

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// DefaultBoostWeight bounds how far feedback can move a result: a snippet
// with a strongly positive history scores at most 30% higher.
const DefaultBoostWeight = 0.3

// priorCount damps the signal of criteria with little feedback.
const priorCount = 3.0

// Catalog is the search surface the Ranker wraps. Implemented by
// catalog.Registry.
type Catalog interface {
	Search(q catalog.Query) []catalog.Result
	ByType(componentType string) []model.SnippetRecord
}

// Ranker runs catalog searches and boosts results by historical feedback.
type Ranker struct {
	catalog Catalog
	stats   *StatsCache
	weight  float64
	logger  *slog.Logger
}

// NewRanker creates a Ranker. A nil stats cache disables boosting.
// A weight <= 0 uses DefaultBoostWeight.
func NewRanker(c Catalog, stats *StatsCache, weight float64) *Ranker {
	if weight <= 0 {
		weight = DefaultBoostWeight
	}
	return &Ranker{
		catalog: c,
		stats:   stats,
		weight:  weight,
		logger:  slog.Default(),
	}
}

// SetLogger replaces the ranker's logger.
func (r *Ranker) SetLogger(l *slog.Logger) { r.logger = l }

// Search returns catalog results for q re-weighted by feedback, with scores
// normalized to [0,1]. If feedback cannot be loaded or boosting leaves no
// results, the unboosted search is returned, and if that is empty too, every
// snippet of q.Type with score 1.
func (r *Ranker) Search(ctx context.Context, q catalog.Query) []catalog.Result {
	limit := q.Limit
	q.Limit = 0
	base := r.catalog.Search(q)

	if r.stats == nil {
		return truncate(r.fallback(q, base), limit)
	}

	stats, err := r.stats.Get(ctx)
	if err != nil {
		r.logger.Warn("feedback boost unavailable, using unboosted results", "error", err)
		return truncate(r.fallback(q, base), limit)
	}

	boosted := Boost(base, stats, r.weight)
	if len(boosted) == 0 {
		return truncate(r.fallback(q, base), limit)
	}
	return truncate(boosted, limit)
}

func (r *Ranker) fallback(q catalog.Query, base []catalog.Result) []catalog.Result {
	if len(base) > 0 {
		return base
	}
	if q.Type == "" {
		return nil
	}
	recs := r.catalog.ByType(q.Type)
	out := make([]catalog.Result, len(recs))
	for i, rec := range recs {
		out[i] = catalog.Result{Snippet: rec, Score: 1}
	}
	return out
}

func truncate(results []catalog.Result, limit int) []catalog.Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// Boost multiplies each result's score by a factor derived from the
// feedback recorded for its component type and source pattern, rescales so
// no score exceeds 1, drops results that reach zero and re-sorts. The input
// slice is not modified.
func Boost(results []catalog.Result, stats model.ScoreStats, weight float64) []catalog.Result {
	out := make([]catalog.Result, 0, len(results))
	top := 0.0
	for _, res := range results {
		factor := 1 + weight*feedbackSignal(res.Snippet, stats)
		if factor < 0 {
			factor = 0
		}
		res.Score *= factor
		if res.Score <= 0 {
			continue
		}
		top = math.Max(top, res.Score)
		out = append(out, res)
	}

	if top > 1 {
		for i := range out {
			out[i].Score /= top
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// feedbackSignal returns a value in (-1, 1) summarizing the feedback seen
// for rec's type and pattern. Criteria without feedback contribute nothing.
func feedbackSignal(rec model.SnippetRecord, stats model.ScoreStats) float64 {
	var (
		sum float64
		n   int
	)
	if st, ok := stats.ByComponentType[rec.Type]; ok && st.Count > 0 {
		sum += damped(st)
		n++
	}
	if rec.PatternHash != "" {
		if st, ok := stats.ByPattern[rec.PatternHash]; ok && st.Count > 0 {
			sum += damped(st)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func damped(st model.ScoreStat) float64 {
	c := float64(st.Count)
	return math.Tanh(st.Avg) * c / (c + priorCount)
}
