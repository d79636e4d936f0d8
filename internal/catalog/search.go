package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// Field weights. Each field present in a query adds its weight to the
// maximum possible score.
const (
	weightType        = 10.0
	weightVariant     = 8.0
	weightCategory    = 4.0
	weightMood        = 6.0
	weightIndustry    = 5.0
	weightVisualStyle = 6.0
	weightTags        = 4.0

	partialType     = 5.0
	partialVariant  = 4.0
	partialMood     = 3.0
	partialIndustry = 2.0
)

const generalIndustry = "general"

// Query holds search criteria. Empty fields are ignored.
type Query struct {
	Type        string   `json:"type,omitempty"`
	Variant     string   `json:"variant,omitempty"`
	Category    string   `json:"category,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	VisualStyle string   `json:"visual_style,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

func (q Query) normalized() Query {
	q.Type = model.NormalizeTerm(q.Type)
	q.Variant = model.NormalizeTerm(q.Variant)
	q.Category = model.NormalizeTerm(q.Category)
	q.Mood = model.NormalizeTerm(q.Mood)
	q.Industry = model.NormalizeTerm(q.Industry)
	q.VisualStyle = model.NormalizeTerm(q.VisualStyle)
	q.Tags = model.NormalizeSet(q.Tags)
	return q
}

// Empty reports whether the query has no criteria.
func (q Query) Empty() bool {
	q = q.normalized()
	return q.Type == "" && q.Variant == "" && q.Category == "" && q.Mood == "" &&
		q.Industry == "" && q.VisualStyle == "" && len(q.Tags) == 0
}

// Result is a scored snippet. Score is normalized to [0,1].
type Result struct {
	Snippet model.SnippetRecord `json:"snippet"`
	Score   float64             `json:"score"`
}

// Search scores every snippet against q and returns matches sorted by score
// descending. Ties keep registration order.
func (r *Registry) Search(q Query) []Result {
	q = q.normalized()

	r.mu.RLock()
	var results []Result
	for _, rec := range r.records {
		achieved, possible := score(q, rec)
		if achieved == 0 || possible == 0 {
			continue
		}
		results = append(results, Result{Snippet: rec.Clone(), Score: achieved / possible})
	}
	r.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results
}

// score returns the achieved and maximum possible score of rec for q.
func score(q Query, rec model.SnippetRecord) (achieved, possible float64) {
	if q.Type != "" {
		possible += weightType
		switch {
		case rec.Type == q.Type:
			achieved += weightType
		case strings.Contains(rec.Type, q.Type) || strings.Contains(q.Type, rec.Type):
			achieved += partialType
		}
	}

	if q.Variant != "" {
		possible += weightVariant
		switch {
		case rec.Variant == q.Variant:
			achieved += weightVariant
		case strings.Contains(rec.Variant, q.Variant):
			achieved += partialVariant
		}
	}

	if q.Category != "" {
		possible += weightCategory
		if string(rec.Category) == q.Category {
			achieved += weightCategory
		}
	}

	if q.Mood != "" {
		possible += weightMood
		switch {
		case slices.Contains(rec.Mood, q.Mood):
			achieved += weightMood
		case slices.ContainsFunc(rec.Mood, func(m string) bool { return MoodsRelated(q.Mood, m) }):
			achieved += partialMood
		}
	}

	if q.Industry != "" {
		possible += weightIndustry
		switch {
		case slices.Contains(rec.Industry, q.Industry):
			achieved += weightIndustry
		case slices.Contains(rec.Industry, generalIndustry):
			achieved += partialIndustry
		}
	}

	if q.VisualStyle != "" {
		possible += weightVisualStyle
		if slices.Contains(rec.VisualStyle, q.VisualStyle) {
			achieved += weightVisualStyle
		}
	}

	if len(q.Tags) > 0 {
		possible += weightTags
		matched := 0
		for _, t := range q.Tags {
			if slices.Contains(rec.Tags, t) {
				matched++
			}
		}
		achieved += weightTags * float64(matched) / float64(len(q.Tags))
	}

	return achieved, possible
}

// BestMatch picks one snippet for componentType. It tries an exact
// type+variant match, then the top search result over all criteria in opts,
// then any snippet of the type.
func (r *Registry) BestMatch(componentType string, opts Query) (model.SnippetRecord, bool) {
	componentType = model.NormalizeTerm(componentType)
	variant := model.NormalizeTerm(opts.Variant)

	if componentType != "" && variant != "" {
		r.mu.RLock()
		for _, rec := range r.records {
			if rec.Type == componentType && rec.Variant == variant {
				r.mu.RUnlock()
				return rec.Clone(), true
			}
		}
		r.mu.RUnlock()
	}

	opts.Type = componentType
	opts.Limit = 1
	if results := r.Search(opts); len(results) > 0 {
		return results[0].Snippet, true
	}

	if recs := r.ByType(componentType); len(recs) > 0 {
		return recs[0], true
	}
	return model.SnippetRecord{}, false
}
