package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type FeedbackSource string

const (
	FeedbackExplicit FeedbackSource = "explicit"
	FeedbackImplicit FeedbackSource = "implicit"
)

type Rating string

const (
	RatingNone     Rating = ""
	RatingPositive Rating = "positive"
	RatingNegative Rating = "negative"
)

// Validate accepts only explicit ratings.
func (r Rating) Validate() error {
	switch r {
	case RatingPositive, RatingNegative:
		return nil
	default:
		return goerr.Wrap(ErrInvalidRating, "rating must be positive or negative", goerr.V("rating", r))
	}
}

// FeedbackEntry is one append-only feedback record for a generation.
type FeedbackEntry struct {
	ID           string         `json:"id"`
	GenerationID string         `json:"generation_id"`
	Source       FeedbackSource `json:"source"`
	Rating       Rating         `json:"rating,omitempty"`
	Score        float64        `json:"score"`
	Confidence   float64        `json:"confidence"`
	Comment      string         `json:"comment,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// FeedbackStats holds aggregate feedback counts.
type FeedbackStats struct {
	Total    int `json:"total"`
	Explicit int `json:"explicit"`
	Implicit int `json:"implicit"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// ScoreStat is the mean feedback score over Count entries.
type ScoreStat struct {
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// ScoreStats groups historical feedback scores by the criteria the ranker
// can match against a snippet.
type ScoreStats struct {
	ByComponentType map[string]ScoreStat `json:"by_component_type"`
	ByPattern       map[string]ScoreStat `json:"by_pattern"`
}
