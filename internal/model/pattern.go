package model

import "time"

// CodePattern accumulates sightings and feedback for one structural
// skeleton of generated markup.
type CodePattern struct {
	ID            string     `json:"id"`
	SkeletonHash  string     `json:"skeleton_hash"`
	Skeleton      string     `json:"skeleton"`
	Snippet       string     `json:"snippet"`
	ComponentType string     `json:"component_type"`
	Category      Category   `json:"category"`
	Frequency     int        `json:"frequency"`
	AvgScore      float64    `json:"avg_score"`
	ScoreSamples  int        `json:"score_samples"`
	Promoted      bool       `json:"promoted"`
	PromotedAt    *time.Time `json:"promoted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
