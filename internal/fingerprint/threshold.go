package fingerprint

import "github.com/LucasSantana-Dev/uiforge-mcp/internal/model"

// Thresholds bound which patterns qualify for promotion.
type Thresholds struct {
	MinFrequency int     `json:"min_frequency"`
	MinAvgScore  float64 `json:"min_avg_score"`
}

// DefaultThresholds requires three sightings with a mean score of at least 0.5.
var DefaultThresholds = Thresholds{MinFrequency: 3, MinAvgScore: 0.5}

// IsPromotable reports whether p has been seen often enough, scored well
// enough and has not been promoted yet.
func (t Thresholds) IsPromotable(p model.CodePattern) bool {
	return p.Frequency >= t.MinFrequency && p.AvgScore >= t.MinAvgScore && !p.Promoted
}
