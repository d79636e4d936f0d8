package catalog

import "slices"

// moodAffinity lists the moods that earn partial credit for each other.
// Edges are treated as undirected.
var moodAffinity = map[string][]string{
	"bold":         {"energetic", "premium"},
	"calm":         {"minimal", "professional"},
	"playful":      {"creative", "warm", "energetic"},
	"professional": {"corporate", "minimal", "calm"},
	"premium":      {"bold", "editorial", "futuristic"},
	"minimal":      {"calm", "editorial", "professional"},
	"editorial":    {"minimal", "premium"},
	"futuristic":   {"premium", "bold"},
	"creative":     {"playful", "warm"},
	"corporate":    {"professional"},
	"energetic":    {"bold", "playful"},
	"warm":         {"playful", "creative"},
}

// MoodsRelated reports whether a and b are distinct moods joined by an
// affinity edge.
func MoodsRelated(a, b string) bool {
	if a == b {
		return false
	}
	return slices.Contains(moodAffinity[a], b) || slices.Contains(moodAffinity[b], a)
}
