// Package signal infers implicit satisfaction from consecutive generation
// events in a session and from the wording of follow-up prompts.
package signal

import (
	"regexp"
	"strings"
	"time"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// Type names a behavioral signal.
type Type string

const (
	NewTask       Type = "new_task"
	Praise        Type = "praise"
	MajorRedo     Type = "major_redo"
	MinorTweak    Type = "minor_tweak"
	RapidFollowup Type = "rapid_followup"
	TimeGap       Type = "time_gap"
)

// scores holds the weight of each signal type.
var scores = map[Type]float64{
	NewTask:       1.0,
	Praise:        2.0,
	MajorRedo:     -1.0,
	MinorTweak:    0.5,
	RapidFollowup: -0.3,
	TimeGap:       0.8,
}

// Signal is one emitted observation.
type Signal struct {
	Type  Type    `json:"type"`
	Score float64 `json:"score"`
}

// Classification is the outcome of classifying an event pair or prompt.
type Classification struct {
	Signals       []Signal `json:"signals"`
	CombinedScore float64  `json:"combined_score"`
}

// Has reports whether a signal of type t was emitted.
func (c Classification) Has(t Type) bool {
	for _, s := range c.Signals {
		if s.Type == t {
			return true
		}
	}
	return false
}

func (c *Classification) add(t Type) {
	s := Signal{Type: t, Score: scores[t]}
	c.Signals = append(c.Signals, s)
	c.CombinedScore += s.Score
}

// Config holds the time thresholds used for pair classification.
type Config struct {
	// RapidFollowup is the gap below which a follow-up suggests the previous
	// result was unsatisfying.
	RapidFollowup time.Duration
	// TimeGap is the gap above which a task switch suggests the previous
	// result was accepted.
	TimeGap time.Duration
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		RapidFollowup: 30 * time.Second,
		TimeGap:       10 * time.Minute,
	}
}

var (
	praiseKeywords = []string{
		"perfect", "great", "awesome", "love it", "excellent", "nice",
		"looks good", "thanks", "thank you", "amazing", "exactly",
	}
	redoKeywords = []string{
		"start over", "redo", "completely wrong", "not what i wanted",
		"try again", "terrible", "wrong", "scrap", "from scratch", "hate",
	}
	tweakKeywords = []string{
		"tweak", "adjust", "slightly", "a bit", "change the color",
		"make it bigger", "smaller", "larger", "padding", "spacing",
		"just change", "minor",
	}
)

// Classifier emits behavioral signals.
type Classifier struct {
	cfg    Config
	praise *regexp.Regexp
	redo   *regexp.Regexp
	tweak  *regexp.Regexp
}

// New creates a Classifier. Zero durations in cfg take their defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.RapidFollowup <= 0 {
		cfg.RapidFollowup = def.RapidFollowup
	}
	if cfg.TimeGap <= 0 {
		cfg.TimeGap = def.TimeGap
	}
	return &Classifier{
		cfg:    cfg,
		praise: keywordPattern(praiseKeywords),
		redo:   keywordPattern(redoKeywords),
		tweak:  keywordPattern(tweakKeywords),
	}
}

// keywordPattern matches any phrase on word boundaries, case-insensitively.
func keywordPattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// ClassifyText runs the keyword signals only. Neutral text yields no signals
// and a combined score of zero.
func (c *Classifier) ClassifyText(text string) Classification {
	var out Classification
	c.classifyText(&out, text)
	return out
}

func (c *Classifier) classifyText(out *Classification, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if c.praise.MatchString(text) {
		out.add(Praise)
	}
	if c.redo.MatchString(text) {
		out.add(MajorRedo)
	}
	if c.tweak.MatchString(text) {
		out.add(MinorTweak)
	}
}

// ClassifyPair compares two consecutive events of one session, plus the
// optional prompt that led to curr. The combined score is the sum of the
// emitted signal scores.
func (c *Classifier) ClassifyPair(prev, curr model.GenerationEvent, promptText string) Classification {
	var out Classification

	taskSwitch := curr.ComponentType != prev.ComponentType
	if taskSwitch {
		out.add(NewTask)
	}

	c.classifyText(&out, promptText)

	delta := curr.Timestamp.Sub(prev.Timestamp)
	switch {
	case delta >= 0 && delta < c.cfg.RapidFollowup:
		out.add(RapidFollowup)
	case delta > c.cfg.TimeGap && taskSwitch:
		out.add(TimeGap)
	}
	return out
}
