// Package feedback records generation events and the explicit and implicit
// feedback derived from them.
package feedback

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/fingerprint"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/signal"
)

const (
	positiveScore = 1.5
	negativeScore = -1.0

	explicitConfidence = 1.0

	implicitBaseConfidence  = 0.3
	implicitSignalIncrement = 0.2
	implicitMaxConfidence   = 0.9
)

// Store defines the storage operations the Recorder needs.
// Implemented by storage.Store.
type Store interface {
	SaveGenerationWithPattern(ctx context.Context, ev model.GenerationEvent, p *model.CodePattern) (*model.CodePattern, error)
	AppendFeedback(ctx context.Context, e model.FeedbackEntry) error
	FeedbackStats(ctx context.Context) (model.FeedbackStats, error)
}

// Recorder persists generation events, derives implicit feedback from
// consecutive events of a session and records explicit ratings.
type Recorder struct {
	store      Store
	classifier *signal.Classifier
	extractor  *fingerprint.Extractor
	sessions   *SessionTracker
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(r *Recorder) { r.logger = l } }

// WithNow overrides the clock used for missing timestamps.
func WithNow(now func() time.Time) Option { return func(r *Recorder) { r.now = now } }

// WithIDGenerator overrides id generation.
func WithIDGenerator(f func() string) Option { return func(r *Recorder) { r.newID = f } }

// NewRecorder creates a Recorder with its own session state.
func NewRecorder(store Store, classifier *signal.Classifier, extractor *fingerprint.Extractor, opts ...Option) *Recorder {
	r := &Recorder{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		sessions:   NewSessionTracker(),
		logger:     slog.Default(),
		now:        time.Now,
		newID:      model.NewID,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Sessions exposes the session tracker.
func (r *Recorder) Sessions() *SessionTracker { return r.sessions }

// ResetSessions forgets the last event of every session.
func (r *Recorder) ResetSessions() { r.sessions.Reset() }

// Result describes what RecordGeneration wrote.
type Result struct {
	Event          model.GenerationEvent  `json:"event"`
	Fingerprint    fingerprint.Print      `json:"fingerprint"`
	Pattern        *model.CodePattern     `json:"pattern,omitempty"`
	Implicit       *model.FeedbackEntry   `json:"implicit,omitempty"`
	Classification *signal.Classification `json:"classification,omitempty"`
}

// RecordGeneration persists ev together with the fingerprint of code. The
// event and its pattern sighting are written atomically. When the session
// already has an earlier event, the pair is classified and one implicit
// feedback entry is written against the earlier event. Events without a
// session id are stored but never chained.
//
// Only a failure to persist ev or its pattern is returned. Implicit feedback
// failures are logged.
func (r *Recorder) RecordGeneration(ctx context.Context, ev model.GenerationEvent, code, promptText string) (*Result, error) {
	if ev.ID == "" {
		ev.ID = r.newID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = r.now()
	}
	ev.ComponentType = model.NormalizeTerm(ev.ComponentType)
	ev.SessionID = strings.TrimSpace(ev.SessionID)
	ev.ContentHash = fingerprint.HashContent(code)

	fp := r.extractor.Fingerprint(code)
	res := &Result{Fingerprint: fp}

	var observed *model.CodePattern
	if fp.Skeleton != fingerprint.EmptySkeleton {
		ev.SkeletonHash = fp.Hash
		observed = &model.CodePattern{
			SkeletonHash:  fp.Hash,
			Skeleton:      fp.Skeleton,
			Snippet:       code,
			ComponentType: ev.ComponentType,
			Category:      catalog.InferCategory(ev.ComponentType, len(fingerprint.Tokens(fp.Skeleton))),
		}
	}

	pattern, err := r.store.SaveGenerationWithPattern(ctx, ev, observed)
	if err != nil {
		return nil, goerr.Wrap(err, "recording generation", goerr.V("id", ev.ID))
	}
	res.Event = ev
	res.Pattern = pattern

	if ev.SessionID == "" {
		return res, nil
	}
	prev, ok := r.sessions.Swap(ev)
	if !ok {
		return res, nil
	}

	c := r.classifier.ClassifyPair(prev, ev, promptText)
	res.Classification = &c

	entry := model.FeedbackEntry{
		ID:           r.newID(),
		GenerationID: prev.ID,
		Source:       model.FeedbackImplicit,
		Score:        c.CombinedScore,
		Confidence:   implicitConfidence(len(c.Signals)),
		CreatedAt:    r.now(),
	}
	if err := r.store.AppendFeedback(ctx, entry); err != nil {
		r.logger.Warn("failed to record implicit feedback",
			"generation_id", prev.ID, "session", ev.SessionID, "error", err)
		return res, nil
	}
	res.Implicit = &entry

	r.logger.Debug("implicit feedback recorded",
		"generation_id", prev.ID, "score", c.CombinedScore, "signals", len(c.Signals))
	return res, nil
}

func implicitConfidence(signals int) float64 {
	c := implicitBaseConfidence + implicitSignalIncrement*float64(signals)
	if c > implicitMaxConfidence {
		return implicitMaxConfidence
	}
	return c
}

// RecordExplicitFeedback stores a user rating for a generation. Positive
// ratings score 1.5 and negative ratings -1.0, both with full confidence.
func (r *Recorder) RecordExplicitFeedback(ctx context.Context, generationID string, rating model.Rating, comment string) (*model.FeedbackEntry, error) {
	generationID = strings.TrimSpace(generationID)
	if generationID == "" {
		return nil, goerr.New("generation id is empty")
	}
	rating = model.Rating(model.NormalizeTerm(string(rating)))
	if err := rating.Validate(); err != nil {
		return nil, err
	}

	score := positiveScore
	if rating == model.RatingNegative {
		score = negativeScore
	}

	entry := model.FeedbackEntry{
		ID:           r.newID(),
		GenerationID: generationID,
		Source:       model.FeedbackExplicit,
		Rating:       rating,
		Score:        score,
		Confidence:   explicitConfidence,
		Comment:      strings.TrimSpace(comment),
		CreatedAt:    r.now(),
	}
	if err := r.store.AppendFeedback(ctx, entry); err != nil {
		return nil, goerr.Wrap(err, "recording explicit feedback", goerr.V("generation_id", generationID))
	}
	return &entry, nil
}

// Stats returns aggregate feedback counts.
func (r *Recorder) Stats(ctx context.Context) (model.FeedbackStats, error) {
	st, err := r.store.FeedbackStats(ctx)
	if err != nil {
		return model.FeedbackStats{}, goerr.Wrap(err, "reading feedback stats")
	}
	return st, nil
}
