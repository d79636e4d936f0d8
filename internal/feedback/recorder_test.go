package feedback_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/feedback"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/fingerprint"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/signal"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/storage"
)

const heroCode = `<section class="hero"><h1>Launch</h1><p>Ship faster</p><button>Start</button></section>`

func newRecorder(t *testing.T) (*feedback.Recorder, *storage.Store) {
	t.Helper()
	s, err := storage.Open(":memory:")
	gt.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return feedback.NewRecorder(s, signal.New(signal.DefaultConfig()), fingerprint.NewExtractor()), s
}

func TestFirstGenerationHasNoImplicitFeedback(t *testing.T) {
	ctx := context.Background()
	rec, store := newRecorder(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	first, err := rec.RecordGeneration(ctx, model.GenerationEvent{
		Tool: "generate_component", ComponentType: "hero", SessionID: "s1", Timestamp: base,
	}, heroCode, "")
	gt.NoError(t, err)
	gt.Nil(t, first.Implicit)
	gt.NotEqual(t, first.Event.ID, "")
	gt.Equal(t, first.Event.SkeletonHash, first.Fingerprint.Hash)
	gt.Equal(t, first.Event.ContentHash, fingerprint.HashContent(heroCode))

	stats, err := rec.Stats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, stats.Total, 0)

	second, err := rec.RecordGeneration(ctx, model.GenerationEvent{
		Tool: "generate_component", ComponentType: "pricing", SessionID: "s1", Timestamp: base.Add(2 * time.Minute),
	}, `<div><h2>Plans</h2></div>`, "great, now pricing")
	gt.NoError(t, err)
	gt.NotNil(t, second.Implicit)
	gt.Equal(t, second.Implicit.GenerationID, first.Event.ID)
	gt.Equal(t, second.Implicit.Source, model.FeedbackImplicit)
	gt.Equal(t, second.Implicit.Score, 3.0)
	gt.True(t, second.Classification.Has(signal.NewTask))
	gt.True(t, second.Classification.Has(signal.Praise))

	entries, err := store.ListFeedback(ctx, first.Event.ID)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
	gt.Number(t, entries[0].Confidence).Greater(0.0).LessOrEqual(1.0)
}

func TestImplicitFeedbackFoldsIntoPattern(t *testing.T) {
	ctx := context.Background()
	rec, store := newRecorder(t)
	base := time.Now().UTC()

	first, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "s", Timestamp: base}, heroCode, "")
	gt.NoError(t, err)
	gt.Equal(t, first.Pattern.Frequency, 1)

	_, err = rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "footer", SessionID: "s", Timestamp: base.Add(time.Minute)}, "<footer></footer>", "")
	gt.NoError(t, err)

	p, err := store.GetPattern(ctx, first.Fingerprint.Hash)
	gt.NoError(t, err)
	gt.Equal(t, p.ScoreSamples, 1)
	gt.Equal(t, p.AvgScore, 1.0)
	gt.Equal(t, p.Category, model.CategoryOrganism)
}

func TestEmptyMarkupIsNotTracked(t *testing.T) {
	ctx := context.Background()
	rec, store := newRecorder(t)

	res, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "s"}, "", "")
	gt.NoError(t, err)
	gt.Equal(t, res.Fingerprint.Skeleton, fingerprint.EmptySkeleton)
	gt.Nil(t, res.Pattern)
	gt.Equal(t, res.Event.SkeletonHash, "")

	patterns, err := store.ListPatterns(ctx)
	gt.NoError(t, err)
	gt.A(t, patterns).Length(0)
}

func TestSessionsDoNotMix(t *testing.T) {
	ctx := context.Background()
	rec, _ := newRecorder(t)
	base := time.Now()

	a1, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "a", Timestamp: base}, heroCode, "")
	gt.NoError(t, err)
	b1, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "card", SessionID: "b", Timestamp: base}, heroCode, "")
	gt.NoError(t, err)
	gt.Nil(t, b1.Implicit)

	a2, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "a", Timestamp: base.Add(time.Minute)}, heroCode, "")
	gt.NoError(t, err)
	gt.Equal(t, a2.Implicit.GenerationID, a1.Event.ID)

	b2, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "card", SessionID: "b", Timestamp: base.Add(time.Minute)}, heroCode, "")
	gt.NoError(t, err)
	gt.Equal(t, b2.Implicit.GenerationID, b1.Event.ID)
}

func TestResetSessions(t *testing.T) {
	ctx := context.Background()
	rec, _ := newRecorder(t)

	_, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "s"}, heroCode, "")
	gt.NoError(t, err)
	gt.Equal(t, rec.Sessions().Len(), 1)

	rec.ResetSessions()
	gt.Equal(t, rec.Sessions().Len(), 0)

	res, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "s"}, heroCode, "")
	gt.NoError(t, err)
	gt.Nil(t, res.Implicit)
}

func TestConcurrentSessionsEachChainCorrectly(t *testing.T) {
	ctx := context.Background()
	s, err := storage.Open(t.TempDir())
	gt.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	rec := feedback.NewRecorder(s, signal.New(signal.DefaultConfig()), fingerprint.NewExtractor())

	const sessions, perSession = 6, 5
	var wg sync.WaitGroup
	for i := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sid := fmt.Sprintf("session-%d", i)
			base := time.Now()
			for j := range perSession {
				_, err := rec.RecordGeneration(ctx, model.GenerationEvent{
					ComponentType: "hero", SessionID: sid, Timestamp: base.Add(time.Duration(j) * time.Minute),
				}, heroCode, "")
				if err != nil {
					t.Errorf("record %s/%d: %v", sid, j, err)
				}
			}
		}()
	}
	wg.Wait()

	for i := range sessions {
		sid := fmt.Sprintf("session-%d", i)
		events, err := s.ListSessionGenerations(ctx, sid)
		gt.NoError(t, err)
		gt.A(t, events).Length(perSession)

		// Every event but the last gets exactly one implicit entry.
		for j, ev := range events {
			entries, err := s.ListFeedback(ctx, ev.ID)
			gt.NoError(t, err)
			want := 1
			if j == len(events)-1 {
				want = 0
			}
			gt.A(t, entries).Length(want)
		}
	}

	st, err := s.FeedbackStats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, st.Implicit, sessions*(perSession-1))
}

func TestExplicitFeedback(t *testing.T) {
	ctx := context.Background()
	rec, _ := newRecorder(t)

	pos, err := rec.RecordExplicitFeedback(ctx, "g1", model.RatingPositive, "  love it ")
	gt.NoError(t, err)
	gt.Equal(t, pos.Score, 1.5)
	gt.Equal(t, pos.Confidence, 1.0)
	gt.Equal(t, pos.Source, model.FeedbackExplicit)
	gt.Equal(t, pos.Comment, "love it")

	_, err = rec.RecordExplicitFeedback(ctx, "g2", "Positive", "")
	gt.NoError(t, err)

	neg, err := rec.RecordExplicitFeedback(ctx, "g3", model.RatingNegative, "")
	gt.NoError(t, err)
	gt.Equal(t, neg.Score, -1.0)
	gt.Equal(t, neg.Confidence, 1.0)

	stats, err := rec.Stats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, stats, model.FeedbackStats{Total: 3, Explicit: 3, Positive: 2, Negative: 1})
}

func TestExplicitFeedbackValidation(t *testing.T) {
	ctx := context.Background()
	rec, _ := newRecorder(t)

	_, err := rec.RecordExplicitFeedback(ctx, "g1", "meh", "")
	gt.True(t, errors.Is(err, model.ErrInvalidRating))

	_, err = rec.RecordExplicitFeedback(ctx, " ", model.RatingPositive, "")
	gt.Error(t, err)
}

type brokenStore struct {
	feedback.Store
	saveErr error
}

func (b brokenStore) SaveGenerationWithPattern(context.Context, model.GenerationEvent, *model.CodePattern) (*model.CodePattern, error) {
	return nil, b.saveErr
}

func (brokenStore) AppendFeedback(context.Context, model.FeedbackEntry) error {
	return errors.New("feedback table locked")
}

func TestRecordGenerationDegrades(t *testing.T) {
	ctx := context.Background()
	rec := feedback.NewRecorder(brokenStore{}, signal.New(signal.DefaultConfig()), fingerprint.NewExtractor(),
		feedback.WithIDGenerator(func() string { return "fixed-" + time.Now().Format("150405.000000000") }))

	first, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "s"}, heroCode, "")
	gt.NoError(t, err)
	gt.Nil(t, first.Pattern)

	second, err := rec.RecordGeneration(ctx, model.GenerationEvent{ComponentType: "hero", SessionID: "s"}, heroCode, "")
	gt.NoError(t, err)
	gt.Nil(t, second.Implicit)
	gt.NotNil(t, second.Classification)

	failing := feedback.NewRecorder(brokenStore{saveErr: errors.New("disk full")}, signal.New(signal.DefaultConfig()), fingerprint.NewExtractor())
	_, err = failing.RecordGeneration(ctx, model.GenerationEvent{SessionID: "s"}, heroCode, "")
	gt.Error(t, err)
	gt.Equal(t, failing.Sessions().Len(), 0)
}

func TestReplayedGenerationDoesNotInflatePattern(t *testing.T) {
	ctx := context.Background()
	rec, s := newRecorder(t)
	ev := model.GenerationEvent{ID: "gen-1", ComponentType: "hero", SessionID: "s"}

	first, err := rec.RecordGeneration(ctx, ev, heroCode, "")
	gt.NoError(t, err)
	gt.NotNil(t, first.Pattern)

	for i := 0; i < 4; i++ {
		_, err := rec.RecordGeneration(ctx, ev, heroCode, "")
		gt.Error(t, err)
	}

	p, err := s.GetPattern(ctx, first.Event.SkeletonHash)
	gt.NoError(t, err)
	gt.Equal(t, p.Frequency, 1)

	n, err := s.CountGenerations(ctx)
	gt.NoError(t, err)
	gt.Equal(t, n, 1)
}

func TestSessionlessGenerationsAreNotChained(t *testing.T) {
	ctx := context.Background()
	rec, s := newRecorder(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, sid := range []string{"", "  "} {
		res, err := rec.RecordGeneration(ctx, model.GenerationEvent{
			ComponentType: "hero", SessionID: sid, Timestamp: base.Add(time.Duration(i) * time.Minute),
		}, heroCode, "")
		gt.NoError(t, err)
		gt.Nil(t, res.Implicit)
		gt.Nil(t, res.Classification)
	}
	gt.Equal(t, rec.Sessions().Len(), 0)

	st, err := s.FeedbackStats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, st.Implicit, 0)

	n, err := s.CountGenerations(ctx)
	gt.NoError(t, err)
	gt.Equal(t, n, 2)
}
