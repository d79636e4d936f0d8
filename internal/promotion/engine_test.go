package promotion_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/fingerprint"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/promotion"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/storage"
)

const heroMarkup = `<section><h1 aria-level="1">Launch</h1><img src="x.png"/><button aria-label="start">Go</button></section>`

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedPattern records markup frequency times under componentType and gives
// it a single feedback score.
func seedPattern(t *testing.T, s *storage.Store, componentType, markup string, frequency int, score float64) model.CodePattern {
	t.Helper()
	ctx := context.Background()
	fp := fingerprint.NewExtractor().Fingerprint(markup)

	for range frequency {
		_, err := s.ObservePattern(ctx, model.CodePattern{
			SkeletonHash:  fp.Hash,
			Skeleton:      fp.Skeleton,
			Snippet:       markup,
			ComponentType: componentType,
		})
		gt.NoError(t, err)
	}

	genID := model.NewID()
	gt.NoError(t, s.SaveGeneration(ctx, model.GenerationEvent{
		ID: genID, ComponentType: componentType, SkeletonHash: fp.Hash, SessionID: "seed", Timestamp: time.Now(),
	}))
	gt.NoError(t, s.AppendFeedback(ctx, model.FeedbackEntry{
		ID: model.NewID(), GenerationID: genID, Source: model.FeedbackExplicit, Score: score, Confidence: 1,
	}))

	p, err := s.GetPattern(ctx, fp.Hash)
	gt.NoError(t, err)
	return *p
}

func TestRunCyclePromotesOnce(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	reg := catalog.New(store)
	engine := promotion.NewEngine(store, reg, fingerprint.DefaultThresholds)

	good := seedPattern(t, store, "hero", heroMarkup, 5, 0.8)
	seedPattern(t, store, "card", `<div><p>rare</p></div>`, 1, 1.5)
	seedPattern(t, store, "footer", `<footer><nav></nav></footer>`, 6, 0.2)

	gt.Equal(t, engine.RunCycle(ctx), 1)
	gt.Equal(t, engine.RunCycle(ctx), 0)

	p, err := store.GetPattern(ctx, good.SkeletonHash)
	gt.NoError(t, err)
	gt.True(t, p.Promoted)

	rec, ok := reg.Get("promoted-" + good.SkeletonHash)
	gt.True(t, ok)
	gt.Equal(t, rec.Source, model.SourcePromoted)
	gt.Equal(t, rec.Type, "hero")

	n, err := store.CountSnippets(ctx)
	gt.NoError(t, err)
	gt.Equal(t, n, 1)

	// A fresh registry loaded from the store sees the promoted snippet too.
	fresh := catalog.New(store)
	loaded, err := fresh.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, loaded, 1)
}

func TestRunCycleConcurrentEngines(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(t.TempDir())
	gt.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	seedPattern(t, store, "hero", heroMarkup, 4, 1.0)
	seedPattern(t, store, "pricing", `<section><h2>Plans</h2><ul><li></li></ul></section>`, 3, 0.6)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate engines do not share the in-process lock.
			e := promotion.NewEngine(store, catalog.New(nil), fingerprint.DefaultThresholds)
			n := e.RunCycle(ctx)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	gt.Equal(t, total, 2)
}

type brokenStore struct {
	listErr    error
	promoteErr error
	patterns   []model.CodePattern
}

func (b *brokenStore) ListPatterns(context.Context) ([]model.CodePattern, error) {
	return b.patterns, b.listErr
}

func (b *brokenStore) PromotePattern(context.Context, string, model.SnippetRecord) error {
	return b.promoteErr
}

type panickingIndexer struct{}

func (panickingIndexer) Index(model.SnippetRecord) error { panic("index corrupted") }

func TestRunCycleSwallowsFailures(t *testing.T) {
	ctx := context.Background()
	reg := catalog.New(nil)

	listFails := promotion.NewEngine(&brokenStore{listErr: errors.New("db gone")}, reg, fingerprint.DefaultThresholds)
	gt.Equal(t, listFails.RunCycle(ctx), 0)

	qualifying := []model.CodePattern{{ID: "p1", SkeletonHash: "abcdef0123456789", Skeleton: "div", ComponentType: "hero", Frequency: 9, AvgScore: 1}}

	promoteFails := promotion.NewEngine(&brokenStore{promoteErr: errors.New("locked"), patterns: qualifying}, reg, fingerprint.DefaultThresholds)
	gt.Equal(t, promoteFails.RunCycle(ctx), 0)
	gt.Equal(t, reg.Len(), 0)

	lostRace := promotion.NewEngine(&brokenStore{promoteErr: model.ErrAlreadyPromoted, patterns: qualifying}, reg, fingerprint.DefaultThresholds)
	gt.Equal(t, lostRace.RunCycle(ctx), 0)

	panics := promotion.NewEngine(&brokenStore{patterns: qualifying}, panickingIndexer{}, fingerprint.DefaultThresholds)
	gt.Equal(t, panics.RunCycle(ctx), 0)
}

func TestSynthesize(t *testing.T) {
	fp := fingerprint.NewExtractor().Fingerprint(heroMarkup)
	rec := promotion.Synthesize(model.CodePattern{
		SkeletonHash:  fp.Hash,
		Skeleton:      fp.Skeleton,
		Snippet:       heroMarkup,
		ComponentType: "Hero",
	})

	gt.Equal(t, rec.ID, "promoted-"+fp.Hash)
	gt.Equal(t, rec.Type, "hero")
	gt.Equal(t, rec.Variant, "learned-"+fp.Hash[:8])
	gt.Equal(t, rec.Category, model.CategoryOrganism)
	gt.Equal(t, rec.Industry, []string{"general"})
	gt.Equal(t, rec.Tags, []string{"promoted", "learned", "hero", "section", "heading", "media", "button"})
	gt.Equal(t, rec.A11y.Roles, []string{"region", "heading", "img", "button"})
	gt.Equal(t, rec.A11y.AriaAttributes, []string{"aria-label", "aria-level"})
	gt.True(t, rec.A11y.KeyboardNav)
	gt.True(t, rec.A11y.FocusVisible)
	gt.False(t, rec.A11y.ReducedMotion)
	gt.Equal(t, rec.PatternHash, fp.Hash)
	gt.NoError(t, rec.Validate())
}

func TestSynthesizeDefaultsMissingType(t *testing.T) {
	rec := promotion.Synthesize(model.CodePattern{SkeletonHash: "0123456789abcdef", Skeleton: "div span[body]", Category: model.CategoryMolecule})
	gt.Equal(t, rec.Type, "component")
	gt.Equal(t, rec.Category, model.CategoryMolecule)
	gt.False(t, rec.A11y.KeyboardNav)
	gt.NoError(t, rec.Validate())
}
