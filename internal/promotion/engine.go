// Package promotion turns frequently generated, well-rated code patterns
// into permanent catalog entries.
package promotion

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/fingerprint"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// PatternStore defines the storage operations the Engine needs.
// Implemented by storage.Store.
type PatternStore interface {
	ListPatterns(ctx context.Context) ([]model.CodePattern, error)
	PromotePattern(ctx context.Context, patternID string, rec model.SnippetRecord) error
}

// Indexer receives promoted snippets. Implemented by catalog.Registry.
type Indexer interface {
	Index(rec model.SnippetRecord) error
}

// Engine scans the pattern store and promotes qualifying patterns.
type Engine struct {
	store      PatternStore
	index      Indexer
	thresholds fingerprint.Thresholds
	logger     *slog.Logger

	mu sync.Mutex
}

// NewEngine creates an Engine. The store's compare-and-set guarantees each
// pattern is promoted once even when several engines share a database.
func NewEngine(store PatternStore, index Indexer, thresholds fingerprint.Thresholds) *Engine {
	return &Engine{
		store:      store,
		index:      index,
		thresholds: thresholds,
		logger:     slog.Default(),
	}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l *slog.Logger) { e.logger = l }

// Thresholds returns the promotion thresholds in use.
func (e *Engine) Thresholds() fingerprint.Thresholds { return e.thresholds }

// RunCycle promotes every promotable pattern and returns how many were newly
// promoted. Errors are logged, never returned: a failed scan yields 0 and a
// failed pattern is skipped until the next cycle.
func (e *Engine) RunCycle(ctx context.Context) (promoted int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("promotion cycle panicked", "panic", r)
			promoted = 0
		}
	}()

	patterns, err := e.store.ListPatterns(ctx)
	if err != nil {
		e.logger.Error("listing patterns for promotion", "error", err)
		return 0
	}

	for _, p := range patterns {
		if ctx.Err() != nil {
			break
		}
		if !e.thresholds.IsPromotable(p) {
			continue
		}

		rec := Synthesize(p)
		if err := e.store.PromotePattern(ctx, p.ID, rec); err != nil {
			if errors.Is(err, model.ErrAlreadyPromoted) {
				e.logger.Debug("pattern already promoted", "hash", p.SkeletonHash)
				continue
			}
			e.logger.Error("promoting pattern", "hash", p.SkeletonHash, "error", err)
			continue
		}

		if err := e.index.Index(rec); err != nil {
			e.logger.Warn("indexing promoted snippet", "id", rec.ID, "error", err)
		}
		promoted++
		e.logger.Info("pattern promoted",
			"hash", p.SkeletonHash, "snippet_id", rec.ID,
			"frequency", p.Frequency, "avg_score", p.AvgScore)
	}
	return promoted
}
