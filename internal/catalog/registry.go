package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// SnippetStore defines the storage operations the Registry needs.
// Implemented by storage.Store.
type SnippetStore interface {
	UpsertSnippet(ctx context.Context, rec model.SnippetRecord) error
	ListSnippets(ctx context.Context) ([]model.SnippetRecord, error)
}

// Registry holds the snippet catalog in memory, optionally backed by a
// SnippetStore. Reads take a shared lock; writes are serialized so an upsert
// is persisted and indexed as one step.
type Registry struct {
	store  SnippetStore
	logger *slog.Logger

	mu      sync.RWMutex
	records []model.SnippetRecord
	byID    map[string]int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for skipped records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New creates an empty Registry. A nil store keeps the catalog in memory only.
func New(store SnippetStore, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		logger: slog.Default(),
		byID:   map[string]int{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register normalizes, validates, persists and indexes rec. Invalid records
// are logged and skipped; the returned error wraps model.ErrInvalidSnippet.
// Re-registering an existing id overwrites it in place.
func (r *Registry) Register(ctx context.Context, rec model.SnippetRecord) error {
	rec = rec.Clone()
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		r.logger.Warn("skipping invalid snippet", "id", rec.ID, "error", err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		if err := r.store.UpsertSnippet(ctx, rec); err != nil {
			return goerr.Wrap(err, "persisting snippet", goerr.V("id", rec.ID))
		}
	}
	r.put(rec)
	return nil
}

// RegisterBatch registers each record and returns how many were accepted.
// A rejected record never stops the batch.
func (r *Registry) RegisterBatch(ctx context.Context, recs []model.SnippetRecord) int {
	n := 0
	for _, rec := range recs {
		if err := r.Register(ctx, rec); err != nil {
			continue
		}
		n++
	}
	return n
}

// Index adds an already-persisted record to the in-memory catalog.
func (r *Registry) Index(rec model.SnippetRecord) error {
	rec = rec.Clone()
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		r.logger.Warn("skipping invalid snippet", "id", rec.ID, "error", err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(rec)
	return nil
}

// Load replaces the in-memory catalog with the store's contents.
func (r *Registry) Load(ctx context.Context) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	recs, err := r.store.ListSnippets(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "loading catalog")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.byID = map[string]int{}
	for _, rec := range recs {
		rec.Normalize()
		if err := rec.Validate(); err != nil {
			r.logger.Warn("skipping stored snippet", "id", rec.ID, "error", err)
			continue
		}
		r.put(rec)
	}
	return len(r.records), nil
}

// Reset clears the in-memory catalog. The store is left untouched.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.byID = map[string]int{}
}

// put must be called with mu held.
func (r *Registry) put(rec model.SnippetRecord) {
	if i, ok := r.byID[rec.ID]; ok {
		r.records[i] = rec
		return
	}
	r.byID[rec.ID] = len(r.records)
	r.records = append(r.records, rec)
}

// Get returns a copy of the snippet with the given id.
func (r *Registry) Get(id string) (model.SnippetRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return model.SnippetRecord{}, false
	}
	return r.records[i].Clone(), true
}

// ByType returns copies of every snippet whose type equals componentType.
func (r *Registry) ByType(componentType string) []model.SnippetRecord {
	componentType = model.NormalizeTerm(componentType)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.SnippetRecord
	for _, rec := range r.records {
		if rec.Type == componentType {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Len returns the number of registered snippets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// All returns copies of every snippet in registration order.
func (r *Registry) All() []model.SnippetRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.SnippetRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}
