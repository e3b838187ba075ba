// Package memory implements the retrieval and lifecycle engine for
// long-term agent memories: composite-scored vector search, tiered
// retention, supersession-based dedup, and the injection-path merge.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/w-h-a/brainx/memory/providers/store"
)

type Manager struct {
	options Options
}

// StoreMemory embeds and upserts a record. The embed input composes
// type, content and context into a fixed template so both act as weak
// semantic priors in the vector, not raw content alone. Missing fields
// get their defaults; a missing id is generated.
func (m *Manager) StoreMemory(ctx context.Context, rec store.Record) (store.Record, error) {
	if len(strings.TrimSpace(rec.Content)) == 0 {
		return store.Record{}, &ValidationError{Field: "content", Detail: "is required"}
	}

	if len(rec.Id) == 0 {
		rec.Id = NewID()
	}
	if len(rec.Type) == 0 {
		rec.Type = "note"
	}
	if len(rec.Tier) == 0 {
		rec.Tier = store.TierWarm
	}
	if rec.Importance == 0 {
		rec.Importance = 5
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	vec, err := m.embed(ctx, fmt.Sprintf("%s: %s [context: %s]", rec.Type, rec.Content, rec.Context))
	if err != nil {
		return store.Record{}, err
	}

	rec.Embedding = vec

	if err := m.options.Store.Upsert(ctx, rec); err != nil {
		return store.Record{}, &StorageError{Err: err}
	}

	return rec, nil
}

// Search embeds the query and returns at most limit records ordered by
// composite score. The similarity floor is applied after the limit has
// already cut the candidate set, so fewer than limit rows may come back
// even when more candidates above the floor exist further down the
// score order. That is the contract, not an accident. Records in the
// returned set get their access telemetry bumped; records cut by the
// floor do not.
func (m *Manager) Search(ctx context.Context, query string, opts ...SearchOption) ([]store.ScoredRecord, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return nil, &ValidationError{Field: "query", Detail: "is required"}
	}

	options := NewSearchOptions(opts...)

	vec, err := m.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates, err := m.options.Store.Search(ctx, vec, store.SearchParams{
		Limit:         options.Limit,
		MinImportance: options.MinImportance,
		Tier:          options.Tier,
		Context:       options.Context,
		Weights:       m.options.Weights,
	})
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	results := make([]store.ScoredRecord, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Similarity < options.MinSimilarity {
			continue
		}
		results = append(results, candidate)
	}

	if len(results) > 0 {
		ids := make([]string, 0, len(results))
		for _, rec := range results {
			ids = append(ids, rec.Id)
		}
		if err := m.options.Store.TouchAccessed(ctx, ids, time.Now().UTC()); err != nil {
			return nil, &StorageError{Err: err}
		}
	}

	return results, nil
}

// SearchForInjection runs the injection-path retrieval at the lower
// similarity floor. With no explicit tier and the warm_or_hot policy it
// merges a hot search and a warm search, hot first, deduped by id and
// truncated to the limit; cold and archive noise stays out unless a
// caller asks for it by tier.
func (m *Manager) SearchForInjection(ctx context.Context, query string, opts ...InjectOption) ([]store.ScoredRecord, error) {
	options := NewInjectOptions(opts...)

	search := func(tier string) ([]store.ScoredRecord, error) {
		searchOpts := []SearchOption{
			WithLimit(options.Limit),
			WithMinSimilarity(DefaultInjectionFloor),
			WithMinImportance(options.MinImportance),
			WithContextFilter(options.Context),
		}
		if len(tier) > 0 {
			searchOpts = append(searchOpts, WithTier(tier))
		}
		return m.Search(ctx, query, searchOpts...)
	}

	if len(options.Tier) > 0 || m.options.InjectionPolicy != InjectPolicyWarmOrHot {
		return search(options.Tier)
	}

	hot, err := search(store.TierHot)
	if err != nil {
		return nil, err
	}

	warm, err := search(store.TierWarm)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	merged := make([]store.ScoredRecord, 0, options.Limit)

	for _, rec := range append(hot, warm...) {
		if seen[rec.Id] {
			continue
		}
		seen[rec.Id] = true
		merged = append(merged, rec)
		if len(merged) >= options.Limit {
			break
		}
	}

	return merged, nil
}

// CleanupLowSignal demotes very short free-text records: they carry
// little retrievable signal and pollute hot and warm result sets.
// Idempotent; never raises importance or promotes a tier.
func (m *Manager) CleanupLowSignal(ctx context.Context, opts ...CleanupOption) (int64, error) {
	options := NewCleanupOptions(opts...)

	updated, err := m.options.Store.DemoteLowSignal(ctx, store.DemotionParams{
		MaxContentLen: options.MaxContentLen,
		Tier:          options.Tier,
		MaxImportance: options.MaxImportance,
		Types:         options.Types,
	})
	if err != nil {
		return 0, &StorageError{Err: err}
	}

	return updated, nil
}

// DedupPreview reports the supersession pairs a live Dedup would apply,
// without mutating anything. Both paths share the same grouping.
func (m *Manager) DedupPreview(ctx context.Context) ([]store.DuplicatePair, error) {
	pairs, err := m.options.Store.DuplicateGroups(ctx)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return pairs, nil
}

// Dedup marks every later-created duplicate in each fingerprint group as
// superseded by the earliest one, in one transactional pass.
func (m *Manager) Dedup(ctx context.Context) (int64, error) {
	count, err := m.options.Store.Supersede(ctx)
	if err != nil {
		return 0, &StorageError{Err: err}
	}
	return count, nil
}

func (m *Manager) Health(ctx context.Context) error {
	if err := m.options.Store.Health(ctx); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

func (m *Manager) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := m.options.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	if m.options.Dimensions > 0 && len(vec) != m.options.Dimensions {
		return nil, &ProviderError{Err: fmt.Errorf("expected %d dimensions, got %d", m.options.Dimensions, len(vec))}
	}

	return vec, nil
}

func NewManager(opts ...Option) *Manager {
	options := NewOptions(opts...)

	return &Manager{
		options: options,
	}
}
