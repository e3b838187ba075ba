package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/brainx/memory/providers/store"
	"github.com/w-h-a/brainx/memory/providers/store/inmemory"
)

// fakeEmbedder returns scripted vectors per input and a fallback for
// anything else.
type fakeEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	fail     error
	calls    []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.fail != nil {
		return nil, f.fail
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return f.fallback, nil
}

func seedRecord(t *testing.T, s interface {
	Upsert(ctx context.Context, rec store.Record) error
}, rec store.Record) {
	t.Helper()
	require.NoError(t, s.Upsert(context.Background(), rec))
}

func TestStoreMemoryAppliesDefaultsAndGeneratesId(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	rec, err := m.StoreMemory(context.Background(), store.Record{Content: "remember this"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.Id)
	assert.Equal(t, "note", rec.Type)
	assert.Equal(t, store.TierWarm, rec.Tier)
	assert.Equal(t, 5, rec.Importance)
	assert.Equal(t, []string{}, rec.Tags)

	// Type and context are folded into the embed input as weak priors.
	require.Len(t, e.calls, 1)
	assert.Equal(t, "note: remember this [context: ]", e.calls[0])
}

func TestStoreMemoryRejectsEmptyContentBeforeAnyCall(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	_, err := m.StoreMemory(context.Background(), store.Record{Content: "   "})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, e.calls)
}

func TestStoreMemoryIsIdempotentById(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	_, err := m.StoreMemory(context.Background(), store.Record{Id: "fixed", Content: "same"})
	require.NoError(t, err)

	before, ok := s.Get("fixed")
	require.True(t, ok)

	_, err = m.StoreMemory(context.Background(), store.Record{Id: "fixed", Content: "same"})
	require.NoError(t, err)

	after, ok := s.Get("fixed")
	require.True(t, ok)

	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, before.Content, after.Content)
}

func TestStoreMemoryWrapsProviderFailure(t *testing.T) {
	e := &fakeEmbedder{fail: errors.New("boom")}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	_, err := m.StoreMemory(context.Background(), store.Record{Content: "x"})

	var provider *ProviderError
	require.ErrorAs(t, err, &provider)
}

func TestStoreMemoryRejectsWrongDimension(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e), WithDimensions(3))

	_, err := m.StoreMemory(context.Background(), store.Record{Content: "x"})

	var provider *ProviderError
	require.ErrorAs(t, err, &provider)
}

func TestSearchRequiresQuery(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	_, err := m.Search(context.Background(), " ")

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, e.calls)
}

func TestSearchPostFiltersAndTouchesOnlySurvivors(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	seedRecord(t, s, store.Record{Id: "close", Type: "note", Content: "close", Tier: store.TierWarm, Importance: 5, Embedding: []float32{1, 0}})
	seedRecord(t, s, store.Record{Id: "far", Type: "note", Content: "far", Tier: store.TierWarm, Importance: 5, Embedding: []float32{0, 1}})

	results, err := m.Search(context.Background(), "query", WithMinSimilarity(0.5))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "close", results[0].Id)

	survivor, _ := s.Get("close")
	cut, _ := s.Get("far")
	assert.Equal(t, 1, survivor.AccessCount)
	assert.Equal(t, 0, cut.AccessCount)
}

func TestSearchLimitCutsBeforeSimilarityFloor(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	// "boosted" outranks "steady" on composite score thanks to importance
	// and tier, but sits below the similarity floor. The floor runs after
	// the limit, so "steady" is already gone and the call under-returns.
	seedRecord(t, s, store.Record{Id: "top", Type: "note", Content: "a", Tier: store.TierWarm, Importance: 5, Embedding: []float32{1, 0}})
	seedRecord(t, s, store.Record{Id: "boosted", Type: "note", Content: "b", Tier: store.TierHot, Importance: 10, Embedding: []float32{0.35, float32(0.9367496997597797)}})
	seedRecord(t, s, store.Record{Id: "steady", Type: "note", Content: "c", Tier: store.TierWarm, Importance: 5, Embedding: []float32{0.5, float32(0.8660254037844386)}})

	results, err := m.Search(context.Background(), "query", WithLimit(2), WithMinSimilarity(0.4))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "top", results[0].Id)
}

func TestSearchRaisingFloorOnlyTrimsTheTail(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	seedRecord(t, s, store.Record{Id: "a", Type: "note", Content: "a", Tier: store.TierWarm, Importance: 5, Embedding: []float32{1, 0}})
	seedRecord(t, s, store.Record{Id: "b", Type: "note", Content: "b", Tier: store.TierWarm, Importance: 5, Embedding: []float32{0.8, 0.6}})
	seedRecord(t, s, store.Record{Id: "c", Type: "note", Content: "c", Tier: store.TierWarm, Importance: 5, Embedding: []float32{0.5, float32(0.8660254037844386)}})

	loose, err := m.Search(context.Background(), "query", WithMinSimilarity(-1))
	require.NoError(t, err)
	strict, err := m.Search(context.Background(), "query", WithMinSimilarity(0.6))
	require.NoError(t, err)

	require.Len(t, loose, 3)
	require.Len(t, strict, 2)
	assert.Equal(t, loose[0].Id, strict[0].Id)
	assert.Equal(t, loose[1].Id, strict[1].Id)
}

func TestSearchForInjectionMergesHotBeforeWarm(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	// Warm record is the closest match, but hot results lead the merge.
	seedRecord(t, s, store.Record{Id: "hot", Type: "note", Content: "h", Tier: store.TierHot, Importance: 5, Embedding: []float32{0.8, 0.6}})
	seedRecord(t, s, store.Record{Id: "warm", Type: "note", Content: "w", Tier: store.TierWarm, Importance: 5, Embedding: []float32{1, 0}})
	seedRecord(t, s, store.Record{Id: "cold", Type: "note", Content: "c", Tier: store.TierCold, Importance: 5, Embedding: []float32{1, 0}})

	results, err := m.SearchForInjection(context.Background(), "query")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "hot", results[0].Id)
	assert.Equal(t, "warm", results[1].Id)
}

func TestSearchForInjectionExplicitTierBypassesMerge(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	seedRecord(t, s, store.Record{Id: "hot", Type: "note", Content: "h", Tier: store.TierHot, Importance: 5, Embedding: []float32{1, 0}})
	seedRecord(t, s, store.Record{Id: "cold", Type: "note", Content: "c", Tier: store.TierCold, Importance: 5, Embedding: []float32{1, 0}})

	results, err := m.SearchForInjection(context.Background(), "query", WithInjectTier(store.TierCold))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "cold", results[0].Id)
}

func TestSearchForInjectionUsesLowerFloor(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	// similarity ~0.2: below the search default of 0.3, above the 0.15
	// injection floor.
	seedRecord(t, s, store.Record{Id: "faint", Type: "note", Content: "f", Tier: store.TierHot, Importance: 5, Embedding: []float32{0.2, float32(0.9797958971132712)}})

	viaSearch, err := m.Search(context.Background(), "query")
	require.NoError(t, err)
	viaInjection, err := m.SearchForInjection(context.Background(), "query")
	require.NoError(t, err)

	assert.Empty(t, viaSearch)
	require.Len(t, viaInjection, 1)
	assert.Equal(t, "faint", viaInjection[0].Id)
}

func TestDedupExcludesLaterDuplicateFromSearch(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	for _, id := range []string{"first", "second"} {
		_, err := m.StoreMemory(context.Background(), store.Record{
			Id: id, Type: "note", Content: "dup", Context: "p", Agent: "coder",
		})
		require.NoError(t, err)
	}

	pairs, err := m.DedupPreview(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	count, err := m.Dedup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	results, err := m.Search(context.Background(), "query", WithMinSimilarity(-1))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "first", results[0].Id)
}

func TestCleanupLowSignalDefaults(t *testing.T) {
	e := &fakeEmbedder{fallback: []float32{1, 0}}
	s := inmemory.NewStore()
	m := NewManager(WithStore(s), WithEmbedder(e))

	seedRecord(t, s, store.Record{Id: "tiny", Type: "note", Content: "ok", Tier: store.TierHot, Importance: 9, Embedding: []float32{1, 0}})

	updated, err := m.CleanupLowSignal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	rec, _ := s.Get("tiny")
	assert.Equal(t, store.TierCold, rec.Tier)
	assert.Equal(t, 2, rec.Importance)
	assert.Contains(t, rec.Tags, "low_signal")
}
