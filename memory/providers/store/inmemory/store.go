// Package inmemory is a map-backed Store. It exists for tests and for
// running without Postgres; it mirrors the postgres provider's semantics
// exactly, sharing the scoring and fingerprint functions.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w-h-a/brainx/memory/providers/store"
)

type inMemoryStore struct {
	options store.Options
	records map[string]store.Record
	seq     map[string]uint64
	nextSeq uint64
	mtx     sync.RWMutex
}

func (s *inMemoryStore) Upsert(ctx context.Context, rec store.Record) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now().UTC()

	cpy := make([]float32, len(rec.Embedding))
	copy(cpy, rec.Embedding)
	rec.Embedding = cpy

	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	if existing, exists := s.records[rec.Id]; exists {
		rec.CreatedAt = existing.CreatedAt
		rec.LastAccessed = existing.LastAccessed
		rec.AccessCount = existing.AccessCount
		rec.SupersededBy = existing.SupersededBy
	} else {
		rec.CreatedAt = now
		rec.LastAccessed = now
		rec.AccessCount = 0
		rec.SupersededBy = nil
		s.nextSeq++
		s.seq[rec.Id] = s.nextSeq
	}

	s.records[rec.Id] = rec

	return nil
}

func (s *inMemoryStore) Search(ctx context.Context, vector []float32, params store.SearchParams) ([]store.ScoredRecord, error) {
	if params.Limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]store.ScoredRecord, 0, len(s.records))

	for _, rec := range s.records {
		if rec.SupersededBy != nil {
			continue
		}
		if rec.Importance < params.MinImportance {
			continue
		}
		if len(params.Tier) > 0 && rec.Tier != params.Tier {
			continue
		}
		if len(params.Context) > 0 && rec.Context != params.Context {
			continue
		}

		similarity := store.CosineSimilarity(vector, rec.Embedding)

		scored := store.ScoredRecord{
			Record:     rec,
			Similarity: similarity,
			Score:      store.Score(similarity, rec.Importance, rec.Tier, params.Weights),
		}
		scored.Embedding = nil
		scored.Tags = append([]string(nil), rec.Tags...)

		candidates = append(candidates, scored)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > params.Limit {
		candidates = candidates[:params.Limit]
	}

	return candidates, nil
}

func (s *inMemoryStore) TouchAccessed(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, id := range ids {
		rec, exists := s.records[id]
		if !exists {
			continue
		}
		rec.LastAccessed = at
		rec.AccessCount++
		s.records[id] = rec
	}

	return nil
}

func (s *inMemoryStore) DemoteLowSignal(ctx context.Context, params store.DemotionParams) (int64, error) {
	allowed := map[string]bool{}
	for _, t := range params.Types {
		allowed[t] = true
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	var updated int64

	for id, rec := range s.records {
		if rec.SupersededBy != nil {
			continue
		}
		if len(rec.Content) > params.MaxContentLen {
			continue
		}
		if !allowed[rec.Type] {
			continue
		}

		if store.TierRank(rec.Tier) > store.TierRank(params.Tier) {
			rec.Tier = params.Tier
		}
		if rec.Importance > params.MaxImportance {
			rec.Importance = params.MaxImportance
		}
		rec.Tags = addTag(rec.Tags, "low_signal")

		s.records[id] = rec
		updated++
	}

	return updated, nil
}

func (s *inMemoryStore) DuplicateGroups(ctx context.Context) ([]store.DuplicatePair, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.duplicateGroups(), nil
}

func (s *inMemoryStore) Supersede(ctx context.Context) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	pairs := s.duplicateGroups()

	for _, pair := range pairs {
		rec := s.records[pair.SupersededId]
		keep := pair.KeepId
		rec.SupersededBy = &keep
		rec.Tags = addTag(rec.Tags, "dedup_superseded")
		s.records[pair.SupersededId] = rec
	}

	return int64(len(pairs)), nil
}

// duplicateGroups is the grouping shared by the dry-run and the live
// pass. Caller holds the lock.
func (s *inMemoryStore) duplicateGroups() []store.DuplicatePair {
	groups := map[string][]store.Record{}

	for _, rec := range s.records {
		if rec.SupersededBy != nil {
			continue
		}
		fp := store.Fingerprint(rec)
		groups[fp] = append(groups[fp], rec)
	}

	fps := make([]string, 0, len(groups))
	for fp, members := range groups {
		if len(members) < 2 {
			continue
		}
		fps = append(fps, fp)
	}
	sort.Strings(fps)

	var pairs []store.DuplicatePair

	for _, fp := range fps {
		members := groups[fp]
		sort.Slice(members, func(i, j int) bool {
			if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
				return members[i].CreatedAt.Before(members[j].CreatedAt)
			}
			return s.seq[members[i].Id] < s.seq[members[j].Id]
		})

		survivor := members[0]
		for _, later := range members[1:] {
			pairs = append(pairs, store.DuplicatePair{
				Fingerprint:  fp,
				KeepId:       survivor.Id,
				SupersededId: later.Id,
			})
		}
	}

	return pairs
}

func (s *inMemoryStore) Health(ctx context.Context) error {
	return nil
}

// Get returns a copy of a record by id. Test helper; not part of the
// Store interface.
func (s *inMemoryStore) Get(id string) (store.Record, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	rec, exists := s.records[id]
	return rec, exists
}

func addTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

func NewStore(opts ...store.Option) *inMemoryStore {
	options := store.NewOptions(opts...)

	s := &inMemoryStore{
		options: options,
		records: map[string]store.Record{},
		seq:     map[string]uint64{},
	}

	return s
}
