package store

import (
	"context"
	"time"
)

type Store interface {
	// Upsert inserts the record or fully replaces the mutable fields of an
	// existing record with the same id. CreatedAt, AccessCount and
	// SupersededBy are never touched by this path.
	Upsert(ctx context.Context, rec Record) error
	// Search runs a nearest-neighbor query constrained by params. The
	// non-superseded predicate is applied here unconditionally; it is not a
	// param a caller could forget. Rows come back ordered by composite
	// score descending, similarity descending, at most params.Limit of them.
	Search(ctx context.Context, vector []float32, params SearchParams) ([]ScoredRecord, error)
	// TouchAccessed bumps last_accessed and access_count for the given ids
	// in one batched update.
	TouchAccessed(ctx context.Context, ids []string, at time.Time) error
	// DemoteLowSignal applies the low-signal demotion policy and reports
	// how many rows changed. Idempotent.
	DemoteLowSignal(ctx context.Context, params DemotionParams) (int64, error)
	// DuplicateGroups computes fingerprint duplicate pairs without
	// mutating anything. The grouping is the same one Supersede applies.
	DuplicateGroups(ctx context.Context) ([]DuplicatePair, error)
	// Supersede marks every non-earliest member of each fingerprint group
	// as superseded by the earliest, in a single transactional pass.
	Supersede(ctx context.Context) (int64, error)
	Health(ctx context.Context) error
}

// SchemaInitializer is implemented by providers that can bootstrap their
// own schema.
type SchemaInitializer interface {
	CreateSchema(ctx context.Context) error
}
