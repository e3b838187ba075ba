package store

import "time"

const (
	TierHot     = "hot"
	TierWarm    = "warm"
	TierCold    = "cold"
	TierArchive = "archive"
)

// Record is the sole persistent entity. SupersededBy is a logical delete:
// a non-nil value excludes the record from every search, no exceptions.
type Record struct {
	Id           string    `json:"id"`
	Type         string    `json:"type"`
	Content      string    `json:"content"`
	Context      string    `json:"context,omitempty"`
	Tier         string    `json:"tier"`
	Agent        string    `json:"agent,omitempty"`
	Importance   int       `json:"importance"`
	Tags         []string  `json:"tags"`
	Embedding    []float32 `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	AccessCount  int       `json:"access_count"`
	SupersededBy *string   `json:"superseded_by,omitempty"`
}

// TierRank orders tiers by hotness so lifecycle policies can tell a
// demotion from a promotion. Unknown tiers rank below archive and are
// never rewritten by demotion.
func TierRank(tier string) int {
	switch tier {
	case TierHot:
		return 3
	case TierWarm:
		return 2
	case TierCold:
		return 1
	case TierArchive:
		return 0
	default:
		return -1
	}
}

// ScoredRecord is a search hit carrying both the raw cosine similarity
// and the blended rank so callers can display either.
type ScoredRecord struct {
	Record
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}
