package store

import "math"

// Weights hold the composite scoring policy. The constants are policy,
// not physics, so they travel with the query instead of being baked into
// any provider.
type Weights struct {
	Importance  float64
	TierBonuses map[string]float64
}

func DefaultWeights() Weights {
	return Weights{
		Importance: 0.25,
		TierBonuses: map[string]float64{
			TierHot:     0.15,
			TierWarm:    0.05,
			TierCold:    -0.05,
			TierArchive: -0.10,
		},
	}
}

// TierBonus returns the additive bonus for a tier, 0 for anything unknown.
func (w Weights) TierBonus(tier string) float64 {
	return w.TierBonuses[tier]
}

// Score blends raw similarity with importance and tier so that hotter and
// more important memories rank first among near-equals. Importance is
// clamped to the conventional 0..10 range before weighting; the
// similarity term dominates the scale.
func Score(similarity float64, importance int, tier string, w Weights) float64 {
	clamped := math.Min(math.Max(float64(importance), 0), 10)
	return similarity + (clamped/10.0)*w.Importance + w.TierBonus(tier)
}

// CosineSimilarity computes 1 - cosine distance for in-process providers.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
