package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreHigherImportanceWinsAtEqualSimilarity(t *testing.T) {
	w := DefaultWeights()

	low := Score(0.8, 3, TierWarm, w)
	high := Score(0.8, 9, TierWarm, w)

	assert.Greater(t, high, low)
}

func TestScoreHotterTierWinsAtEqualSimilarityAndImportance(t *testing.T) {
	w := DefaultWeights()

	hot := Score(0.8, 5, TierHot, w)
	warm := Score(0.8, 5, TierWarm, w)
	cold := Score(0.8, 5, TierCold, w)
	archive := Score(0.8, 5, TierArchive, w)

	assert.Greater(t, hot, warm)
	assert.Greater(t, warm, cold)
	assert.Greater(t, cold, archive)
}

func TestScoreSimilarityDominates(t *testing.T) {
	w := DefaultWeights()

	// Max importance and tier bonuses together add 0.4; a similarity gap
	// larger than that cannot be overridden.
	weak := Score(0.9, 10, TierHot, w)
	strong := Score(0.9+0.41, 0, TierArchive, w)

	assert.Greater(t, strong, weak)
}

func TestScoreClampsImportance(t *testing.T) {
	w := DefaultWeights()

	assert.Equal(t, Score(0.5, 10, TierWarm, w), Score(0.5, 99, TierWarm, w))
	assert.Equal(t, Score(0.5, 0, TierWarm, w), Score(0.5, -3, TierWarm, w))
}

func TestScoreUnknownTierGetsNoBonus(t *testing.T) {
	w := DefaultWeights()

	assert.Equal(t, Score(0.5, 5, "", w), Score(0.5, 5, "mystery", w))
	assert.Equal(t, 0.0, w.TierBonus("mystery"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarityDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestTierRank(t *testing.T) {
	assert.Greater(t, TierRank(TierHot), TierRank(TierWarm))
	assert.Greater(t, TierRank(TierWarm), TierRank(TierCold))
	assert.Greater(t, TierRank(TierCold), TierRank(TierArchive))
	assert.Greater(t, TierRank(TierArchive), TierRank("mystery"))
}
