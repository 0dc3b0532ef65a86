package scoring

import "math"

// #region clamp
// Clamp01 bounds x to [0, 1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// #endregion clamp

// #region normalize
// NormalizeWeights rescales the non-negative part of w to sum to 1.
// Negative weights count as zero. If nothing is positive the zero vector
// is returned, which makes the round score 0.
func NormalizeWeights(w ScoreVector) ScoreVector {
	var normalized ScoreVector
	var total float64
	for _, x := range w {
		total += math.Max(0, x)
	}
	if !(total > 0) {
		return normalized
	}
	for i, x := range w {
		normalized[i] = math.Max(0, x) / total
	}
	return normalized
}

// #endregion normalize

// #region round-score
// CalculateRoundScore clamps components, normalizes weights and returns the
// weighted sum on a 0..100 scale.
func CalculateRoundScore(components, weights ScoreVector) RoundScoreResult {
	var clamped ScoreVector
	normalized := NormalizeWeights(weights)

	var total float64
	for i, x := range components {
		clamped[i] = Clamp01(x)
		total += clamped[i] * normalized[i]
	}

	return RoundScoreResult{
		Score:             Clamp01(total) * 100,
		ClampedComponents: clamped,
		NormalizedWeights: normalized,
	}
}

// #endregion round-score
