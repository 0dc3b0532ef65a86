package scoring

// Preset names a stock weight vector.
type Preset string

const (
	PresetBalanced    Preset = "balanced"
	PresetParody      Preset = "parody"
	PresetStrictFacts Preset = "strict_facts"
)

// PresetWeights returns the weight vector for a preset. Unknown presets
// report false.
func PresetWeights(p Preset) (ScoreVector, bool) {
	w := MakeScoreVector(0)
	switch p {
	case PresetBalanced:
		w[Semantic] = 0.35
		w[Rules] = 0.2
		w[System] = 0.2
		w[Style] = 0.1
		w[Robust] = 0.1
		w[Resilience] = 0.05
	case PresetParody:
		w[Semantic] = 0.2
		w[Rules] = 0.15
		w[System] = 0.15
		w[Style] = 0.35
		w[Contrast] = 0.1
		w[Resilience] = 0.05
	case PresetStrictFacts:
		w[Semantic] = 0.3
		w[Facts] = 0.3
		w[Rules] = 0.15
		w[System] = 0.15
		w[ToolUse] = 0.1
	default:
		return ScoreVector{}, false
	}
	return w, true
}
