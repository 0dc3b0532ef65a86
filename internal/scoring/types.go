package scoring

import (
	"encoding/json"
	"fmt"
)

// #region component
// Component names one quality dimension of an answer.
type Component int

const (
	Semantic Component = iota
	Contrast
	Rules
	System
	Facts
	Robust
	Style
	ToolUse
	Resilience

	numComponents
)

var componentNames = [numComponents]string{
	Semantic:   "semantic",
	Contrast:   "contrast",
	Rules:      "rules",
	System:     "system",
	Facts:      "facts",
	Robust:     "robust",
	Style:      "style",
	ToolUse:    "tool_use",
	Resilience: "resilience",
}

// String returns the wire name of the component.
func (c Component) String() string {
	if c < 0 || c >= numComponents {
		return fmt.Sprintf("component(%d)", int(c))
	}
	return componentNames[c]
}

// Components returns every component in declaration order.
func Components() []Component {
	out := make([]Component, numComponents)
	for i := range out {
		out[i] = Component(i)
	}
	return out
}

// ParseComponent maps a wire name back to its component.
func ParseComponent(name string) (Component, bool) {
	for i, n := range componentNames {
		if n == name {
			return Component(i), true
		}
	}
	return 0, false
}

// #endregion component

// #region score-vector
// ScoreVector holds one value per component. It is an array so a partial
// vector cannot be expressed; passing it by value hands out a snapshot.
type ScoreVector [numComponents]float64

// MakeScoreVector returns a vector with every component set to initial.
func MakeScoreVector(initial float64) ScoreVector {
	var v ScoreVector
	for i := range v {
		v[i] = initial
	}
	return v
}

// Get returns the value for c.
func (v ScoreVector) Get(c Component) float64 {
	return v[c]
}

// With returns a copy of v with c set to x.
func (v ScoreVector) With(c Component, x float64) ScoreVector {
	v[c] = x
	return v
}

// Each calls fn for every component in declaration order.
func (v ScoreVector) Each(fn func(c Component, x float64)) {
	for i, x := range v {
		fn(Component(i), x)
	}
}

// Map returns the vector keyed by wire name.
func (v ScoreVector) Map() map[string]float64 {
	m := make(map[string]float64, numComponents)
	for i, x := range v {
		m[componentNames[i]] = x
	}
	return m
}

// MarshalJSON encodes the vector as an object with every component key.
func (v ScoreVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes an object keyed by component name. Missing keys
// decode as 0; unknown keys are rejected.
func (v *ScoreVector) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode score vector: %w", err)
	}
	out := MakeScoreVector(0)
	for name, x := range raw {
		c, ok := ParseComponent(name)
		if !ok {
			return fmt.Errorf("decode score vector: unknown component %q", name)
		}
		out[c] = x
	}
	*v = out
	return nil
}

// #endregion score-vector

// #region round-result
// RoundScoreResult is the aggregate score plus the inputs it was computed
// from, kept for auditing.
type RoundScoreResult struct {
	Score             float64     `json:"score"`
	ClampedComponents ScoreVector `json:"clamped_components"`
	NormalizedWeights ScoreVector `json:"normalized_weights"`
}

// #endregion round-result
