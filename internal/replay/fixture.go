package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/levels"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. Rounds are
// scored against Scenario, or the demo greeting scenario when it is absent.
// Walk is an optional level walk checked alongside.
type Fixture struct {
	Description     string                   `json:"description"`
	Preset          scoring.Preset           `json:"preset,omitempty"`
	Scenario        *gameplay.ScenarioConfig `json:"scenario,omitempty"`
	Rounds          []FixtureRound           `json:"rounds"`
	ExpectedResults []FixtureExpectedResult  `json:"expected_results"`
	Walk            *FixtureWalk             `json:"walk,omitempty"`
}

// FixtureRound mirrors Round with JSON tags.
type FixtureRound struct {
	RoundID    string   `json:"round_id"`
	Answer     string   `json:"answer"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// FixtureExpectedResult captures the expected outcome per round.
type FixtureExpectedResult struct {
	RoundID  string  `json:"round_id"`
	Action   string  `json:"action"`
	MinScore float64 `json:"min_score,omitempty"`
	MaxScore float64 `json:"max_score,omitempty"`
}

// FixtureWalk is a level walk and the turn ids it must visit.
type FixtureWalk struct {
	LevelID      string               `json:"level_id"`
	Outcomes     []levels.TurnOutcome `json:"outcomes"`
	ExpectedPath []string             `json:"expected_path"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Preset != "" {
		if _, ok := scoring.PresetWeights(f.Preset); !ok {
			return nil, fmt.Errorf("fixture %s: unknown preset %q", path, f.Preset)
		}
	}
	return &f, nil
}

// ScenarioConfig returns the fixture scenario or the demo scenario.
func (f *Fixture) ScenarioConfig() gameplay.ScenarioConfig {
	if f.Scenario != nil {
		return *f.Scenario
	}
	return gameplay.DemoGreetingScenario()
}

// ReplayConfig applies the fixture preset to the defaults.
func (f *Fixture) ReplayConfig() ReplayConfig {
	c := DefaultReplayConfig()
	if w, ok := scoring.PresetWeights(f.Preset); ok {
		c.Weights = w
	}
	return c
}

// ToRounds converts the fixture rounds to domain rounds.
func (f *Fixture) ToRounds() []Round {
	out := make([]Round, len(f.Rounds))
	for i, fr := range f.Rounds {
		out[i] = Round{RoundID: fr.RoundID, Answer: fr.Answer, Similarity: fr.Similarity}
	}
	return out
}

// Expectations converts the expected results to domain expectations.
func (f *Fixture) Expectations() []Expectation {
	out := make([]Expectation, len(f.ExpectedResults))
	for i, e := range f.ExpectedResults {
		out[i] = Expectation{RoundID: e.RoundID, Action: e.Action, MinScore: e.MinScore, MaxScore: e.MaxScore}
	}
	return out
}

// #endregion fixture-loader
