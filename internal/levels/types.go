package levels

import (
	"github.com/danielpatrickdp/chatpls/internal/scoring"
)

// #region vocab
// Tool names a capability a turn may require or allow.
type Tool string

const (
	ToolCalculator          Tool = "calculator"
	ToolTranslator          Tool = "translator"
	ToolFactLookup          Tool = "fact_lookup"
	ToolSearchInternalSites Tool = "search_internal_sites"
	ToolRefuseUnsafeRequest Tool = "refuse_unsafe_request"
)

// Tag labels a scenario for browsing.
type Tag string

const (
	TagEasy            Tag = "easy"
	TagAdversarial     Tag = "adversarial"
	TagBusiness        Tag = "business"
	TagToolRequired    Tag = "tool-required"
	TagMultiTurn       Tag = "multi-turn"
	TagConsistencyTrap Tag = "consistency-trap"
)

// #endregion vocab

// #region scenario
// LevelScenario is a multi-turn scenario expressed as a directed graph of turns.
type LevelScenario struct {
	ID            string         `json:"id" yaml:"id"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description" yaml:"description"`
	Tags          []Tag          `json:"tags" yaml:"tags"`
	SystemPrompt  string         `json:"system_prompt" yaml:"system_prompt"`
	ScoringPreset scoring.Preset `json:"scoring_preset" yaml:"scoring_preset"`
	EntryTurnID   string         `json:"entry_turn_id" yaml:"entry_turn_id"`
	Turns         []ScenarioTurn `json:"turns" yaml:"turns"`
}

// ScenarioTurn is one node of the scenario graph.
type ScenarioTurn struct {
	ID               string       `json:"id" yaml:"id"`
	Prompt           string       `json:"prompt" yaml:"prompt"`
	RequiredTools    []Tool       `json:"required_tools,omitempty" yaml:"required_tools,omitempty"`
	AllowedTools     []Tool       `json:"allowed_tools,omitempty" yaml:"allowed_tools,omitempty"`
	ExpectedBehavior string       `json:"expected_behavior,omitempty" yaml:"expected_behavior,omitempty"`
	Transitions      []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	Terminal         bool         `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// IsExit reports whether a walk ends at this turn.
func (t ScenarioTurn) IsExit() bool {
	return t.Terminal || len(t.Transitions) == 0
}

// Transition is an edge guarded by a condition.
type Transition struct {
	ToTurnID string
	When     BranchCondition
}

// Turn returns the turn with id, if declared.
func (s LevelScenario) Turn(id string) (ScenarioTurn, bool) {
	for _, t := range s.Turns {
		if t.ID == id {
			return t, true
		}
	}
	return ScenarioTurn{}, false
}

// #endregion scenario
