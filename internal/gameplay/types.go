package gameplay

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/chatpls/internal/rules"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
)

// #region errors
var (
	// ErrNoScenarioLoaded is returned by SubmitAnswer before a scenario is loaded.
	ErrNoScenarioLoaded = errors.New("no scenario is loaded")
	// ErrScorerFailure wraps any error returned by the semantic scorer.
	ErrScorerFailure = errors.New("semantic scorer failed")
)

// #endregion errors

// #region scoring-policy
// Priority decides whether system or user constraints weigh more.
type Priority string

const (
	PriorityBalanced       Priority = "balanced"
	PrioritySystemOverUser Priority = "system_over_user"
	PriorityUserOverSystem Priority = "user_over_system"
)

// ScoringPolicy configures weight skewing for a scenario.
type ScoringPolicy struct {
	Priority Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// #endregion scoring-policy

// #region scenario-config
// ScenarioConfig is a single-turn scenario: one user prompt, the rules an
// answer must respect, and a benchmark answer for semantic comparison.
type ScenarioConfig struct {
	ID              string            `json:"id" yaml:"id"`
	SystemPrompt    string            `json:"system_prompt" yaml:"system_prompt"`
	SystemRules     rules.SystemRules `json:"system_rules" yaml:"system_rules"`
	UserRules       *rules.UserRules  `json:"user_rules,omitempty" yaml:"user_rules,omitempty"`
	ScoringPolicy   *ScoringPolicy    `json:"scoring_policy,omitempty" yaml:"scoring_policy,omitempty"`
	UserPrompt      string            `json:"user_prompt" yaml:"user_prompt"`
	BenchmarkAnswer string            `json:"benchmark_answer" yaml:"benchmark_answer"`
}

// #endregion scenario-config

// #region run-types
// EndState is the terminal state of a round.
type EndState string

const (
	EndStateCompleted EndState = "completed"
	EndStateFailed    EndState = "failed"
)

// EndReason explains the end state.
type EndReason string

const (
	EndReasonAnswered      EndReason = "answered"
	EndReasonRefused       EndReason = "refused" // reserved for refusal detection
	EndReasonInvalidOutput EndReason = "invalid_output"
)

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TranscriptEntry is one message of a round.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RunInput bundles everything a single round needs.
type RunInput struct {
	Scenario       ScenarioConfig
	PlayerAnswer   string
	ScoringWeights scoring.ScoreVector
}

// RunResult is the outcome of one round. Treat it as immutable.
type RunResult struct {
	Score           float64             `json:"score"`
	ComponentScores scoring.ScoreVector `json:"component_scores"`
	EndState        EndState            `json:"end_state"`
	EndReason       EndReason           `json:"end_reason"`
	TurnsCompleted  int                 `json:"turns_completed"`
	Transcript      []TranscriptEntry   `json:"transcript"`
}

// #endregion run-types

// #region semantic-scorer
// SemanticScorer returns a cosine-like similarity in [-1, 1] between two texts.
type SemanticScorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// #endregion semantic-scorer
