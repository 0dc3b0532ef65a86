package gameplay

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/chatpls/internal/rules"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
)

// #region run-single-turn

// RunSingleTurn scores one player answer against a scenario.
// An empty answer yields a failed/invalid_output result without calling the
// scorer. A scorer error is returned wrapped in ErrScorerFailure.
func RunSingleTurn(ctx context.Context, in RunInput, scorer SemanticScorer) (RunResult, error) {
	transcript := []TranscriptEntry{
		{Role: RoleSystem, Content: in.Scenario.SystemPrompt},
		{Role: RoleUser, Content: in.Scenario.UserPrompt},
		{Role: RoleAssistant, Content: in.PlayerAnswer},
	}

	if strings.TrimSpace(in.PlayerAnswer) == "" {
		return RunResult{
			Score:           0,
			ComponentScores: scoring.MakeScoreVector(0),
			EndState:        EndStateFailed,
			EndReason:       EndReasonInvalidOutput,
			TurnsCompleted:  1,
			Transcript:      transcript,
		}, nil
	}

	raw, err := scorer.Similarity(ctx, in.PlayerAnswer, in.Scenario.BenchmarkAnswer)
	if err != nil {
		return RunResult{}, fmt.Errorf("%w: %w", ErrScorerFailure, err)
	}

	components := BuildComponentScores(in.Scenario, in.PlayerAnswer, scoring.Clamp01((raw+1)/2))
	weights := ApplyScoringPolicy(in.ScoringWeights, in.Scenario.ScoringPolicy)
	round := scoring.CalculateRoundScore(components, weights)

	return RunResult{
		Score:           round.Score,
		ComponentScores: components,
		EndState:        EndStateCompleted,
		EndReason:       EndReasonAnswered,
		TurnsCompleted:  1,
		Transcript:      transcript,
	}, nil
}

// #endregion run-single-turn

// #region components

// BuildComponentScores fills the score vector from the rule report and the
// rescaled semantic similarity.
func BuildComponentScores(sc ScenarioConfig, answer string, semantic01 float64) scoring.ScoreVector {
	report := rules.Evaluate(answer, sc.UserPrompt, sc.SystemRules, sc.UserRules)

	v := scoring.MakeScoreVector(0)
	v[scoring.Semantic] = semantic01
	v[scoring.System] = report.System
	v[scoring.Rules] = report.Rules
	v[scoring.Style] = report.Style
	// Reserved for multi-turn adversarial scoring.
	v[scoring.Robust] = 1
	v[scoring.Resilience] = 1
	return v
}

// #endregion components

// #region scoring-policy

// ApplyScoringPolicy skews the system and rules weights according to the
// policy priority. It runs before normalization so the skew survives it.
func ApplyScoringPolicy(weights scoring.ScoreVector, policy *ScoringPolicy) scoring.ScoreVector {
	priority := PriorityBalanced
	if policy != nil && policy.Priority != "" {
		priority = policy.Priority
	}

	switch priority {
	case PrioritySystemOverUser:
		weights[scoring.System] *= 1.5
		weights[scoring.Rules] *= 0.5
	case PriorityUserOverSystem:
		weights[scoring.System] *= 0.5
		weights[scoring.Rules] *= 1.5
	}
	return weights
}

// #endregion scoring-policy
