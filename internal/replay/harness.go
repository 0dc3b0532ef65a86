package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/chatpls/internal/gameplay"
	"github.com/danielpatrickdp/chatpls/internal/levels"
	"github.com/danielpatrickdp/chatpls/internal/scoring"
	"github.com/danielpatrickdp/chatpls/internal/semantic"
)

// #region types
// Round is one recorded answer to replay. A nil Similarity means the
// configured scorer decides.
type Round struct {
	RoundID    string
	Answer     string
	Similarity *float64
}

// ReplayConfig bundles the weights and the fallback scorer for a run.
type ReplayConfig struct {
	Weights scoring.ScoreVector
	Scorer  gameplay.SemanticScorer
}

// DefaultReplayConfig scores with balanced weights and the lexical scorer.
func DefaultReplayConfig() ReplayConfig {
	w, _ := scoring.PresetWeights(scoring.PresetBalanced)
	return ReplayConfig{Weights: w, Scorer: semantic.Lexical{}}
}

// ReplayResult is the outcome of replaying one round.
type ReplayResult struct {
	RoundID   string
	Score     float64
	EndState  gameplay.EndState
	EndReason gameplay.EndReason
	Result    *gameplay.RunResult
	Err       string
}

// Action is the comparable label of a result: "end_state/end_reason", or
// "error" when the scorer failed.
func (r ReplayResult) Action() string {
	if r.Err != "" {
		return "error"
	}
	return fmt.Sprintf("%s/%s", r.EndState, r.EndReason)
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalRounds int
	Completed   int
	Failed      int
	Errors      int
	MeanScore   float64
}

// #endregion types

// #region replay
// Replay scores every round against scenario in order. It never touches a
// session or a store.
func Replay(ctx context.Context, scenario gameplay.ScenarioConfig, rounds []Round, config ReplayConfig) []ReplayResult {
	results := make([]ReplayResult, 0, len(rounds))
	for _, rd := range rounds {
		scorer := config.Scorer
		if rd.Similarity != nil {
			scorer = semantic.Fixed{Value: *rd.Similarity}
		}

		res, err := gameplay.RunSingleTurn(ctx, gameplay.RunInput{
			Scenario:       scenario,
			PlayerAnswer:   rd.Answer,
			ScoringWeights: config.Weights,
		}, scorer)
		if err != nil {
			results = append(results, ReplayResult{RoundID: rd.RoundID, Err: err.Error()})
			continue
		}
		results = append(results, ReplayResult{
			RoundID:   rd.RoundID,
			Score:     res.Score,
			EndState:  res.EndState,
			EndReason: res.EndReason,
			Result:    &res,
		})
	}
	return results
}

// Summarize computes aggregate stats from replay results. Errored rounds
// are left out of the mean.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalRounds: len(results)}
	scored := 0
	for _, r := range results {
		switch {
		case r.Err != "":
			s.Errors++
			continue
		case r.EndState == gameplay.EndStateCompleted:
			s.Completed++
		default:
			s.Failed++
		}
		s.MeanScore += r.Score
		scored++
	}
	if scored > 0 {
		s.MeanScore /= float64(scored)
	}
	return s
}

// #endregion replay

// #region compare
// Expectation is the reference outcome of one round. A zero MaxScore means
// the score is not checked.
type Expectation struct {
	RoundID  string
	Action   string
	MinScore float64
	MaxScore float64
}

// Matches reports whether r meets e.
func (e Expectation) Matches(r ReplayResult) bool {
	if e.Action != "" && e.Action != r.Action() {
		return false
	}
	if e.MaxScore == 0 {
		return true
	}
	return r.Score >= e.MinScore-1e-9 && r.Score <= e.MaxScore+1e-9
}

// #endregion compare

// #region walk
// WalkPath runs a level with the given outcomes and returns the visited
// turn ids, ending with the turn the walk stopped on. The error is the
// first walker failure, if any.
func WalkPath(s levels.LevelScenario, outcomes []levels.TurnOutcome) ([]string, error) {
	w, err := levels.NewWalker(s)
	if err != nil {
		return nil, err
	}
	path := []string{w.Current().ID}
	for _, o := range outcomes {
		next, err := w.Advance(o)
		if err != nil {
			return path, err
		}
		if w.Done() {
			break
		}
		path = append(path, next.ID)
	}
	if !w.Done() {
		return path, errors.New("walk did not reach an exit turn")
	}
	return path, nil
}

// #endregion walk

// WalkFixture resolves the fixture level from the built-in registry and
// walks it.
func WalkFixture(fw *FixtureWalk) ([]string, error) {
	s, ok := levels.ByID(fw.LevelID)
	if !ok {
		return nil, fmt.Errorf("unknown level %q", fw.LevelID)
	}
	return WalkPath(s, fw.Outcomes)
}
