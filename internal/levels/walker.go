package levels

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidScenario is returned when a scenario fails validation.
	ErrInvalidScenario = errors.New("invalid scenario")
	// ErrNoTransition is returned when no transition of a non-exit turn matches.
	ErrNoTransition = errors.New("no transition matches")
	// ErrStepLimit is returned once a walk has taken its maximum number of steps.
	ErrStepLimit = errors.New("step limit reached")
	// ErrWalkFinished is returned by Advance after the walk reached an exit turn.
	ErrWalkFinished = errors.New("walk already finished")
)

// DefaultMaxSteps bounds a walk through a cyclic graph.
const DefaultMaxSteps = 64

// #region outcome
// TurnOutcome is what the player achieved on one turn. Scores are in [0, 1].
type TurnOutcome struct {
	Score01    float64 `json:"score01"`
	Semantic01 float64 `json:"semantic01,omitempty"`
	ToolsUsed  []Tool  `json:"tools_used,omitempty"`
}

type matcher struct {
	outcome TurnOutcome
	matched bool
}

func (m *matcher) VisitAlways(Always)                  { m.matched = true }
func (m *matcher) VisitTurnScoreBelow(c TurnScoreBelow) { m.matched = m.outcome.Score01 < c.Threshold }
func (m *matcher) VisitTurnScoreAtLeast(c TurnScoreAtLeast) {
	m.matched = m.outcome.Score01 >= c.Threshold
}
func (m *matcher) VisitSemanticBelow(c SemanticBelow) {
	m.matched = m.outcome.Semantic01 < c.Threshold
}
func (m *matcher) VisitRequiredToolNotUsed(c RequiredToolNotUsed) {
	m.matched = !slices.Contains(m.outcome.ToolsUsed, c.Tool)
}
func (m *matcher) VisitRequiredToolUsed(c RequiredToolUsed) {
	m.matched = slices.Contains(m.outcome.ToolsUsed, c.Tool)
}

// Matches reports whether outcome satisfies c.
func Matches(c BranchCondition, outcome TurnOutcome) bool {
	m := &matcher{outcome: outcome}
	c.Accept(m)
	return m.matched
}

// #endregion outcome

// #region walker
// Step records one advance of a walk. Next is empty when the walk ended.
type Step struct {
	TurnID  string      `json:"turn_id"`
	Outcome TurnOutcome `json:"outcome"`
	Next    string      `json:"next,omitempty"`
}

// Walker moves through a validated scenario one turn at a time.
type Walker struct {
	scenario LevelScenario
	turns    map[string]ScenarioTurn
	current  string
	steps    []Step
	maxSteps int
	done     bool
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) WalkerOption {
	return func(w *Walker) { w.maxSteps = n }
}

// NewWalker starts a walk at the entry turn. Scenarios with validation
// errors are refused with ErrInvalidScenario.
func NewWalker(s LevelScenario, opts ...WalkerOption) (*Walker, error) {
	if errs := Validate(s); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScenario, strings.Join(errs, "; "))
	}
	w := &Walker{
		scenario: s,
		turns:    make(map[string]ScenarioTurn, len(s.Turns)),
		current:  s.EntryTurnID,
		maxSteps: DefaultMaxSteps,
	}
	for _, t := range s.Turns {
		w.turns[t.ID] = t
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Current returns the turn awaiting an outcome.
func (w *Walker) Current() ScenarioTurn {
	return w.turns[w.current]
}

// Done reports whether the walk reached an exit turn.
func (w *Walker) Done() bool {
	return w.done
}

// Steps returns a copy of the recorded steps.
func (w *Walker) Steps() []Step {
	return append([]Step(nil), w.steps...)
}

// Advance records outcome for the current turn and follows the first
// transition, in declaration order, whose condition matches. On an exit turn
// the outcome is recorded and the walk ends. On error the walk is unchanged.
func (w *Walker) Advance(outcome TurnOutcome) (ScenarioTurn, error) {
	if w.done {
		return ScenarioTurn{}, ErrWalkFinished
	}
	if len(w.steps) >= w.maxSteps {
		return ScenarioTurn{}, fmt.Errorf("%w: %d steps in %s", ErrStepLimit, len(w.steps), w.scenario.ID)
	}

	turn := w.turns[w.current]
	if turn.IsExit() {
		w.steps = append(w.steps, Step{TurnID: turn.ID, Outcome: outcome})
		w.done = true
		return turn, nil
	}

	for _, tr := range turn.Transitions {
		if Matches(tr.When, outcome) {
			w.steps = append(w.steps, Step{TurnID: turn.ID, Outcome: outcome, Next: tr.ToTurnID})
			w.current = tr.ToTurnID
			return w.turns[w.current], nil
		}
	}
	return ScenarioTurn{}, fmt.Errorf("%w: turn %q in %s", ErrNoTransition, turn.ID, w.scenario.ID)
}

// #endregion walker
