package levels

import (
	"fmt"
	"math"
	"strings"
)

// #region threshold-check
type thresholdChecker struct {
	scenarioID string
	turnID     string
	errs       []string
}

func (c *thresholdChecker) check(kind string, x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 || x > 1 {
		c.errs = append(c.errs, fmt.Sprintf("Scenario %q turn %q: Invalid threshold \"%v\" for %q",
			c.scenarioID, c.turnID, x, kind))
	}
}

func (c *thresholdChecker) VisitAlways(Always) {}
func (c *thresholdChecker) VisitTurnScoreBelow(x TurnScoreBelow) {
	c.check(KindTurnScoreBelow, x.Threshold)
}
func (c *thresholdChecker) VisitTurnScoreAtLeast(x TurnScoreAtLeast) {
	c.check(KindTurnScoreAtLeast, x.Threshold)
}
func (c *thresholdChecker) VisitSemanticBelow(x SemanticBelow) {
	c.check(KindSemanticBelow, x.Threshold)
}
func (c *thresholdChecker) VisitRequiredToolNotUsed(RequiredToolNotUsed) {}
func (c *thresholdChecker) VisitRequiredToolUsed(RequiredToolUsed)       {}

// #endregion threshold-check

// #region validate
// Validate checks the structural invariants of a scenario graph and returns
// every violation found, in a stable order. It never modifies the scenario.
// An empty result means the scenario is valid.
func Validate(s LevelScenario) []string {
	var errs []string
	seen := make(map[string]bool, len(s.Turns))

	for _, turn := range s.Turns {
		if strings.TrimSpace(turn.ID) == "" {
			errs = append(errs, fmt.Sprintf("Scenario %q has a turn with empty id", s.ID))
		}
		if seen[turn.ID] {
			errs = append(errs, fmt.Sprintf("Scenario %q has duplicate turn id %q", s.ID, turn.ID))
		}
		seen[turn.ID] = true

		if strings.TrimSpace(turn.Prompt) == "" {
			errs = append(errs, fmt.Sprintf("Scenario %q turn %q has empty prompt", s.ID, turn.ID))
		}
		if turn.Terminal && len(turn.Transitions) > 0 {
			errs = append(errs, fmt.Sprintf("Scenario %q turn %q cannot be terminal and have transitions", s.ID, turn.ID))
		}

		checker := &thresholdChecker{scenarioID: s.ID, turnID: turn.ID}
		for _, tr := range turn.Transitions {
			if tr.When == nil {
				errs = append(errs, fmt.Sprintf("Scenario %q turn %q has transition to %q without a condition", s.ID, turn.ID, tr.ToTurnID))
				continue
			}
			tr.When.Accept(checker)
		}
		errs = append(errs, checker.errs...)
	}

	if !seen[s.EntryTurnID] {
		errs = append(errs, fmt.Sprintf("Scenario %q entryTurnId %q does not exist", s.ID, s.EntryTurnID))
	}

	for _, turn := range s.Turns {
		for _, tr := range turn.Transitions {
			if !seen[tr.ToTurnID] {
				errs = append(errs, fmt.Sprintf("Scenario %q turn %q has transition to unknown turn %q", s.ID, turn.ID, tr.ToTurnID))
			}
		}
	}

	exits := 0
	for _, turn := range s.Turns {
		if turn.IsExit() {
			exits++
		}
	}
	if exits == 0 {
		errs = append(errs, fmt.Sprintf("Scenario %q has no terminal turn", s.ID))
	}

	return errs
}

// ValidateAll validates every scenario and additionally reports duplicate
// scenario ids.
func ValidateAll(scenarios []LevelScenario) []string {
	var errs []string
	ids := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		if ids[s.ID] {
			errs = append(errs, fmt.Sprintf("Duplicate scenario id %q", s.ID))
		}
		ids[s.ID] = true
		errs = append(errs, Validate(s)...)
	}
	return errs
}

// #endregion validate
