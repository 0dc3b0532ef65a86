package levels

import (
	"math"
	"reflect"
	"testing"
)

func TestRegistryIsValid(t *testing.T) {
	if errs := ValidateAll(Registry()); len(errs) != 0 {
		t.Fatalf("registry has errors: %v", errs)
	}
}

func TestRegistryHasBranchingScenario(t *testing.T) {
	for _, s := range Registry() {
		for _, turn := range s.Turns {
			if len(turn.Transitions) > 1 {
				return
			}
		}
	}
	t.Fatal("expected at least one turn with more than one transition")
}

func TestByID(t *testing.T) {
	s, ok := ByID("abc-definition-branching-001")
	if !ok || s.EntryTurnID != "t1_open_question" {
		t.Fatalf("ByID = %+v, %v", s.ID, ok)
	}
	if _, ok := ByID("nope"); ok {
		t.Fatal("unknown id should not resolve")
	}

	// registry values must not alias
	s.Turns[0].Prompt = "changed"
	again, _ := ByID("abc-definition-branching-001")
	if again.Turns[0].Prompt == "changed" {
		t.Fatal("ByID returned shared state")
	}
}

func TestValidateDuplicateTurnAndUnknownTarget(t *testing.T) {
	s := ABCDefinitionBranching()
	s.Turns = append(s.Turns, ScenarioTurn{ID: "t3_final_answer", Prompt: "again", Terminal: true})
	s.Turns[1].Transitions[0].ToTurnID = "t9_missing"

	want := []string{
		`Scenario "abc-definition-branching-001" has duplicate turn id "t3_final_answer"`,
		`Scenario "abc-definition-branching-001" turn "t2_user_pushback" has transition to unknown turn "t9_missing"`,
	}
	if got := Validate(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestValidateOrder(t *testing.T) {
	s := LevelScenario{
		ID:          "bad",
		EntryTurnID: "missing",
		Turns: []ScenarioTurn{
			{
				ID:     "",
				Prompt: " ",
			},
			{
				ID:       "loop",
				Prompt:   "p",
				Terminal: true,
				Transitions: []Transition{
					{ToTurnID: "loop", When: TurnScoreBelow{Threshold: math.NaN()}},
					{ToTurnID: "ghost", When: TurnScoreAtLeast{Threshold: -0.1}},
					{ToTurnID: "loop", When: RequiredToolNotUsed{Tool: ToolCalculator}},
				},
			},
		},
	}

	want := []string{
		`Scenario "bad" has a turn with empty id`,
		`Scenario "bad" turn "" has empty prompt`,
		`Scenario "bad" turn "loop" cannot be terminal and have transitions`,
		`Scenario "bad" turn "loop": Invalid threshold "NaN" for "turn_score_below"`,
		`Scenario "bad" turn "loop": Invalid threshold "-0.1" for "turn_score_at_least"`,
		`Scenario "bad" entryTurnId "missing" does not exist`,
		`Scenario "bad" turn "loop" has transition to unknown turn "ghost"`,
	}
	got := Validate(s)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestValidateNoExit(t *testing.T) {
	s := LevelScenario{
		ID:          "cycle",
		EntryTurnID: "a",
		Turns: []ScenarioTurn{
			{ID: "a", Prompt: "a", Transitions: []Transition{{ToTurnID: "b", When: Always{}}}},
			{ID: "b", Prompt: "b", Transitions: []Transition{{ToTurnID: "a", When: Always{}}}},
		},
	}
	got := Validate(s)
	if len(got) != 1 || got[0] != `Scenario "cycle" has no terminal turn` {
		t.Fatalf("got %q", got)
	}
}

func TestValidateThresholdBounds(t *testing.T) {
	tests := []struct {
		threshold float64
		valid     bool
	}{
		{0, true},
		{1, true},
		{0.5, true},
		{-0.0001, false},
		{1.0001, false},
		{math.Inf(1), false},
		{math.NaN(), false},
	}
	for _, tt := range tests {
		s := LevelScenario{
			ID:          "th",
			EntryTurnID: "a",
			Turns: []ScenarioTurn{
				{ID: "a", Prompt: "a", Transitions: []Transition{{ToTurnID: "b", When: SemanticBelow{Threshold: tt.threshold}}}},
				{ID: "b", Prompt: "b", Terminal: true},
			},
		}
		if got := len(Validate(s)) == 0; got != tt.valid {
			t.Errorf("threshold %v: valid=%v, want %v", tt.threshold, got, tt.valid)
		}
	}
}

func TestValidateDoesNotModify(t *testing.T) {
	s := ABCDefinitionBranching()
	s.Turns[0].ID = ""
	before := ABCDefinitionBranching()
	before.Turns[0].ID = ""

	Validate(s)
	if !reflect.DeepEqual(s, before) {
		t.Fatal("Validate modified its input")
	}
}

func TestValidateAllDuplicateIDs(t *testing.T) {
	errs := ValidateAll([]LevelScenario{ABCDefinitionBranching(), ABCDefinitionBranching()})
	if len(errs) != 1 || errs[0] != `Duplicate scenario id "abc-definition-branching-001"` {
		t.Fatalf("got %q", errs)
	}
}
