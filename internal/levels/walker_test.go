package levels

import (
	"errors"
	"testing"
)

func TestWalkerPushbackBranch(t *testing.T) {
	w, err := NewWalker(ABCDefinitionBranching())
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}
	if w.Current().ID != "t1_open_question" {
		t.Fatalf("start = %s", w.Current().ID)
	}

	next, err := w.Advance(TurnOutcome{Score01: 0.4, ToolsUsed: []Tool{ToolSearchInternalSites}})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if next.ID != "t2_user_pushback" {
		t.Fatalf("next = %s, want t2_user_pushback", next.ID)
	}

	next, err = w.Advance(TurnOutcome{Score01: 0.9})
	if err != nil || next.ID != "t3_final_answer" {
		t.Fatalf("next = %s, err = %v", next.ID, err)
	}

	if _, err := w.Advance(TurnOutcome{Score01: 1}); err != nil {
		t.Fatalf("final Advance: %v", err)
	}
	if !w.Done() {
		t.Fatal("walk should be done")
	}
	if _, err := w.Advance(TurnOutcome{}); !errors.Is(err, ErrWalkFinished) {
		t.Fatalf("expected ErrWalkFinished, got %v", err)
	}

	steps := w.Steps()
	if len(steps) != 3 || steps[2].Next != "" || steps[0].Next != "t2_user_pushback" {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestWalkerConfirmationBranchAtThreshold(t *testing.T) {
	w, _ := NewWalker(ABCDefinitionBranching())
	next, err := w.Advance(TurnOutcome{Score01: 0.7})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if next.ID != "t2_user_confirmation" {
		t.Fatalf("next = %s, want t2_user_confirmation", next.ID)
	}
}

func TestWalkerFirstMatchWins(t *testing.T) {
	s := LevelScenario{
		ID:          "order",
		EntryTurnID: "a",
		Turns: []ScenarioTurn{
			{ID: "a", Prompt: "a", Transitions: []Transition{
				{ToTurnID: "b", When: RequiredToolUsed{Tool: ToolCalculator}},
				{ToTurnID: "c", When: Always{}},
			}},
			{ID: "b", Prompt: "b", Terminal: true},
			{ID: "c", Prompt: "c", Terminal: true},
		},
	}

	w, _ := NewWalker(s)
	next, _ := w.Advance(TurnOutcome{ToolsUsed: []Tool{ToolCalculator}})
	if next.ID != "b" {
		t.Errorf("with tool: next = %s, want b", next.ID)
	}

	w, _ = NewWalker(s)
	next, _ = w.Advance(TurnOutcome{})
	if next.ID != "c" {
		t.Errorf("without tool: next = %s, want c", next.ID)
	}
}

func TestWalkerNoTransition(t *testing.T) {
	s := LevelScenario{
		ID:          "stuck",
		EntryTurnID: "a",
		Turns: []ScenarioTurn{
			{ID: "a", Prompt: "a", Transitions: []Transition{{ToTurnID: "b", When: SemanticBelow{Threshold: 0.2}}}},
			{ID: "b", Prompt: "b", Terminal: true},
		},
	}
	w, _ := NewWalker(s)
	if _, err := w.Advance(TurnOutcome{Semantic01: 0.9}); !errors.Is(err, ErrNoTransition) {
		t.Fatalf("expected ErrNoTransition, got %v", err)
	}
	if w.Current().ID != "a" || len(w.Steps()) != 0 {
		t.Fatal("failed advance must not change the walk")
	}
}

func TestWalkerStepLimit(t *testing.T) {
	s := LevelScenario{
		ID:          "loop",
		EntryTurnID: "a",
		Turns: []ScenarioTurn{
			{ID: "a", Prompt: "a", Transitions: []Transition{
				{ToTurnID: "a", When: RequiredToolNotUsed{Tool: ToolTranslator}},
				{ToTurnID: "z", When: Always{}},
			}},
			{ID: "z", Prompt: "z", Terminal: true},
		},
	}
	w, err := NewWalker(s, WithMaxSteps(3))
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := w.Advance(TurnOutcome{}); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if _, err := w.Advance(TurnOutcome{}); !errors.Is(err, ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
}

func TestNewWalkerRejectsInvalid(t *testing.T) {
	s := ABCDefinitionBranching()
	s.EntryTurnID = "nowhere"
	if _, err := NewWalker(s); !errors.Is(err, ErrInvalidScenario) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestMatches(t *testing.T) {
	o := TurnOutcome{Score01: 0.5, Semantic01: 0.3, ToolsUsed: []Tool{ToolFactLookup}}
	tests := []struct {
		cond BranchCondition
		want bool
	}{
		{Always{}, true},
		{TurnScoreBelow{Threshold: 0.5}, false},
		{TurnScoreBelow{Threshold: 0.6}, true},
		{TurnScoreAtLeast{Threshold: 0.5}, true},
		{SemanticBelow{Threshold: 0.3}, false},
		{SemanticBelow{Threshold: 0.31}, true},
		{RequiredToolUsed{Tool: ToolFactLookup}, true},
		{RequiredToolUsed{Tool: ToolCalculator}, false},
		{RequiredToolNotUsed{Tool: ToolCalculator}, true},
		{RequiredToolNotUsed{Tool: ToolFactLookup}, false},
	}
	for _, tt := range tests {
		if got := Matches(tt.cond, o); got != tt.want {
			t.Errorf("%s %+v: got %v, want %v", ConditionKind(tt.cond), tt.cond, got, tt.want)
		}
	}
}
