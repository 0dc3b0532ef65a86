package gameplay

import "testing"

func TestDeriveViewsEmpty(t *testing.T) {
	v := DeriveViews(Snapshot{Phase: PhaseIdle})

	if v.Left.ScenarioID != "" || v.Left.CompletedCount != 0 || v.Left.Phase != PhaseIdle {
		t.Errorf("left = %+v", v.Left)
	}
	if v.Main.Transcript == nil || len(v.Main.Transcript) != 0 {
		t.Errorf("main transcript should be empty, got %+v", v.Main.Transcript)
	}
	if v.Right.LatestScore != nil {
		t.Errorf("latest score should be nil, got %v", *v.Right.LatestScore)
	}
}

func TestDeriveMainPanelFallsBackToPrompts(t *testing.T) {
	sc := DemoGreetingScenario()
	p := DeriveMainPanel(Snapshot{Phase: PhaseReady, Scenario: &sc})

	if len(p.Transcript) != 2 {
		t.Fatalf("transcript = %+v, want system and user entries", p.Transcript)
	}
	if p.Transcript[0].Role != RoleSystem || p.Transcript[0].Content != sc.SystemPrompt {
		t.Errorf("first entry = %+v", p.Transcript[0])
	}
	if p.Transcript[1].Role != RoleUser || p.Transcript[1].Content != sc.UserPrompt {
		t.Errorf("second entry = %+v", p.Transcript[1])
	}
}

func TestDeriveViewsWithResult(t *testing.T) {
	sc := DemoGreetingScenario()
	res := RunResult{
		Score:     81.5,
		EndState:  EndStateCompleted,
		EndReason: EndReasonAnswered,
		Transcript: []TranscriptEntry{
			{Role: RoleSystem, Content: sc.SystemPrompt},
			{Role: RoleUser, Content: sc.UserPrompt},
			{Role: RoleAssistant, Content: "Hi! How can I help?"},
		},
	}
	snap := Snapshot{
		Phase:         PhaseScenarioComplete,
		Scenario:      &sc,
		LatestResult:  &res,
		History:       []RunResult{res, res},
		ModelStatuses: map[string]ModelStatus{"you": {State: ModelDone, LatencyMs: 40}},
	}

	v := DeriveViews(snap)
	if v.Left.CompletedCount != 2 {
		t.Errorf("completed = %d, want 2", v.Left.CompletedCount)
	}
	if len(v.Main.Transcript) != 3 {
		t.Errorf("transcript = %d entries, want 3", len(v.Main.Transcript))
	}
	if v.Right.LatestScore == nil || *v.Right.LatestScore != 81.5 {
		t.Errorf("latest score = %v", v.Right.LatestScore)
	}
	if v.Right.ModelStatuses["you"].LatencyMs != 40 {
		t.Errorf("statuses = %+v", v.Right.ModelStatuses)
	}

	v.Right.ModelStatuses["you"] = ModelStatus{}
	if snap.ModelStatuses["you"].State != ModelDone {
		t.Error("view must not alias snapshot maps")
	}
}
