package gameplay

import "github.com/danielpatrickdp/chatpls/internal/scoring"

// LeftPanel summarises progress.
type LeftPanel struct {
	ScenarioID     string `json:"scenario_id,omitempty"`
	Phase          Phase  `json:"phase"`
	CompletedCount int    `json:"completed_count"`
}

// MainPanel shows the prompts and the latest transcript.
type MainPanel struct {
	ScenarioID   string            `json:"scenario_id,omitempty"`
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Transcript   []TranscriptEntry `json:"transcript"`
}

// RightPanel shows scores and responder statuses.
type RightPanel struct {
	LatestScore     *float64               `json:"latest_score"`
	ComponentScores scoring.ScoreVector    `json:"component_scores"`
	ModelStatuses   map[string]ModelStatus `json:"model_statuses"`
}

// Views bundles the three panels.
type Views struct {
	Left  LeftPanel  `json:"left"`
	Main  MainPanel  `json:"main"`
	Right RightPanel `json:"right"`
}

// DeriveViews computes every panel from a snapshot.
func DeriveViews(s Snapshot) Views {
	return Views{
		Left:  DeriveLeftPanel(s),
		Main:  DeriveMainPanel(s),
		Right: DeriveRightPanel(s),
	}
}

// DeriveLeftPanel counts every recorded result, including failed rounds.
func DeriveLeftPanel(s Snapshot) LeftPanel {
	p := LeftPanel{Phase: s.Phase, CompletedCount: len(s.History)}
	if s.Scenario != nil {
		p.ScenarioID = s.Scenario.ID
	}
	return p
}

// DeriveMainPanel falls back to the scenario prompts when no round has
// been scored yet.
func DeriveMainPanel(s Snapshot) MainPanel {
	p := MainPanel{Transcript: []TranscriptEntry{}}
	if s.Scenario != nil {
		p.ScenarioID = s.Scenario.ID
		p.SystemPrompt = s.Scenario.SystemPrompt
		p.UserPrompt = s.Scenario.UserPrompt
	}
	switch {
	case s.LatestResult != nil:
		p.Transcript = append([]TranscriptEntry(nil), s.LatestResult.Transcript...)
	case s.Scenario != nil:
		p.Transcript = []TranscriptEntry{
			{Role: RoleSystem, Content: s.Scenario.SystemPrompt},
			{Role: RoleUser, Content: s.Scenario.UserPrompt},
		}
	}
	return p
}

// DeriveRightPanel reports a nil score until a round completes.
func DeriveRightPanel(s Snapshot) RightPanel {
	p := RightPanel{
		ComponentScores: scoring.MakeScoreVector(0),
		ModelStatuses:   make(map[string]ModelStatus, len(s.ModelStatuses)),
	}
	if s.LatestResult != nil {
		score := s.LatestResult.Score
		p.LatestScore = &score
		p.ComponentScores = s.LatestResult.ComponentScores
	}
	for id, st := range s.ModelStatuses {
		p.ModelStatuses[id] = st
	}
	return p
}
