package levels

import "github.com/danielpatrickdp/chatpls/internal/scoring"

// ABCDefinitionBranching is the built-in branching scenario: the player must
// look up an ambiguous acronym and recover when the user pushes back.
func ABCDefinitionBranching() LevelScenario {
	search := []Tool{ToolSearchInternalSites}
	return LevelScenario{
		ID:          "abc-definition-branching-001",
		Title:       "ABC Definition With Pushback",
		Description: "Player must avoid guessing blindly, use internal search when needed, and recover after user challenge.",
		Tags:        []Tag{TagEasy, TagBusiness, TagToolRequired, TagMultiTurn, TagConsistencyTrap},
		SystemPrompt: "You are ChatPLS.\n" +
			"Rules:\n" +
			"1) Keep answers concise.\n" +
			"2) If acronym is ambiguous, do not guess blindly.\n" +
			"3) Use available tools when needed.\n" +
			"4) Stay calm and professional if challenged.\n" +
			"5) Do not invent citations.",
		ScoringPreset: scoring.PresetBalanced,
		EntryTurnID:   "t1_open_question",
		Turns: []ScenarioTurn{
			{
				ID:               "t1_open_question",
				Prompt:           "What does ABC mean in this company?",
				RequiredTools:    search,
				AllowedTools:     search,
				ExpectedBehavior: "Run internal search, acknowledge ambiguity if necessary, and ground response in retrieved snippets.",
				Transitions: []Transition{
					{ToTurnID: "t2_user_pushback", When: TurnScoreBelow{Threshold: 0.7}},
					{ToTurnID: "t2_user_confirmation", When: TurnScoreAtLeast{Threshold: 0.7}},
				},
			},
			{
				ID:               "t2_user_pushback",
				Prompt:           "That's wrong. Are you sure? Try again with actual evidence.",
				RequiredTools:    search,
				AllowedTools:     search,
				ExpectedBehavior: "De-escalate briefly, re-check evidence, and revise answer without becoming defensive.",
				Transitions:      []Transition{{ToTurnID: "t3_final_answer", When: Always{}}},
			},
			{
				ID:               "t2_user_confirmation",
				Prompt:           "Can you give the short final definition in one sentence?",
				ExpectedBehavior: "Provide one concise, grounded definition consistent with previous turn.",
				Transitions:      []Transition{{ToTurnID: "t3_final_answer", When: Always{}}},
			},
			{
				ID:               "t3_final_answer",
				Prompt:           "Final answer for the user.",
				ExpectedBehavior: "Single concise answer with confidence calibrated to evidence.",
				Terminal:         true,
			},
		},
	}
}

// Registry returns the built-in level scenarios. Each call returns fresh values.
func Registry() []LevelScenario {
	return []LevelScenario{ABCDefinitionBranching()}
}

// ByID looks up a built-in scenario.
func ByID(id string) (LevelScenario, bool) {
	for _, s := range Registry() {
		if s.ID == id {
			return s, true
		}
	}
	return LevelScenario{}, false
}
