package gameplay

import "github.com/danielpatrickdp/chatpls/internal/rules"

// DemoGreetingScenario returns the built-in greeting scenario.
func DemoGreetingScenario() ScenarioConfig {
	maxWords := 12
	return ScenarioConfig{
		ID: "demo-greeting-001",
		SystemPrompt: "You are ChatPLS.\n" +
			"Rules:\n" +
			"1) English only.\n" +
			"2) Keep answers to 12 words max.\n" +
			"3) Be friendly.\n" +
			"4) If greeted, greet back and offer help.",
		SystemRules: rules.SystemRules{
			EnglishOnly: true,
			MaxWords:    &maxWords,
			Greeting:    &rules.GreetingRules{GreetBack: true, OfferHelp: true},
		},
		UserPrompt:      "hey how are you?",
		BenchmarkAnswer: "Hey! I am doing well, thanks. How can I help today?",
	}
}
