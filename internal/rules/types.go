package rules

// #region rule-config
// GreetingRules configures how an answer to a greeting is judged.
type GreetingRules struct {
	GreetBack bool `json:"greet_back,omitempty" yaml:"greet_back,omitempty"`
	OfferHelp bool `json:"offer_help,omitempty" yaml:"offer_help,omitempty"`
}

// SystemRules are constraints imposed by the system operator.
type SystemRules struct {
	EnglishOnly bool           `json:"english_only,omitempty" yaml:"english_only,omitempty"`
	MaxWords    *int           `json:"max_words,omitempty" yaml:"max_words,omitempty"`
	Greeting    *GreetingRules `json:"greeting,omitempty" yaml:"greeting,omitempty"`
}

// UserRules are constraints imposed by the end user in the prompt.
type UserRules struct {
	ExactWordCount *int `json:"exact_word_count,omitempty" yaml:"exact_word_count,omitempty"`
}

// #endregion rule-config

// #region metric
// Metric captures a single rule check.
type Metric struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Pass    bool    `json:"pass"`
	Applied bool    `json:"applied"` // false when the rule was not configured or not triggered
}

// #endregion metric

// #region report
// Report is the outcome of every rule check for one answer, plus the three
// aggregates that feed the score vector.
type Report struct {
	Metrics []Metric `json:"metrics"`

	System float64 `json:"system"` // mean of english, max words, greeting behaviour
	Rules  float64 `json:"rules"`  // user-imposed constraints
	Style  float64 `json:"style"`  // friendly tone, soft
}

// Metric returns the named metric, if present.
func (r Report) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Failed lists the names of applied checks that did not pass.
func (r Report) Failed() []string {
	var out []string
	for _, m := range r.Metrics {
		if m.Applied && !m.Pass {
			out = append(out, m.Name)
		}
	}
	return out
}

// #endregion report

// Metric names.
const (
	MetricEnglish        = "english_only"
	MetricMaxWords       = "max_words"
	MetricGreetBack      = "greet_back"
	MetricOfferHelp      = "offer_help"
	MetricFriendlyTone   = "friendly_tone"
	MetricExactWordCount = "exact_word_count"
)
