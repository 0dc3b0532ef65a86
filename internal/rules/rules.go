package rules

import (
	"regexp"
	"strings"
	"unicode"
)

// #region patterns
// Scenario tuning depends on these exact patterns.
var (
	greetingPattern = regexp.MustCompile(`(?i)\b(hi|hello|hey)\b`)
	helpPattern     = regexp.MustCompile(`(?i)\b(help|assist|support)\b`)
	friendlyPattern = regexp.MustCompile(`(?i)\b(thanks|glad|happy|great|good)\b`)
)

const (
	englishRatio   = 0.9
	unfriendlySoft = 0.7
)

// #endregion patterns

// #region predicates

// IsGreeting reports whether text contains a greeting word.
func IsGreeting(text string) bool {
	return greetingPattern.MatchString(text)
}

// OffersHelp reports whether text contains a help-offering word.
func OffersHelp(text string) bool {
	return helpPattern.MatchString(text)
}

// HasFriendlyTone reports a positive-affect cue or an exclamation mark.
func HasFriendlyTone(text string) bool {
	return friendlyPattern.MatchString(text) || strings.Contains(text, "!")
}

// LooksEnglish reports whether at least 90% of the non-whitespace
// characters are ASCII letters, digits or basic punctuation. Text with no
// visible characters is not English.
func LooksEnglish(text string) bool {
	var total, ascii int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isBasicASCII(r) {
			ascii++
		}
	}
	if total == 0 {
		return false
	}
	return float64(ascii)/float64(total) >= englishRatio
}

func isBasicASCII(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(".,!?'\"`-", r)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// #endregion predicates

// #region evaluate

// Evaluate runs every rule check against answer. userPrompt decides whether
// the greeting checks are triggered. user may be nil.
func Evaluate(answer, userPrompt string, system SystemRules, user *UserRules) Report {
	var metrics []Metric
	words := WordCount(answer)

	english := binary(MetricEnglish, system.EnglishOnly, func() bool { return LooksEnglish(answer) })
	metrics = append(metrics, english)

	maxWords := binary(MetricMaxWords, system.MaxWords != nil, func() bool { return words <= *system.MaxWords })
	metrics = append(metrics, maxWords)

	userGreeted := IsGreeting(userPrompt)
	greeting := system.Greeting
	if greeting == nil {
		greeting = &GreetingRules{}
	}
	greetBack := binary(MetricGreetBack, userGreeted && greeting.GreetBack, func() bool { return IsGreeting(answer) })
	metrics = append(metrics, greetBack)
	offerHelp := binary(MetricOfferHelp, userGreeted && greeting.OfferHelp, func() bool { return OffersHelp(answer) })
	metrics = append(metrics, offerHelp)

	friendly := Metric{Name: MetricFriendlyTone, Value: unfriendlySoft, Applied: true}
	if HasFriendlyTone(answer) {
		friendly.Value = 1
		friendly.Pass = true
	}
	metrics = append(metrics, friendly)

	var exact Metric
	if user != nil && user.ExactWordCount != nil {
		target := *user.ExactWordCount
		exact = binary(MetricExactWordCount, true, func() bool { return words == target })
	} else {
		exact = binary(MetricExactWordCount, false, nil)
	}
	metrics = append(metrics, exact)

	behaviour := (greetBack.Value + offerHelp.Value) / 2

	return Report{
		Metrics: metrics,
		System:  (english.Value + maxWords.Value + behaviour) / 3,
		Rules:   exact.Value,
		Style:   friendly.Value,
	}
}

// binary builds a 0/1 metric. A rule that is not applied scores 1.
func binary(name string, applied bool, check func() bool) Metric {
	if !applied {
		return Metric{Name: name, Value: 1, Pass: true}
	}
	if check() {
		return Metric{Name: name, Value: 1, Pass: true, Applied: true}
	}
	return Metric{Name: name, Value: 0, Applied: true}
}

// #endregion evaluate
