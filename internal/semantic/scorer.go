package semantic

import (
	"context"
	"regexp"
	"strings"
)

// #region fixed
// Fixed returns the same similarity for every pair. Useful in tests and
// fixture replay where the similarity is part of the recorded input.
type Fixed struct {
	Value float64
	Err   error
}

// Similarity implements gameplay.SemanticScorer.
func (f Fixed) Similarity(ctx context.Context, a, b string) (float64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Value, nil
}

// #endregion fixed

// #region lexical
var nonWord = regexp.MustCompile(`[^a-z0-9\s]`)

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(nonWord.ReplaceAllString(strings.ToLower(s), " ")) {
		out[tok] = struct{}{}
	}
	return out
}

// Lexical scores token overlap. The Jaccard index j of the two token sets is
// mapped to 2j-1 so it lands in the same [-1, 1] domain as cosine similarity.
// Two texts without tokens are identical.
type Lexical struct{}

// Similarity implements gameplay.SemanticScorer.
func (Lexical) Similarity(ctx context.Context, a, b string) (float64, error) {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1, nil
	}

	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter

	j := float64(inter) / float64(union)
	return j*2 - 1, nil
}

// #endregion lexical
