package grading

import (
	"fmt"
	"math"
)

// DefaultAcceptThreshold is the lowest similarity a reference must reach
// before it can contribute to the score.
const DefaultAcceptThreshold = 55

// Scorer grades free text against a set of weighted references.
type Scorer struct {
	Threshold  int
	Similarity func(a, b string) int
}

// NewScorer returns a Scorer using TokenSetRatio and the default threshold.
func NewScorer() Scorer {
	return Scorer{Threshold: DefaultAcceptThreshold, Similarity: TokenSetRatio}
}

// Score keeps the best similarity/100*MaxScore among references that clear
// the threshold.
func (s Scorer) Score(answer string, refs []Reference) Result {
	sim := s.Similarity
	if sim == nil {
		sim = TokenSetRatio
	}
	clean := Normalize(answer)

	best := 0.0
	matched := ""
	for _, ref := range refs {
		target := Normalize(ref.Text)
		similarity := 100
		if clean != target {
			similarity = sim(clean, target)
		}
		if similarity < s.Threshold {
			continue
		}
		candidate := float64(similarity) / 100 * float64(ref.max())
		if candidate > best {
			best = candidate
			matched = ref.Text
		}
	}

	score := clamp(int(math.Round(best)))
	switch {
	case clean == "" && score == 0:
		return result(0, "✗ No answer given.")
	case score == 100:
		return result(score, "✓ Exact answer.")
	case score >= 50:
		return result(score, fmt.Sprintf("⚠ Correct with imprecision, matched against %q.", matched))
	default:
		return result(score, "✗ Incorrect.")
	}
}

// FuzzyScore grades answer against refs with the default Scorer.
func FuzzyScore(answer string, refs []Reference) Result {
	return NewScorer().Score(answer, refs)
}
