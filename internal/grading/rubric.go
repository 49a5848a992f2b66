package grading

import "fmt"

// Criterion is one scored check of an archetype rubric.
type Criterion struct {
	Key       string
	MaxPoints int
	Awarded   int
	Note      string
}

// Rubric accumulates criteria in the order they were checked.
type Rubric struct {
	Criteria []Criterion
}

func (r *Rubric) Add(key string, maxPoints, awarded int, note string) {
	r.Criteria = append(r.Criteria, Criterion{Key: key, MaxPoints: maxPoints, Awarded: awarded, Note: note})
}

// Total sums awarded points, each clamped to its criterion's range, and
// clamps the sum to [0,100].
func (r Rubric) Total() int {
	total := 0
	for _, c := range r.Criteria {
		total += max(0, min(c.MaxPoints, c.Awarded))
	}
	return clamp(total)
}

// Result renders the rubric with summary first and one line per criterion.
func (r Rubric) Result(summary func(score int) string) Result {
	score := r.Total()
	fb := make([]string, 0, len(r.Criteria)+1)
	fb = append(fb, summary(score))
	for _, c := range r.Criteria {
		fb = append(fb, c.Note)
	}
	return result(score, fb...)
}

// tier maps keyword hits to points: two or more earn full, one earns half.
func tier(hits, full int) int {
	switch {
	case hits >= 2:
		return full
	case hits == 1:
		return full / 2
	default:
		return 0
	}
}

func summarize(score int) string {
	switch {
	case score == 100:
		return "Correct: all criteria met."
	case score > 0:
		return fmt.Sprintf("Partially correct (%d/100).", score)
	default:
		return "Incorrect."
	}
}
