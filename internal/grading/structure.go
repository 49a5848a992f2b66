package grading

import (
	"fmt"
	"math"
	"strings"
)

// EvaluateVector compares the integer vector found in answer with the one
// in expected position by position.
func EvaluateVector(answer, expected string) Result {
	want := ExtractVector(expected)
	if len(want) == 0 {
		return FuzzyScore(answer, []Reference{{Text: expected, MaxScore: 100}})
	}
	got := ExtractVector(answer)
	if len(got) == 0 {
		return result(0, "✗ No vector detected in your answer. Use the format [1, 2, 3].")
	}
	if len(got) != len(want) {
		return result(0, fmt.Sprintf("✗ Length mismatch: expected %d elements, got %d.", len(want), len(got)))
	}

	matches := 0
	lines := make([]string, 0, len(want))
	for i, w := range want {
		if got[i] == w {
			matches++
			lines = append(lines, fmt.Sprintf("✓ Position %d: %s", i, got[i]))
		} else {
			lines = append(lines, fmt.Sprintf("✗ Position %d: expected %s, got %s", i, w, got[i]))
		}
	}

	score := ratioScore(matches, len(want))
	var summary string
	switch {
	case score == 100:
		summary = "Exact vector."
	case matches > 0:
		summary = fmt.Sprintf("Partially correct vector (%d/%d positions).", matches, len(want))
	default:
		summary = "No position matches."
	}
	return result(score, append([]string{summary}, lines...)...)
}

// EvaluateAssignment compares variable=value assignments in answer with
// those in expected. Variable names and values are case-insensitive.
func EvaluateAssignment(answer, expected string) Result {
	want := assignmentPairs(assignmentRe, expected)
	if len(want) == 0 {
		return FuzzyScore(answer, []Reference{{Text: expected, MaxScore: 100}})
	}
	got := ExtractAssignments(answer)
	if len(got) == 0 {
		return result(0, "✗ Format not recognized. Use Variable=Value (e.g. SA=red).")
	}

	matches := 0
	lines := make([]string, 0, len(want))
	for _, p := range want {
		name := strings.ToUpper(p.key)
		v, ok := got[p.key]
		switch {
		case !ok:
			lines = append(lines, fmt.Sprintf("✗ Missing variable %s", name))
		case strings.EqualFold(v, p.value):
			matches++
			lines = append(lines, fmt.Sprintf("✓ %s=%s", name, p.value))
		default:
			lines = append(lines, fmt.Sprintf("✗ %s: expected %q, got %q", name, p.value, v))
		}
	}

	score := ratioScore(matches, len(want))
	var summary string
	switch {
	case score == 100:
		summary = "Correct assignment."
	case matches > 0:
		summary = fmt.Sprintf("Partial assignment (%d/%d variables).", matches, len(want))
	default:
		summary = "Incorrect assignment."
	}
	return result(score, append([]string{summary}, lines...)...)
}

func ratioScore(n, total int) int {
	if total == 0 {
		return 0
	}
	return clamp(int(math.Round(100 * float64(n) / float64(total))))
}
