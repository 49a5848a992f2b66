package grading

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
)

var (
	searchKeywords        = []string{"constraint", "prune", "backtrack", "systematic", "valid"}
	justificationKeywords = []string{"deviate", "improve", "incentive", "desviar", "mejorar", "incentivo"}
	cspProcessKeywords    = []string{"forward checking", "domain", "reduce", "constraint"}

	// Stance phrases are matched on folded text. Longer phrases come first
	// so "no existe" wins over "existe" at the same position. Bare negations
	// only decide when no existence phrase is present: "no player has an
	// incentive" says nothing about existence.
	negativeStance = []string{"there is no", "there are no", "does not exist", "doesn't exist", "no existe", "no hay"}
	positiveStance = []string{"there is", "there are", "exists", "existe", "hay", "yes", "si"}
	bareNegation   = []string{"ninguno", "ninguna", "none", "no"}
	stanceRe       = stanceRegexp(negativeStance, positiveStance)
	bareNegationRe = stanceRegexp(bareNegation)
)

func stanceRegexp(sets ...[]string) *regexp.Regexp {
	var all []string
	for _, s := range sets {
		all = append(all, s...)
	}
	slices.SortStableFunc(all, func(a, b string) int { return len(b) - len(a) })
	quoted := make([]string, len(all))
	for i, p := range all {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}

// keywordHits counts how many distinct keywords occur in normalized text.
func keywordHits(text string, keywords []string) ([]string, int) {
	var found []string
	for _, k := range keywords {
		if strings.Contains(text, k) {
			found = append(found, k)
		}
	}
	return found, len(found)
}

func hitsNote(label string, found []string, points, full int) string {
	if len(found) == 0 {
		return fmt.Sprintf("✗ %s: no keywords found (0/%d).", label, full)
	}
	return fmt.Sprintf("%s %s: %s (%d/%d).", mark(points == full), label, strings.Join(found, ", "), points, full)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func noAnswer(what string) Result {
	return result(0, "✗ No answer given.", fmt.Sprintf("✗ Expected %s.", what))
}

func evaluateSearch(answer string, e *Expected) Result {
	if strings.TrimSpace(answer) == "" {
		return noAnswer("the strategy name and a justification")
	}
	text := Normalize(answer)
	var r Rubric

	strategy := Normalize(e.Strategy)
	if strategy != "" && strings.Contains(text, strategy) {
		r.Add("strategy", 60, 60, fmt.Sprintf("✓ Strategy %q identified (60/60).", e.Strategy))
	} else {
		r.Add("strategy", 60, 0, fmt.Sprintf("✗ Expected strategy %q not mentioned (0/60).", e.Strategy))
	}

	found, hits := keywordHits(text, searchKeywords)
	pts := tier(hits, 40)
	r.Add("justification", 40, pts, hitsNote("Justification keywords", found, pts, 40))
	return r.Result(summarize)
}

// stance reports whether text affirms (true) or denies (false) existence,
// judged by the first existence phrase it contains, else by a bare negation.
func stance(text string) (affirms, ok bool) {
	folded := Fold(text)
	if m := stanceRe.FindString(folded); m != "" {
		return !slices.Contains(negativeStance, m), true
	}
	if bareNegationRe.MatchString(folded) {
		return false, true
	}
	return false, false
}

func evaluateGameTheory(answer string, e *Expected) Result {
	if strings.TrimSpace(answer) == "" {
		return noAnswer("whether an equilibrium exists and why")
	}
	var r Rubric

	affirms, ok := stance(answer)
	existenceOK := ok && affirms == e.Exists
	switch {
	case existenceOK:
		r.Add("existence", 40, 40, "✓ Existence of equilibrium correctly stated (40/40).")
	case !ok:
		r.Add("existence", 40, 0, "✗ The answer does not say whether an equilibrium exists (0/40).")
	default:
		r.Add("existence", 40, 0, fmt.Sprintf("✗ Existence stated incorrectly, expected %s (0/40).", yesNo(e.Exists)))
	}

	switch {
	case e.Exists:
		want := stripPunct(e.Equilibrium)
		if want != "" && strings.Contains(stripPunct(answer), want) {
			r.Add("equilibrium", 30, 30, fmt.Sprintf("✓ Equilibrium %s identified (30/30).", e.Equilibrium))
		} else {
			r.Add("equilibrium", 30, 0, fmt.Sprintf("✗ Expected equilibrium %s not found (0/30).", e.Equilibrium))
		}
	case existenceOK:
		r.Add("equilibrium", 30, 30, "✓ No equilibrium to name (30/30).")
	default:
		r.Add("equilibrium", 30, 0, "✗ No equilibrium exists (0/30).")
	}

	found, hits := keywordHits(Fold(answer), justificationKeywords)
	pts := tier(hits, 30)
	r.Add("justification", 30, pts, hitsNote("Justification keywords", found, pts, 30))
	return r.Result(summarize)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func evaluateCSP(answer string, e *Expected) Result {
	want := assignmentPairs(letterDigitRe, e.Assignment)
	if len(want) == 0 {
		return result(0, "Not evaluable: the expected assignment has no X=digit pairs.")
	}
	if strings.TrimSpace(answer) == "" {
		return noAnswer("an assignment such as X=1, Y=2")
	}
	got := map[string]string{}
	for _, p := range assignmentPairs(letterDigitRe, answer) {
		got[p.key] = p.value
	}

	var r Rubric
	correct := 0
	var lines []string
	for _, p := range want {
		name := strings.ToUpper(p.key)
		v, ok := got[p.key]
		switch {
		case !ok:
			lines = append(lines, fmt.Sprintf("✗ %s: expected %s, missing", name, p.value))
		case v == p.value:
			correct++
			lines = append(lines, fmt.Sprintf("✓ %s=%s", name, v))
		default:
			lines = append(lines, fmt.Sprintf("✗ %s: expected %s, got %s", name, p.value, v))
		}
	}
	pts := int(math.Floor(float64(correct) / float64(len(want)) * 70))
	r.Add("assignment", 70, pts, fmt.Sprintf("%s Assignment: %d/%d variables correct (%d/70).", mark(pts == 70), correct, len(want), pts))
	for _, l := range lines {
		r.Add("", 0, 0, l)
	}

	found, hits := keywordHits(Normalize(answer), cspProcessKeywords)
	if hits > 0 {
		r.Add("process", 30, 30, fmt.Sprintf("✓ Process described: %s (30/30).", strings.Join(found, ", ")))
	} else {
		r.Add("process", 30, 0, "✗ No solving process described (0/30).")
	}
	return r.Result(summarize)
}

func evaluateMinimax(answer string, e *Expected) Result {
	if strings.TrimSpace(answer) == "" {
		return noAnswer("the root value and the number of visited leaves")
	}
	nums := ExtractIntegers(answer)
	var r Rubric
	if slices.Contains(nums, e.RootValue) {
		r.Add("root_value", 50, 50, fmt.Sprintf("✓ Root value %d found (50/50).", e.RootValue))
	} else {
		r.Add("root_value", 50, 0, fmt.Sprintf("✗ Expected root value %d not found (0/50).", e.RootValue))
	}
	if slices.Contains(nums, e.VisitedLeaves) {
		r.Add("visited_leaves", 50, 50, fmt.Sprintf("✓ Visited leaves %d found (50/50).", e.VisitedLeaves))
	} else {
		r.Add("visited_leaves", 50, 0, fmt.Sprintf("✗ Expected %d visited leaves, not found (0/50).", e.VisitedLeaves))
	}
	return r.Result(summarize)
}
