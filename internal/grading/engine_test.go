package grading

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dynamic(label string) Question {
	return Question{ID: "dyn", Type: TypeDynamicAlgo, Expected: &Expected{Label: label}}
}

func TestDynamicVectorLabelRoutesToVector(t *testing.T) {
	score, fb := Evaluate(dynamic("[0, 3, 1, 2]"), "My solution is [0, 3, 1, 2]")
	assert.Equal(t, 100, score)
	assert.Equal(t, "Exact vector.", fb[0])

	score, fb = Evaluate(dynamic("[0, 3, 1, 2]"), "[0, 3]")
	assert.Equal(t, 0, score)
	assert.Contains(t, fb[0], "Length mismatch")
}

func TestDynamicAssignmentLabel(t *testing.T) {
	score, fb := Evaluate(dynamic("WA=red, NT=green"), "wa=red nt=blue")
	assert.Equal(t, 50, score)
	assert.Len(t, fb, 3)
}

func TestDynamicLabelUsesAliases(t *testing.T) {
	score, _ := Evaluate(dynamic("Hill Climbing"), "escalada")
	assert.Equal(t, 100, score)

	q := dynamic("winner: Warnsdorff variant")
	q.Expected.CanonicalID = "hill climbing"
	score, _ = Evaluate(q, "local search")
	assert.Equal(t, 100, score)
}

func TestDynamicExplicitKindWins(t *testing.T) {
	q := dynamic("[x=1]")
	q.Expected.Kind = KindAssignment
	score, fb := Evaluate(q, "X=1")
	assert.Equal(t, 100, score)
	assert.Equal(t, "Correct assignment.", fb[0])
}

func TestDynamicSimulationError(t *testing.T) {
	for _, q := range []Question{
		dynamic(""),
		dynamic("Error: compilation failed"),
		dynamic("runtime ERROR"),
		{ID: "dyn", Type: TypeDynamicAlgo},
	} {
		score, fb := Evaluate(q, "[0, 3, 1, 2]")
		assert.Equal(t, 0, score)
		assert.Equal(t, []string{"Simulation error: the reference answer could not be computed."}, fb)
	}
}

func TestValidResponsesRouting(t *testing.T) {
	vec := Question{ID: "q1", Type: "nqueens", ValidResponses: []Reference{{Text: "[1, 3, 0, 2]", MaxScore: 100}, {Text: "[2, 0, 3, 1]", MaxScore: 100}}}
	score, _ := Evaluate(vec, "[1, 3, 0, 2]")
	assert.Equal(t, 100, score)
	// structural paths only use the first entry
	score, _ = Evaluate(vec, "[2, 0, 3, 1]")
	assert.Equal(t, 0, score)

	asg := Question{ID: "q2", Type: "map", ValidResponses: []Reference{{Text: "SA=blue, WA=red"}}}
	score, _ = Evaluate(asg, "sa=blue, wa=green")
	assert.Equal(t, 50, score)

	plain := Question{ID: "q3", Type: "concept", ValidResponses: []Reference{
		{Text: "alpha beta pruning", MaxScore: 100},
		{Text: "pruning", MaxScore: 60},
	}}
	score, _ = Evaluate(plain, "Alpha-Beta pruning")
	assert.Equal(t, 100, score)
}

func TestStructuredRouting(t *testing.T) {
	tests := []struct {
		name   string
		q      Question
		answer string
		want   int
	}{
		{"search", Question{Type: TypeSearch, Expected: &Expected{Kind: KindSearch, Strategy: "A*"}}, "A* with an admissible heuristic, prune and backtrack", 100},
		{"game theory", Question{Type: TypeGameTheory, Expected: &Expected{Kind: KindGameTheory, Exists: true, Equilibrium: "(U, L)"}}, "yes (U, L)", 70},
		{"csp", Question{Type: TypeCSP, Expected: &Expected{Kind: KindCSP, Assignment: "A=1, B=2"}}, "a=1, b=2 by constraint propagation", 100},
		{"minimax", Question{Type: TypeMinimax, Expected: &Expected{Kind: KindMinimax, RootValue: 5, VisitedLeaves: 6}}, "6 leaves, root 5", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, fb := Evaluate(tt.q, tt.answer)
			assert.Equal(t, tt.want, score)
			assert.NotEmpty(t, fb)
		})
	}
}

func TestNotEvaluable(t *testing.T) {
	for _, q := range []Question{
		{ID: "empty"},
		{Type: TypeSearch},
		{Type: TypeSearch, Expected: &Expected{Kind: KindSearch}},
		{Type: TypeGameTheory, Expected: &Expected{Kind: KindGameTheory, Exists: true}},
		{Type: TypeCSP, Expected: &Expected{Kind: KindCSP}},
		{Type: "other", Expected: &Expected{Kind: "mystery", Label: "x"}},
	} {
		score, fb := Evaluate(q, "anything")
		assert.Equal(t, 0, score)
		require.Len(t, fb, 1)
		assert.Contains(t, fb[0], "Not evaluable")
	}
}

func TestEvaluateIsPureAndBounded(t *testing.T) {
	questions := []Question{
		dynamic("[0, 3, 1, 2]"),
		dynamic("X=1, Y=2"),
		dynamic("BFS"),
		{Type: TypeSearch, Expected: &Expected{Kind: KindSearch, Strategy: "dfs"}},
		{Type: TypeGameTheory, Expected: &Expected{Kind: KindGameTheory}},
		{Type: TypeCSP, Expected: &Expected{Kind: KindCSP, Assignment: "X=1"}},
		{Type: TypeMinimax, Expected: &Expected{Kind: KindMinimax, RootValue: 1, VisitedLeaves: 1}},
		{Type: "generic", ValidResponses: []Reference{{Text: "anything", MaxScore: 250}}},
	}
	answers := []string{"", "   ", "[0, 3, 1, 2]", "x=1 y=2", "BFS", "兵法 🚀 ∑", "yes no sí 1 1 1", "anything"}
	for _, q := range questions {
		for _, a := range answers {
			s1, f1 := Evaluate(q, a)
			s2, f2 := Evaluate(q, a)
			assert.Equal(t, s1, s2)
			assert.Equal(t, f1, f2)
			assert.GreaterOrEqual(t, s1, 0)
			assert.LessOrEqual(t, s1, 100)
			assert.NotEmpty(t, f1)
		}
	}
}

func TestGraderOptions(t *testing.T) {
	g := NewDefaultGrader(WithSimilarity(fixedSimilarity(54)))
	q := Question{Type: "generic", ValidResponses: []Reference{{Text: "minimax", MaxScore: 100}}}
	assert.Equal(t, 0, g.Grade(context.Background(), q, "min-max").Score)

	g = NewDefaultGrader(WithSimilarity(fixedSimilarity(54)), WithAcceptThreshold(50))
	assert.Equal(t, 54, g.Grade(context.Background(), q, "min-max").Score)

	g = NewDefaultGrader(WithAliases(AliasTable{"ucs": {"uniform cost"}}))
	assert.Equal(t, 100, g.Grade(context.Background(), dynamic("UCS"), "uniform cost").Score)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindVector, Classify("  [1, 2]"))
	assert.Equal(t, KindAssignment, Classify("A=1"))
	assert.Equal(t, KindVector, Classify("[a=1]"))
	assert.Equal(t, KindLabel, Classify("hill climbing"))
}
