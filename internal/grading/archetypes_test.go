package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateSearch(t *testing.T) {
	e := &Expected{Kind: KindSearch, Strategy: "Backtracking"}
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"strategy and keywords", "Use backtracking: assign values systematically and prune invalid branches when a constraint fails", 100},
		{"strategy one keyword", "I would use backtracking", 80},
		{"keywords only", "Prune whenever a constraint is violated", 40},
		{"nothing", "Use BFS", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evaluateSearch(tt.answer, e)
			assert.Equal(t, tt.want, res.Score)
			assert.Len(t, res.Feedback, 3)
		})
	}
}

func TestEvaluateGameTheory(t *testing.T) {
	exists := &Expected{Kind: KindGameTheory, Exists: true, Equilibrium: "(D, D)"}
	none := &Expected{Kind: KindGameTheory, Exists: false}

	tests := []struct {
		name   string
		e      *Expected
		answer string
		want   int
	}{
		{"full english", exists, "Yes, (D,D) is a Nash equilibrium: no player has an incentive to deviate.", 100},
		{"full spanish", exists, "Sí, existe (d, d); ningún jugador tiene incentivo para desviarse.", 100},
		{"equilibrium without justification", exists, "Yes: (D, D).", 70},
		{"correct denial", none, "No existe equilibrio en estrategias puras.", 70},
		{"denial with justification", none, "There is no equilibrium, a player can always improve if he chooses to deviate.", 100},
		{"no stance", exists, "(D, D)", 30},
		{"leading negation in the justification", exists, "No player has an incentive to deviate from (D, D), so a Nash equilibrium exists there.", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evaluateGameTheory(tt.answer, tt.e)
			assert.Equal(t, tt.want, res.Score)
			assert.Len(t, res.Feedback, 4)
		})
	}
}

func TestEvaluateGameTheoryExistenceMismatchCapsScore(t *testing.T) {
	e := &Expected{Kind: KindGameTheory, Exists: true, Equilibrium: "(D, D)"}
	answers := []string{
		"No, there is no equilibrium; (D, D) fails because players improve when they deviate with an incentive.",
		"No.",
		"None: desviar siempre permite mejorar.",
	}
	for _, a := range answers {
		res := evaluateGameTheory(a, e)
		assert.LessOrEqual(t, res.Score, 60, a)
		assert.Contains(t, res.Feedback[1], "✗", a)
	}
}

func TestStance(t *testing.T) {
	tests := []struct {
		text    string
		affirms bool
		ok      bool
	}{
		{"Yes, there is no incentive to deviate", true, true},
		{"No existe", false, true},
		{"there is no equilibrium", false, true},
		{"There is one equilibrium", true, true},
		{"Sí", true, true},
		{"No player has an incentive to deviate from (D, D), so a Nash equilibrium exists there.", true, true},
		{"No hay equilibrio, none of the profiles is stable", false, true},
		{"None: every profile lets a player improve", false, true},
		{"No.", false, true},
		{"(C, C)", false, false},
		{"Nash knows best", false, false},
	}
	for _, tt := range tests {
		affirms, ok := stance(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.affirms, affirms, tt.text)
	}
}

func TestEvaluateCSP(t *testing.T) {
	e := &Expected{Kind: KindCSP, Assignment: "X=1, Y=2, Z=3"}

	res := evaluateCSP("x=1, y=2, z=1 found with forward checking", e)
	assert.Equal(t, 76, res.Score)
	require.Len(t, res.Feedback, 6)
	assert.Equal(t, "✗ Assignment: 2/3 variables correct (46/70).", res.Feedback[1])
	assert.Equal(t, "✓ X=1", res.Feedback[2])
	assert.Equal(t, "✗ Z: expected 3, got 1", res.Feedback[4])

	res = evaluateCSP("X = 1, Y = 2, Z = 3", e)
	assert.Equal(t, 70, res.Score)

	res = evaluateCSP("reduce each domain until consistent, X=1", e)
	assert.Equal(t, 53, res.Score)
	assert.Equal(t, "✗ Y: expected 2, missing", res.Feedback[3])
}

func TestEvaluateCSPMalformedExpected(t *testing.T) {
	res := evaluateCSP("x=1", &Expected{Kind: KindCSP, Assignment: "WA=red"})
	assert.Equal(t, 0, res.Score)
	assert.Contains(t, res.Feedback[0], "Not evaluable")
}

func TestEvaluateMinimax(t *testing.T) {
	e := &Expected{Kind: KindMinimax, RootValue: 3, VisitedLeaves: 7}
	tests := []struct {
		answer string
		want   int
	}{
		{"The root value is 3 and 7 leaves are visited", 100},
		{"7 leaves visited, root=3", 100},
		{"root 3, I visited 8 leaves", 50},
		{"root 4 and 5 leaves", 0},
		{"no idea", 0},
	}
	for _, tt := range tests {
		res := evaluateMinimax(tt.answer, e)
		assert.Equal(t, tt.want, res.Score, tt.answer)
		assert.Len(t, res.Feedback, 3)
	}
}

func TestEvaluateMinimaxNegativeRoot(t *testing.T) {
	e := &Expected{Kind: KindMinimax, RootValue: -2, VisitedLeaves: 5}
	assert.Equal(t, 100, evaluateMinimax("root -2 after 5 leaves", e).Score)
	assert.Equal(t, 50, evaluateMinimax("root 2 after 5 leaves", e).Score)
}

func TestArchetypesEmptyAnswer(t *testing.T) {
	evals := map[string]func() Result{
		"search":  func() Result { return evaluateSearch("", &Expected{Strategy: "dfs"}) },
		"game":    func() Result { return evaluateGameTheory(" ", &Expected{Exists: true, Equilibrium: "(A, A)"}) },
		"csp":     func() Result { return evaluateCSP("", &Expected{Assignment: "X=1"}) },
		"minimax": func() Result { return evaluateMinimax("\n", &Expected{RootValue: 1, VisitedLeaves: 2}) },
	}
	for name, eval := range evals {
		res := eval()
		assert.Equal(t, 0, res.Score, name)
		assert.Equal(t, "✗ No answer given.", res.Feedback[0], name)
	}
}
