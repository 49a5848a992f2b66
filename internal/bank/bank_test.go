package bank

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examgrader/internal/grading"
)

func TestLoadSampleBank(t *testing.T) {
	b, err := LoadFile("../../data/questions.json")
	require.NoError(t, err)
	require.Len(t, b.Questions(), 11)

	q, ok := b.Get("nash_prisoners_1")
	require.True(t, ok)
	require.NotNil(t, q.Expected)
	assert.Equal(t, grading.KindGameTheory, q.Expected.Kind)
	assert.True(t, q.Expected.Exists)
	assert.Equal(t, "(Betray, Betray)", q.Expected.Equilibrium)

	q, _ = b.Get("nash_matching_pennies")
	assert.False(t, q.Expected.Exists)
	assert.Equal(t, "no equilibrium", q.CanonicalAnswer())

	q, _ = b.Get("minimax_tree_1")
	assert.Equal(t, grading.KindMinimax, q.Expected.Kind)
	assert.Equal(t, 3, q.Expected.RootValue)
	assert.Equal(t, 7, q.Expected.VisitedLeaves)

	q, _ = b.Get("dyn_queens_fc")
	assert.Nil(t, q.Expected)
	assert.Equal(t, "CSP_NQueens_4_FC", q.Program)

	q, _ = b.Get("concept_heuristic")
	require.Len(t, q.ValidResponses, 2)
	assert.Equal(t, 80, q.ValidResponses[1].MaxScore)

	q, _ = b.Get("concept_dfs_memory")
	assert.Equal(t, grading.KindLabel, q.Expected.Kind)
	assert.Equal(t, "dfs", q.Expected.CanonicalID)

	_, ok = b.Get("nope")
	assert.False(t, ok)
}

func TestConvertStringExpected(t *testing.T) {
	cases := []struct {
		raw  string
		kind grading.Kind
	}{
		{`"[1, 3, 0, 2]"`, grading.KindVector},
		{`"WA=Red, NT=Green"`, grading.KindAssignment},
		{`"Hill Climbing"`, grading.KindLabel},
	}
	for _, c := range cases {
		q, err := Convert(Record{ID: "x", Type: "concept", ExpectedAnswer: json.RawMessage(c.raw)})
		require.NoError(t, err, c.raw)
		assert.Equal(t, c.kind, q.Expected.Kind, c.raw)
	}
}

func TestConvertDynamicObject(t *testing.T) {
	q, err := Convert(Record{ID: "x", Type: grading.TypeDynamicAlgo, ExpectedAnswer: json.RawMessage(`{"strategy": "Backtracking"}`)})
	require.NoError(t, err)
	assert.Equal(t, grading.KindLabel, q.Expected.Kind)
	assert.Equal(t, "Backtracking", q.Expected.Label)
	assert.Equal(t, "backtracking", q.Expected.CanonicalID)
}

func TestConvertMissingStructuredFields(t *testing.T) {
	cases := map[string]Record{
		"strategy":       {Type: grading.TypeSearch, ExpectedAnswer: json.RawMessage(`{}`)},
		"exists":         {Type: grading.TypeGameTheory, ExpectedAnswer: json.RawMessage(`{"equilibrium": "(A, B)"}`)},
		"equilibrium":    {Type: grading.TypeGameTheory, ExpectedAnswer: json.RawMessage(`{"exists": true}`)},
		"assignment":     {Type: grading.TypeCSP, ExpectedAnswer: json.RawMessage(`{"strategy": "x"}`)},
		"root_value":     {Type: grading.TypeMinimax, ExpectedAnswer: json.RawMessage(`{"visited_leaves": 4}`)},
		"visited_leaves": {Type: grading.TypeMinimax, ExpectedAnswer: json.RawMessage(`{"root_value": 0}`)},
	}
	for field, rec := range cases {
		_, err := Convert(rec)
		require.Error(t, err, field)
		assert.ErrorIs(t, err, ErrInvalidQuestion, field)
		assert.Contains(t, err.Error(), field)
	}
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	cases := map[string]struct {
		body string
		rule string
	}{
		"bad difficulty": {
			`[{"id":"a","topic":"t","type":"search","difficulty":"trivial","question":"q","expected_answer":{"strategy":"BFS"}}]`,
			"difficulty (oneof)",
		},
		"missing question": {
			`[{"id":"a","topic":"t","type":"search","difficulty":"easy","expected_answer":{"strategy":"BFS"}}]`,
			"question (required)",
		},
		"both answer fields": {
			`[{"id":"a","topic":"t","type":"concept","difficulty":"easy","question":"q","expected_answer":"x","valid_responses":[{"text":"x"}]}]`,
			"valid_responses (excluded_with_expected_answer)",
		},
		"no answer": {
			`[{"id":"a","topic":"t","type":"concept","difficulty":"easy","question":"q"}]`,
			"expected_answer (required_without_valid_responses)",
		},
		"score out of range": {
			`[{"id":"a","topic":"t","type":"concept","difficulty":"easy","question":"q","valid_responses":[{"text":"x","score":120}]}]`,
			"score (lte)",
		},
		"duplicate id": {
			`[{"id":"a","topic":"t","type":"search","difficulty":"easy","question":"q","expected_answer":{"strategy":"BFS"}},
			  {"id":"a","topic":"t","type":"search","difficulty":"easy","question":"q","expected_answer":{"strategy":"DFS"}}]`,
			"id (unique)",
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(c.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuestion)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Error(), c.rule)
		})
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"id": "not an array"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidQuestion)
}

func TestValidate(t *testing.T) {
	rec := Record{ID: "a", Topic: "t", Type: grading.TypeDynamicAlgo, Difficulty: "hard", Question: "q"}
	assert.NoError(t, Validate(rec))

	rec.Type = grading.TypeMinimax
	assert.ErrorIs(t, Validate(rec), ErrInvalidQuestion)
}

func TestTopicsAndFilter(t *testing.T) {
	b, err := LoadFile("../../data/questions.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"adversarial", "csp", "game_theory", "search"}, b.Topics())

	csp := b.Filter([]string{"csp"}, nil)
	require.Len(t, csp, 3)
	for _, q := range csp {
		assert.Equal(t, "csp", q.Topic)
	}

	easySearch := b.Filter([]string{"search"}, []string{"easy"})
	ids := make([]string, 0, len(easySearch))
	for _, q := range easySearch {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"search_8puzzle_1", "concept_heuristic", "concept_dfs_memory"}, ids)

	assert.Len(t, b.Filter(nil, nil), 11)
	assert.Empty(t, b.Filter([]string{"nlp"}, nil))
}

func TestSample(t *testing.T) {
	b, err := LoadFile("../../data/questions.json")
	require.NoError(t, err)
	all := b.Questions()

	got := Sample(all, 4, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, got, 4)
	seen := map[string]bool{}
	for _, q := range got {
		assert.False(t, seen[q.ID], "duplicate %s", q.ID)
		seen[q.ID] = true
	}

	again := Sample(all, 4, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, got, again, "same seed, same draw")

	assert.Len(t, Sample(all, 50, nil), len(all))
	assert.Equal(t, all, b.Questions(), "input order is untouched")
}

func TestConvertKeepsZeroScoreResponses(t *testing.T) {
	zero := 0
	q, err := Convert(Record{ID: "x", Type: "concept", ValidResponses: []Response{
		{Text: "bubble sort", Score: &zero},
		{Text: "merge sort"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []grading.Reference{
		{Text: "bubble sort", MaxScore: 0},
		{Text: "merge sort", MaxScore: 100},
	}, q.ValidResponses)

	score, _ := grading.Evaluate(q, "bubble sort")
	assert.Less(t, score, 100)
}
