package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVector(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"brackets in prose", "The answer is [1, 3, 0, 2] I think", []string{"1", "3", "0", "2"}},
		{"brackets no commas", "[0 3 1 2]", []string{"0", "3", "1", "2"}},
		{"bare integers", "queens at 1 3 0 2", []string{"1", "3", "0", "2"}},
		{"too few bare integers", "row 2 column 3", nil},
		{"brackets win over prose numbers", "step 1: 5 6 7 then [9, 8]", []string{"9", "8"}},
		{"empty", "", nil},
		{"no digits", "I don't know", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVector(tt.in))
		})
	}
}

func TestExtractAssignments(t *testing.T) {
	got := ExtractAssignments("WA=Red, NT: green, sa = Blue, wa=blue")
	assert.Equal(t, map[string]string{"wa": "blue", "nt": "green", "sa": "blue"}, got)

	assert.Empty(t, ExtractAssignments("no pairs here"))
	assert.Empty(t, ExtractAssignments(""))
}

func TestAssignmentPairsKeepFirstAppearanceOrder(t *testing.T) {
	got := assignmentPairs(assignmentRe, "b=1 a=2 b=3")
	assert.Equal(t, []pair{{"b", "3"}, {"a", "2"}}, got)
}

func TestLetterDigitPairsIgnoreLongNames(t *testing.T) {
	got := assignmentPairs(letterDigitRe, "X=1, WA=2, y = 3, z=red")
	assert.Equal(t, []pair{{"x", "1"}, {"y", "3"}}, got)
}

func TestExtractIntegers(t *testing.T) {
	assert.Equal(t, []int{-2, 3, 5}, ExtractIntegers("root is -2, range 3-5"))
	assert.Equal(t, []int{7, 3}, ExtractIntegers("7 leaves, value 3"))
	assert.Empty(t, ExtractIntegers("no numbers"))
}
