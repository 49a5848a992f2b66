package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examgrader/internal/exam"
	"github.com/mind-engage/examgrader/internal/grading"
)

func findRow(rows [][]string, first string) []string {
	for _, r := range rows {
		if len(r) > 0 && r[0] == first {
			return r
		}
	}
	return nil
}

func TestWriteResults(t *testing.T) {
	tt := exam.Test{
		ID:    "t1",
		Title: "Midterm",
		Questions: []grading.Question{
			{ID: "q1", Topic: "search", Prompt: "Best strategy?"},
			{ID: "q2", Topic: "csp", Prompt: "Queens?"},
		},
	}
	subs := []exam.Submission{
		{ID: "s3", QuestionID: "q2", UserID: "luis", Answer: "[1,3,0,2]", Score: 100, Feedback: []string{"Exact vector."}, CreatedAt: 30},
		{ID: "s2", QuestionID: "q2", UserID: "ana", Answer: "[0,0,0,0]", Score: 0, Feedback: []string{"No position matches.", "✗ Position 1: expected 1, got 0"}, CreatedAt: 20},
		{ID: "s1", QuestionID: "q1", UserID: "ana", Answer: "A*", Score: 60, Feedback: []string{"Partially correct (60/100)."}, CreatedAt: 10},
	}

	data, err := WriteResults(tt, subs)
	require.NoError(t, err)

	rows, err := ReadRows(data, SheetResults)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, []string{"q1", "search", "Best strategy?", "ana", "A*", "60", "Partially correct (60/100).", "1970-01-01T00:00:10Z"}, rows[1])
	assert.Equal(t, "q2", rows[2][0])
	assert.Equal(t, "No position matches.\n✗ Position 1: expected 1, got 0", rows[2][6])
	assert.Equal(t, "luis", rows[3][3])

	summary, err := ReadRows(data, SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Midterm"}, findRow(summary, "Title"))
	assert.Equal(t, []string{"ana", "2", "30", "60"}, findRow(summary, "ana"))
	assert.Equal(t, []string{"luis", "1", "100", "100"}, findRow(summary, "luis"))
	all := findRow(summary, "All")
	require.Len(t, all, 4)
	assert.Equal(t, "3", all[1])
	assert.Contains(t, all[2], "53.33")
	assert.Equal(t, "160", all[3])
}

func TestWriteResultsEmpty(t *testing.T) {
	data, err := WriteResults(exam.Test{ID: "t2", Title: "Empty"}, nil)
	require.NoError(t, err)

	rows, err := ReadRows(data, SheetResults)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	summary, err := ReadRows(data, SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "0", "0", "0"}, findRow(summary, "All"))
}

func TestKey(t *testing.T) {
	at := time.Date(2025, 5, 2, 14, 3, 4, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "reports/t1/20250502T120304Z.xlsx", Key("t1", at))
}
