// Package report renders graded submissions as a spreadsheet.
package report

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mind-engage/examgrader/internal/exam"
)

const (
	SheetResults = "Results"
	SheetSummary = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var resultHeaders = []string{"Question ID", "Topic", "Question", "User", "Answer", "Score", "Feedback", "Answered At"}

// Key is the blob key a report for testID is stored under.
func Key(testID string, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s.xlsx", testID, at.UTC().Format("20060102T150405Z"))
}

// WriteResults builds a workbook with one row per submission and a summary
// per user followed by the overall totals.
func WriteResults(t exam.Test, subs []exam.Submission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, SheetResults, 1, toAny(resultHeaders)); err != nil {
		return nil, err
	}

	questions := make(map[string]int, len(t.Questions))
	for i, q := range t.Questions {
		questions[q.ID] = i
	}
	rows := slices.Clone(subs)
	slices.SortStableFunc(rows, func(a, b exam.Submission) int {
		if c := strings.Compare(a.UserID, b.UserID); c != 0 {
			return c
		}
		return questions[a.QuestionID] - questions[b.QuestionID]
	})

	for i, s := range rows {
		var topic, prompt string
		if qi, ok := questions[s.QuestionID]; ok {
			topic, prompt = t.Questions[qi].Topic, t.Questions[qi].Prompt
		}
		answered := time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339)
		row := []any{s.QuestionID, topic, prompt, s.UserID, s.Answer, s.Score, strings.Join(s.Feedback, "\n"), answered}
		if err := writeRow(f, SheetResults, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeSummary(f, t, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type tally struct {
	answered int
	total    int
}

func (t tally) average() float64 {
	if t.answered == 0 {
		return 0
	}
	return float64(t.total) / float64(t.answered)
}

func writeSummary(f *excelize.File, t exam.Test, subs []exam.Submission) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	header := [][]any{
		{"Test", t.ID},
		{"Title", t.Title},
		{"Questions", len(t.Questions)},
		{},
		{"User", "Answered", "Average", "Total Points"},
	}
	for i, r := range header {
		if err := writeRow(f, SheetSummary, i+1, r); err != nil {
			return err
		}
	}

	var users []string
	per := map[string]tally{}
	var all tally
	for _, s := range subs {
		if _, ok := per[s.UserID]; !ok {
			users = append(users, s.UserID)
		}
		u := per[s.UserID]
		u.answered++
		u.total += s.Score
		per[s.UserID] = u
		all.answered++
		all.total += s.Score
	}

	row := len(header) + 1
	for _, u := range users {
		tl := per[u]
		if err := writeRow(f, SheetSummary, row, []any{u, tl.answered, tl.average(), tl.total}); err != nil {
			return err
		}
		row++
	}
	return writeRow(f, SheetSummary, row, []any{"All", all.answered, all.average(), all.total})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ReadRows returns the cell text of a sheet, for previews and tests.
func ReadRows(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(sheet)
}
