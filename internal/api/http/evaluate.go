package http

import (
	"fmt"
	"net/http"

	"github.com/mind-engage/examgrader/internal/bank"
	"github.com/mind-engage/examgrader/internal/exam"
	"github.com/mind-engage/examgrader/internal/grading"
)

type evaluateReq struct {
	QuestionID string       `json:"question_id,omitempty"` // a bank question
	Question   *bank.Record `json:"question,omitempty"`    // or an inline one
	Answer     string       `json:"answer"`
}

// POST /evaluate
// Grades one answer without storing anything.
func EvaluateHandler(b *bank.Bank, g grading.Grader, resolver exam.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateReq
		if !decode(w, r, &req) {
			return
		}

		var q grading.Question
		switch {
		case req.Question != nil:
			if err := bank.Validate(*req.Question); err != nil {
				writeError(w, err)
				return
			}
			q, _ = bank.Convert(*req.Question)
		case req.QuestionID != "":
			var ok bool
			if q, ok = b.Get(req.QuestionID); !ok {
				writeError(w, fmt.Errorf("question %s: %w", req.QuestionID, exam.ErrNotFound))
				return
			}
		default:
			http.Error(w, "question or question_id required", http.StatusBadRequest)
			return
		}

		if q.Type == grading.TypeDynamicAlgo && q.Expected == nil && resolver != nil {
			resolved, err := resolver.Resolve(r.Context(), []grading.Question{q})
			if err != nil {
				writeError(w, err)
				return
			}
			q = resolved[0]
		}

		res := g.Grade(r.Context(), q, req.Answer)
		writeJSON(w, http.StatusOK, map[string]any{
			"question_id":    q.ID,
			"score":          res.Score,
			"feedback":       res.Feedback,
			"correct_answer": q.CanonicalAnswer(),
		})
	}
}
