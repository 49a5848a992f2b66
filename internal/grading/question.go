package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Question types understood by the dispatcher. Anything else is graded
// through ValidResponses when present.
const (
	TypeSearch      = "search"
	TypeGameTheory  = "game_theory"
	TypeCSP         = "csp"
	TypeMinimax     = "minimax"
	TypeDynamicAlgo = "dynamic_algo"
)

// Kind tags the shape of an expected answer.
type Kind string

const (
	KindLabel      Kind = "label"
	KindVector     Kind = "vector"
	KindAssignment Kind = "assignment"
	KindSearch     Kind = "search"
	KindGameTheory Kind = "game_theory"
	KindCSP        Kind = "csp"
	KindMinimax    Kind = "minimax"
)

// Expected is the reference answer of a question. Only the fields that
// belong to Kind are meaningful.
type Expected struct {
	Kind Kind `json:"kind,omitempty"`

	// label, vector and assignment shapes
	Label       string `json:"label,omitempty"`
	CanonicalID string `json:"canonical_id,omitempty"` // alias table key, set at generation time

	// fixed-format archetypes
	Strategy      string `json:"strategy,omitempty"`
	Exists        bool   `json:"exists,omitempty"`
	Equilibrium   string `json:"equilibrium,omitempty"`
	Assignment    string `json:"assignment,omitempty"`
	RootValue     int    `json:"root_value,omitempty"`
	VisitedLeaves int    `json:"visited_leaves,omitempty"`
}

// Reference is one acceptable answer text and the most it can be worth.
// A score of 0 marks a distractor that earns nothing.
type Reference struct {
	Text     string `json:"text"`
	MaxScore int    `json:"score"`
}

// UnmarshalJSON defaults an absent score to 100.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text     string `json:"text"`
		MaxScore *int   `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Text = raw.Text
	r.MaxScore = 100
	if raw.MaxScore != nil {
		r.MaxScore = *raw.MaxScore
	}
	return nil
}

func (r Reference) max() int {
	return max(r.MaxScore, 0)
}

// Question is the grading view of an exam question.
type Question struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty,omitempty"`
	Prompt     string `json:"question"`

	// Program names the external program that computes the expected label
	// of a dynamic question. The engine never runs it.
	Program string `json:"program,omitempty"`

	Expected       *Expected   `json:"expected,omitempty"`
	ValidResponses []Reference `json:"valid_responses,omitempty"`
}

// CanonicalAnswer is the text shown to a learner as the correct answer.
func (q Question) CanonicalAnswer() string {
	if len(q.ValidResponses) > 0 {
		return q.ValidResponses[0].Text
	}
	e := q.Expected
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindSearch:
		return e.Strategy
	case KindGameTheory:
		if !e.Exists {
			return "no equilibrium"
		}
		return e.Equilibrium
	case KindCSP:
		return e.Assignment
	case KindMinimax:
		return fmt.Sprintf("root=%d, visited leaves=%d", e.RootValue, e.VisitedLeaves)
	default:
		return e.Label
	}
}

// Classify sniffs the shape of a reference string: a leading bracket is a
// vector, an equals sign an assignment, anything else a plain label.
// It exists for data that was authored before answers carried a Kind.
func Classify(ref string) Kind {
	s := strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(s, "["):
		return KindVector
	case strings.Contains(s, "="):
		return KindAssignment
	default:
		return KindLabel
	}
}

// Result is the outcome of grading one answer.
type Result struct {
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

func result(score int, feedback ...string) Result {
	if len(feedback) == 0 {
		feedback = []string{"no feedback"}
	}
	return Result{Score: clamp(score), Feedback: feedback}
}

func clamp(score int) int {
	return max(0, min(100, score))
}
