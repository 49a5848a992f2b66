package exam

import "github.com/mind-engage/examgrader/internal/grading"

// Test is a generated set of questions. Dynamic questions carry the label
// computed when the test was generated.
type Test struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Owner     string             `json:"owner,omitempty"`
	Questions []grading.Question `json:"questions"`
	CreatedAt int64              `json:"created_at,omitempty"`
}

// Question returns the question with the given id.
func (t Test) Question(id string) (grading.Question, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return grading.Question{}, false
}

// StudentView drops everything that reveals an answer.
func (t Test) StudentView() Test {
	out := t
	out.Questions = make([]grading.Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Expected = nil
		q.ValidResponses = nil
		q.Program = ""
		out.Questions[i] = q
	}
	return out
}

// Submission is a graded answer. A user has at most one per question; a
// new answer replaces the previous one.
type Submission struct {
	ID         string   `json:"id"`
	TestID     string   `json:"test_id"`
	QuestionID string   `json:"question_id"`
	UserID     string   `json:"user_id"`
	Answer     string   `json:"answer"`
	Score      int      `json:"score"`
	Feedback   []string `json:"feedback"`
	CreatedAt  int64    `json:"created_at"`
}

// QuestionResult pairs a question with the caller's graded answer, if any.
type QuestionResult struct {
	QuestionID string      `json:"question_id"`
	Topic      string      `json:"topic"`
	Prompt     string      `json:"question"`
	Correct    string      `json:"correct_answer"`
	Submission *Submission `json:"submission,omitempty"`
}

// Results summarises a test. Average is over answered questions; Total is
// the sum of scores.
type Results struct {
	TestID    string           `json:"test_id"`
	Title     string           `json:"title"`
	UserID    string           `json:"user_id,omitempty"`
	Questions []QuestionResult `json:"questions"`
	Answered  int              `json:"answered"`
	Average   float64          `json:"average"`
	Total     int              `json:"total"`
}
