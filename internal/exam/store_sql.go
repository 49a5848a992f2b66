package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SQLStore persists tests and submissions in the schema created by db.Open.
// Placeholders are $N, which both modernc sqlite and pgx accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,title,owner,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, owner=EXCLUDED.owner, questions_json=EXCLUDED.questions_json`,
		t.ID, t.Title, t.Owner, string(qj), t.CreatedAt)
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	t, err := s.GetTestAdmin(ctx, id)
	if err != nil {
		return Test{}, err
	}
	return t.StudentView(), nil
}

func (s *SQLStore) GetTestAdmin(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,owner,questions_json,created_at FROM tests WHERE id=$1`, id)
	var t Test
	var qjson string
	if err := row.Scan(&t.ID, &t.Title, &t.Owner, &qjson, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Test{}, fmt.Errorf("test %s: decode questions: %w", id, err)
	}
	return t, nil
}

func (s *SQLStore) exists(ctx context.Context, testID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tests WHERE id=$1`, testID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("test %s: %w", testID, ErrNotFound)
	}
	return err
}

// SaveSubmission replaces any earlier answer by the same user to the same
// question, keeping the first submission id.
func (s *SQLStore) SaveSubmission(ctx context.Context, sub Submission) (Submission, error) {
	if err := s.exists(ctx, sub.TestID); err != nil {
		return Submission{}, err
	}
	fb, err := json.Marshal(sub.Feedback)
	if err != nil {
		return Submission{}, err
	}
	row := s.db.QueryRowContext(ctx, `INSERT INTO submissions (id,test_id,question_id,user_id,answer,score,feedback_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (test_id,question_id,user_id) DO UPDATE SET
		  answer=EXCLUDED.answer, score=EXCLUDED.score, feedback_json=EXCLUDED.feedback_json, created_at=EXCLUDED.created_at
		RETURNING id`,
		sub.ID, sub.TestID, sub.QuestionID, sub.UserID, sub.Answer, sub.Score, string(fb), sub.CreatedAt)
	if err := row.Scan(&sub.ID); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *SQLStore) ListSubmissions(ctx context.Context, testID string, opts ListOpts) ([]Submission, error) {
	if err := s.exists(ctx, testID); err != nil {
		return nil, err
	}
	where := []string{"test_id=$1"}
	args := []any{testID}
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if opts.QuestionID != "" {
		args = append(args, opts.QuestionID)
		where = append(where, fmt.Sprintf("question_id=$%d", len(args)))
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,test_id,question_id,user_id,answer,score,feedback_json,created_at
		FROM submissions WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		var fb string
		if err := rows.Scan(&sub.ID, &sub.TestID, &sub.QuestionID, &sub.UserID, &sub.Answer, &sub.Score, &fb, &sub.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fb), &sub.Feedback); err != nil {
			sub.Feedback = nil
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
