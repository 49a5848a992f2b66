package exam

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// ListOpts filters ListSubmissions. Empty fields do not filter.
type ListOpts struct {
	UserID     string
	QuestionID string
}

type Store interface {
	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error)      // student-safe (no answers)
	GetTestAdmin(ctx context.Context, id string) (Test, error) // full test, for grading and teachers
	SaveSubmission(ctx context.Context, s Submission) (Submission, error)
	ListSubmissions(ctx context.Context, testID string, opts ListOpts) ([]Submission, error)
}
