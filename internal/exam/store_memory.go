package exam

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type memoryStore struct {
	mu          sync.RWMutex
	tests       map[string]Test
	submissions map[string][]Submission // testID -> submissions in answer order
}

func NewInMemoryStore() Store {
	return &memoryStore{
		tests:       map[string]Test{},
		submissions: map[string][]Submission{},
	}
}

func (m *memoryStore) PutTest(_ context.Context, t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetTest(ctx context.Context, id string) (Test, error) {
	t, err := m.GetTestAdmin(ctx, id)
	if err != nil {
		return Test{}, err
	}
	return t.StudentView(), nil
}

func (m *memoryStore) GetTestAdmin(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	t.Questions = slices.Clone(t.Questions)
	return t, nil
}

func (m *memoryStore) SaveSubmission(_ context.Context, s Submission) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[s.TestID]; !ok {
		return Submission{}, fmt.Errorf("test %s: %w", s.TestID, ErrNotFound)
	}
	s.Feedback = slices.Clone(s.Feedback)
	subs := m.submissions[s.TestID]
	for i, old := range subs {
		if old.QuestionID == s.QuestionID && old.UserID == s.UserID {
			s.ID = old.ID
			subs = slices.Delete(subs, i, i+1)
			break
		}
	}
	m.submissions[s.TestID] = append(subs, s)
	return s, nil
}

func (m *memoryStore) ListSubmissions(_ context.Context, testID string, opts ListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.tests[testID]; !ok {
		return nil, fmt.Errorf("test %s: %w", testID, ErrNotFound)
	}
	var out []Submission
	for _, s := range m.submissions[testID] {
		if opts.UserID != "" && s.UserID != opts.UserID {
			continue
		}
		if opts.QuestionID != "" && s.QuestionID != opts.QuestionID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
