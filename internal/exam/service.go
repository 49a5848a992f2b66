package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/examgrader/internal/bank"
	"github.com/mind-engage/examgrader/internal/grading"
	syncx "github.com/mind-engage/examgrader/internal/sync"
)

var (
	ErrNoQuestions    = errors.New("no questions match the requested topics and difficulties")
	ErrInvalidRequest = errors.New("invalid request")
)

// Resolver fills in computed answers before a test is stored.
type Resolver interface {
	Resolve(ctx context.Context, qs []grading.Question) ([]grading.Question, error)
}

// EventSink receives domain events. *syncx.EventRepo satisfies it.
type EventSink interface {
	AppendJSON(ctx context.Context, typ, key string, v any) error
}

type GenerateRequest struct {
	Title        string   `json:"title"`
	Topics       []string `json:"topics"`
	Difficulties []string `json:"difficulties"`
	Count        int      `json:"count"`
	Owner        string   `json:"-"`
}

// Service generates tests, grades answers and reports results.
type Service struct {
	store    Store
	bank     *bank.Bank
	grader   grading.Grader
	resolver Resolver
	events   EventSink
	log      *slog.Logger

	now  func() time.Time
	rand *rand.Rand
}

type ServiceOption func(*Service)

func WithResolver(r Resolver) ServiceOption        { return func(s *Service) { s.resolver = r } }
func WithEvents(e EventSink) ServiceOption         { return func(s *Service) { s.events = e } }
func WithLogger(l *slog.Logger) ServiceOption      { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }
func WithRand(r *rand.Rand) ServiceOption          { return func(s *Service) { s.rand = r } }

func NewService(store Store, b *bank.Bank, g grading.Grader, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		bank:   b,
		grader: g,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate draws questions from the bank, resolves dynamic ones and stores
// the test. Fewer questions than requested is not an error.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Test, error) {
	if req.Count <= 0 {
		return Test{}, fmt.Errorf("%w: count must be positive", ErrInvalidRequest)
	}
	pool := s.bank.Filter(req.Topics, req.Difficulties)
	if len(pool) == 0 {
		return Test{}, ErrNoQuestions
	}
	qs := bank.Sample(pool, req.Count, s.rand)
	if s.resolver != nil {
		var err error
		if qs, err = s.resolver.Resolve(ctx, qs); err != nil {
			return Test{}, fmt.Errorf("resolve questions: %w", err)
		}
	}

	t := Test{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Owner:     req.Owner,
		Questions: qs,
		CreatedAt: s.now().Unix(),
	}
	if t.Title == "" {
		t.Title = fmt.Sprintf("Test %s", s.now().Format("2006-01-02 15:04"))
	}
	if err := s.store.PutTest(ctx, t); err != nil {
		return Test{}, fmt.Errorf("store test: %w", err)
	}
	s.log.InfoContext(ctx, "test generated", "test", t.ID, "questions", len(qs), "requested", req.Count)
	return t, nil
}

// Answer grades text against one question and stores the result.
func (s *Service) Answer(ctx context.Context, testID, questionID, userID, text string) (Submission, error) {
	t, err := s.store.GetTestAdmin(ctx, testID)
	if err != nil {
		return Submission{}, err
	}
	q, ok := t.Question(questionID)
	if !ok {
		return Submission{}, fmt.Errorf("question %s in test %s: %w", questionID, testID, ErrNotFound)
	}

	res := s.grader.Grade(ctx, q, text)
	sub, err := s.store.SaveSubmission(ctx, Submission{
		ID:         uuid.NewString(),
		TestID:     testID,
		QuestionID: questionID,
		UserID:     userID,
		Answer:     text,
		Score:      res.Score,
		Feedback:   res.Feedback,
		CreatedAt:  s.now().Unix(),
	})
	if err != nil {
		return Submission{}, fmt.Errorf("save submission: %w", err)
	}

	if s.events != nil {
		ev := syncx.AnswerGraded{
			SubmissionID: sub.ID,
			TestID:       testID,
			QuestionID:   questionID,
			UserID:       userID,
			Score:        sub.Score,
		}
		if err := s.events.AppendJSON(ctx, syncx.TypeAnswerGraded, sub.ID, ev); err != nil {
			s.log.WarnContext(ctx, "event append failed", "submission", sub.ID, "err", err)
		}
	}
	s.log.DebugContext(ctx, "answer graded", "test", testID, "question", questionID, "user", userID, "score", sub.Score)
	return sub, nil
}

// Results lists every question of the test with userID's graded answer.
func (s *Service) Results(ctx context.Context, testID, userID string) (Results, error) {
	t, err := s.store.GetTestAdmin(ctx, testID)
	if err != nil {
		return Results{}, err
	}
	subs, err := s.store.ListSubmissions(ctx, testID, ListOpts{UserID: userID})
	if err != nil {
		return Results{}, err
	}
	byQuestion := make(map[string]Submission, len(subs))
	for _, sub := range subs {
		byQuestion[sub.QuestionID] = sub
	}

	r := Results{TestID: t.ID, Title: t.Title, UserID: userID}
	for _, q := range t.Questions {
		qr := QuestionResult{QuestionID: q.ID, Topic: q.Topic, Prompt: q.Prompt, Correct: q.CanonicalAnswer()}
		if sub, ok := byQuestion[q.ID]; ok {
			qr.Submission = &sub
			r.Answered++
			r.Total += sub.Score
		}
		r.Questions = append(r.Questions, qr)
	}
	if r.Answered > 0 {
		r.Average = float64(r.Total) / float64(r.Answered)
	}
	return r, nil
}

// Submissions returns every graded answer of a test, for reports.
func (s *Service) Submissions(ctx context.Context, testID string) (Test, []Submission, error) {
	t, err := s.store.GetTestAdmin(ctx, testID)
	if err != nil {
		return Test{}, nil, err
	}
	subs, err := s.store.ListSubmissions(ctx, testID, ListOpts{})
	if err != nil {
		return Test{}, nil, err
	}
	return t, subs, nil
}

// Test returns the student view of a test.
func (s *Service) Test(ctx context.Context, id string) (Test, error) {
	return s.store.GetTest(ctx, id)
}
