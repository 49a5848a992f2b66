// Package bank loads the question bank and draws tests from it.
//
// The bank file is a JSON array in the authoring format used since the
// first exams: expected_answer is either a plain string or an object whose
// fields depend on the question type, or valid_responses lists weighted
// reference answers. Records are converted into grading.Question values
// with an explicit Kind.
package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mind-engage/examgrader/internal/grading"
)

// Record is one question as authored in the bank file.
type Record struct {
	ID             string          `json:"id" validate:"required"`
	Topic          string          `json:"topic" validate:"required"`
	Type           string          `json:"type" validate:"required"`
	Difficulty     string          `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Question       string          `json:"question" validate:"required"`
	Program        string          `json:"program,omitempty"`
	ExpectedAnswer json.RawMessage `json:"expected_answer,omitempty"`
	ValidResponses []Response      `json:"valid_responses,omitempty" validate:"omitempty,dive"`
}

type Response struct {
	Text  string `json:"text" validate:"required"`
	Score *int   `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// legacyExpected covers every object shape expected_answer has taken.
type legacyExpected struct {
	Strategy      *string `json:"strategy"`
	Exists        *bool   `json:"exists"`
	Equilibrium   string  `json:"equilibrium"`
	Assignment    *string `json:"assignment"`
	RootValue     *int    `json:"root_value"`
	VisitedLeaves *int    `json:"visited_leaves"`
}

// Bank is an immutable, validated set of questions.
type Bank struct {
	questions []grading.Question
	byID      map[string]int
}

func LoadFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads and validates a bank. Any invalid record fails the whole load
// so a broken bank is caught at startup rather than mid-exam.
func Load(r io.Reader) (*Bank, error) {
	var records []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	v := newValidator()
	b := &Bank{byID: make(map[string]int, len(records))}
	for i, rec := range records {
		if err := v.Struct(rec); err != nil {
			return nil, toValidationError(i, rec, err)
		}
		if _, dup := b.byID[rec.ID]; dup {
			return nil, &ValidationError{ID: rec.ID, Index: i, Fields: []FieldError{{Field: "id", Rule: "unique"}}}
		}
		q, err := Convert(rec)
		if err != nil {
			return nil, fmt.Errorf("question %d (%q): %w", i, rec.ID, err)
		}
		b.byID[rec.ID] = len(b.questions)
		b.questions = append(b.questions, q)
	}
	return b, nil
}

// Convert turns an authored record into a grading question.
func Convert(rec Record) (grading.Question, error) {
	q := grading.Question{
		ID:         rec.ID,
		Topic:      rec.Topic,
		Type:       rec.Type,
		Difficulty: rec.Difficulty,
		Prompt:     rec.Question,
		Program:    rec.Program,
	}
	for _, r := range rec.ValidResponses {
		ref := grading.Reference{Text: r.Text, MaxScore: 100}
		if r.Score != nil {
			ref.MaxScore = *r.Score
		}
		q.ValidResponses = append(q.ValidResponses, ref)
	}
	raw := bytes.TrimSpace(rec.ExpectedAnswer)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return q, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return q, fmt.Errorf("%w: expected_answer: %v", ErrInvalidQuestion, err)
		}
		q.Expected = labelExpected(s)
		return q, nil
	}

	var le legacyExpected
	if err := json.Unmarshal(raw, &le); err != nil {
		return q, fmt.Errorf("%w: expected_answer: %v", ErrInvalidQuestion, err)
	}
	e, err := structured(rec.Type, le)
	if err != nil {
		return q, err
	}
	q.Expected = e
	return q, nil
}

func labelExpected(label string) *grading.Expected {
	e := &grading.Expected{Kind: grading.Classify(label), Label: strings.TrimSpace(label)}
	if e.Kind == grading.KindLabel {
		e.CanonicalID, _ = grading.DefaultAliases.Match(label)
	}
	return e
}

func missing(field string) error {
	return fmt.Errorf("%w: expected_answer.%s is required", ErrInvalidQuestion, field)
}

func structured(typ string, le legacyExpected) (*grading.Expected, error) {
	switch typ {
	case grading.TypeSearch:
		if le.Strategy == nil {
			return nil, missing("strategy")
		}
		return &grading.Expected{Kind: grading.KindSearch, Strategy: *le.Strategy}, nil
	case grading.TypeGameTheory:
		if le.Exists == nil {
			return nil, missing("exists")
		}
		if *le.Exists && le.Equilibrium == "" {
			return nil, missing("equilibrium")
		}
		return &grading.Expected{Kind: grading.KindGameTheory, Exists: *le.Exists, Equilibrium: le.Equilibrium}, nil
	case grading.TypeCSP:
		if le.Assignment == nil {
			return nil, missing("assignment")
		}
		return &grading.Expected{Kind: grading.KindCSP, Assignment: *le.Assignment}, nil
	case grading.TypeMinimax:
		if le.RootValue == nil {
			return nil, missing("root_value")
		}
		if le.VisitedLeaves == nil {
			return nil, missing("visited_leaves")
		}
		return &grading.Expected{Kind: grading.KindMinimax, RootValue: *le.RootValue, VisitedLeaves: *le.VisitedLeaves}, nil
	default:
		// dynamic and generic questions carry their label in strategy
		if le.Strategy == nil {
			return nil, missing("strategy")
		}
		return labelExpected(*le.Strategy), nil
	}
}

// Questions returns every question in bank order.
func (b *Bank) Questions() []grading.Question {
	return slices.Clone(b.questions)
}

func (b *Bank) Get(id string) (grading.Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return grading.Question{}, false
	}
	return b.questions[i], true
}

// Topics lists the distinct topics, sorted.
func (b *Bank) Topics() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, q := range b.questions {
		if _, ok := seen[q.Topic]; ok {
			continue
		}
		seen[q.Topic] = struct{}{}
		out = append(out, q.Topic)
	}
	sort.Strings(out)
	return out
}

// Filter keeps questions whose topic and difficulty are listed. An empty
// list does not filter on that field.
func (b *Bank) Filter(topics, difficulties []string) []grading.Question {
	var out []grading.Question
	for _, q := range b.questions {
		if len(topics) > 0 && !slices.Contains(topics, q.Topic) {
			continue
		}
		if len(difficulties) > 0 && !slices.Contains(difficulties, q.Difficulty) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Sample draws n distinct questions at random. When fewer than n are
// available all of them are returned, shuffled.
func Sample(qs []grading.Question, n int, rng *rand.Rand) []grading.Question {
	out := slices.Clone(qs)
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Validate checks a single record without loading a bank.
func Validate(rec Record) error {
	if err := newValidator().Struct(rec); err != nil {
		return toValidationError(0, rec, err)
	}
	_, err := Convert(rec)
	return err
}
