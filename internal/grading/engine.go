package grading

import (
	"context"
	"strings"
)

// Strategy grades an answer against one kind of expected answer.
type Strategy interface {
	Grade(ctx context.Context, q Question, answer string) Result
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(ctx context.Context, q Question, answer string) Result

func (f StrategyFunc) Grade(ctx context.Context, q Question, answer string) Result {
	return f(ctx, q, answer)
}

// Grader selects a Strategy from question metadata and runs it. Grade never
// fails: malformed questions and unparseable answers score 0 with feedback.
type Grader interface {
	Grade(ctx context.Context, q Question, answer string) Result
}

type defaultGrader struct {
	scorer     Scorer
	aliases    AliasTable
	strategies map[Kind]Strategy
}

// Engine options

type Option func(*config)

type config struct {
	Threshold  int
	Similarity func(a, b string) int
	Aliases    AliasTable
}

func WithAcceptThreshold(n int) Option              { return func(c *config) { c.Threshold = n } }
func WithSimilarity(f func(a, b string) int) Option { return func(c *config) { c.Similarity = f } }
func WithAliases(t AliasTable) Option               { return func(c *config) { c.Aliases = t } }

// NewDefaultGrader installs the built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{
		Threshold:  DefaultAcceptThreshold,
		Similarity: TokenSetRatio,
		Aliases:    DefaultAliases,
	}
	for _, o := range opts {
		o(cfg)
	}
	g := &defaultGrader{
		scorer:  Scorer{Threshold: cfg.Threshold, Similarity: cfg.Similarity},
		aliases: cfg.Aliases,
	}
	g.strategies = map[Kind]Strategy{
		KindVector:     StrategyFunc(g.gradeVector),
		KindAssignment: StrategyFunc(g.gradeAssignment),
		KindLabel:      StrategyFunc(g.gradeLabel),
		KindSearch:     fixed(evaluateSearch),
		KindGameTheory: fixed(evaluateGameTheory),
		KindCSP:        fixed(evaluateCSP),
		KindMinimax:    fixed(evaluateMinimax),
	}
	return g
}

var defaultEngine = NewDefaultGrader()

// Evaluate grades answer for q with the default engine.
func Evaluate(q Question, answer string) (int, []string) {
	res := defaultEngine.Grade(context.Background(), q, answer)
	return res.Score, res.Feedback
}

func notEvaluable() Result { return result(0, "Not evaluable: the question is missing its expected answer.") }

func (g *defaultGrader) Grade(ctx context.Context, q Question, answer string) Result {
	kind, ok := g.route(q)
	if !ok {
		return notEvaluable()
	}
	if q.Type == TypeDynamicAlgo && SimulationFailed(q.Expected) {
		return result(0, "Simulation error: the reference answer could not be computed.")
	}
	s, ok := g.strategies[kind]
	if !ok {
		return notEvaluable()
	}
	res := s.Grade(ctx, q, answer)
	res.Score = clamp(res.Score)
	if len(res.Feedback) == 0 {
		res.Feedback = []string{"no feedback"}
	}
	return res
}

// route decides the scoring path for q from the question alone.
func (g *defaultGrader) route(q Question) (Kind, bool) {
	if q.Type == TypeDynamicAlgo {
		if q.Expected == nil {
			return KindLabel, true // reported as a simulation error
		}
		if q.Expected.Kind == KindVector || q.Expected.Kind == KindAssignment || q.Expected.Kind == KindLabel {
			return q.Expected.Kind, true
		}
		return Classify(q.Expected.Label), true
	}
	if len(q.ValidResponses) > 0 {
		return Classify(q.ValidResponses[0].Text), true
	}
	e := q.Expected
	if e == nil {
		return "", false
	}
	switch e.Kind {
	case KindSearch:
		return e.Kind, strings.TrimSpace(e.Strategy) != ""
	case KindGameTheory:
		return e.Kind, !e.Exists || strings.TrimSpace(e.Equilibrium) != ""
	case KindCSP:
		return e.Kind, strings.TrimSpace(e.Assignment) != ""
	case KindMinimax:
		return e.Kind, true
	case KindVector, KindAssignment, KindLabel:
		return e.Kind, strings.TrimSpace(e.Label) != ""
	}
	return "", false
}

// SimulationFailed reports whether a dynamic question's computed label is
// missing or records a failed run.
func SimulationFailed(e *Expected) bool {
	if e == nil {
		return true
	}
	label := strings.TrimSpace(e.Label)
	return label == "" || strings.Contains(strings.ToLower(label), "error")
}

// reference is the ground truth used by the structural strategies: the
// first valid response, or the expected label.
func reference(q Question) string {
	if q.Type != TypeDynamicAlgo && len(q.ValidResponses) > 0 {
		return q.ValidResponses[0].Text
	}
	if q.Expected != nil {
		return q.Expected.Label
	}
	return ""
}

func (g *defaultGrader) gradeVector(_ context.Context, q Question, answer string) Result {
	ref := reference(q)
	if len(ExtractVector(ref)) == 0 {
		return g.scorer.Score(answer, []Reference{{Text: ref, MaxScore: 100}})
	}
	return EvaluateVector(answer, ref)
}

func (g *defaultGrader) gradeAssignment(_ context.Context, q Question, answer string) Result {
	ref := reference(q)
	if len(ExtractAssignments(ref)) == 0 {
		return g.scorer.Score(answer, []Reference{{Text: ref, MaxScore: 100}})
	}
	return EvaluateAssignment(answer, ref)
}

func (g *defaultGrader) gradeLabel(_ context.Context, q Question, answer string) Result {
	if q.Type != TypeDynamicAlgo && len(q.ValidResponses) > 0 {
		return g.scorer.Score(answer, q.ValidResponses)
	}
	e := q.Expected
	return g.scorer.Score(answer, g.aliases.references(e.Label, e.CanonicalID))
}

func fixed(eval func(answer string, e *Expected) Result) Strategy {
	return StrategyFunc(func(_ context.Context, q Question, answer string) Result {
		return eval(answer, q.Expected)
	})
}
