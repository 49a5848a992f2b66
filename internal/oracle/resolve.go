package oracle

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/examgrader/internal/grading"
)

// Resolver fills in the expected label of dynamic questions at test
// generation time. Each question's program runs once; the label is then
// carried on the question and never recomputed during grading.
type Resolver struct {
	Source  GroundTruth
	Aliases grading.AliasTable
	Workers int
	Logger  *slog.Logger
}

// Resolve returns a copy of qs with every dynamic_algo question resolved.
// A failed computation is recorded as an "error: ..." label so the question
// still grades, as zero. Only context cancellation is returned as an error.
func (r Resolver) Resolve(ctx context.Context, qs []grading.Question) ([]grading.Question, error) {
	out := make([]grading.Question, len(qs))
	copy(out, qs)

	workers := r.Workers
	if workers <= 0 {
		workers = 2
	}
	aliases := r.Aliases
	if aliases == nil {
		aliases = grading.DefaultAliases
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range out {
		if out[i].Type != grading.TypeDynamicAlgo {
			continue
		}
		g.Go(func() error {
			q := out[i]
			ref := q.Program
			if ref == "" {
				ref = q.ID
			}
			label, err := r.Source.Compute(gctx, ref)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err != nil {
				logger.Warn("ground truth failed", "question", q.ID, "program", ref, "err", err)
				label = "error: " + err.Error()
			}
			out[i].Expected = expectedFor(label, aliases)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func expectedFor(label string, aliases grading.AliasTable) *grading.Expected {
	label = strings.TrimSpace(label)
	e := &grading.Expected{Kind: grading.Classify(label), Label: label}
	if e.Kind == grading.KindLabel {
		if id, ok := aliases.Match(label); ok {
			e.CanonicalID = id
		}
	}
	return e
}
