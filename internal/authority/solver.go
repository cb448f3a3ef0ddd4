// Package authority computes the link-authority score of every document by
// damped iterative propagation over the collection's link graph, and reads
// and writes the ranked score list consumed by the searcher.
package authority

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
)

// Params controls score propagation.
type Params struct {
	Damping       float64 `json:"damping"`
	Threshold     float64 `json:"threshold"`
	MaxIterations int     `json:"max_iterations"`
}

// Validate rejects parameters outside d ∈ (0,1), ε > 0, m ≥ 1.
func (p Params) Validate() error {
	if !(p.Damping > 0 && p.Damping < 1) {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "damping factor %v not in (0,1)", p.Damping)
	}
	if !(p.Threshold > 0) {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "convergence threshold %v must be positive", p.Threshold)
	}
	if p.MaxIterations < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "max iterations %d must be at least 1", p.MaxIterations)
	}
	return nil
}

// Score is the authority of one document.
type Score struct {
	ID        string  `json:"id"`
	OutDegree int     `json:"outdegree"`
	Value     float64 `json:"score"`
}

// Result holds the scores in collection listing order.
type Result struct {
	Scores     []Score `json:"scores"`
	Iterations int     `json:"iterations"`
	Delta      float64 `json:"delta"`
}

// Solver runs the propagation. OnIteration, when set, observes the score
// vector after every iteration.
type Solver struct {
	params      Params
	logger      *slog.Logger
	OnIteration func(iteration int, scores []float64, delta float64)
}

func NewSolver(params Params) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Solver{
		params: params,
		logger: slog.Default().With("component", "authority-solver"),
	}, nil
}

// Compute iterates until the summed absolute change drops below the
// threshold or MaxIterations is reached. At least one iteration always runs.
func (s *Solver) Compute(ctx context.Context, g *Graph) (*Result, error) {
	n := g.Len()
	if n == 0 {
		return &Result{Scores: []Score{}}, nil
	}
	d := s.params.Damping
	base := (1 - d) / float64(n)

	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	iteration := 0
	delta := s.params.Threshold
	for iteration < s.params.MaxIterations && delta >= s.params.Threshold {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("authority iteration %d: %w", iteration, err)
		}
		for i := 0; i < n; i++ {
			sum := 0.0
			for _, j := range g.InLinks(i) {
				sum += scores[j] / float64(g.OutDegree(j))
			}
			next[i] = base + d*sum
		}
		delta = 0
		for i := 0; i < n; i++ {
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores
		iteration++
		if s.OnIteration != nil {
			s.OnIteration(iteration, scores, delta)
		}
		s.logger.Debug("authority iteration", "iteration", iteration, "delta", delta)
	}

	result := &Result{
		Scores:     make([]Score, n),
		Iterations: iteration,
		Delta:      delta,
	}
	for i := 0; i < n; i++ {
		result.Scores[i] = Score{
			ID:        g.ID(i),
			OutDegree: g.OutDegree(i),
			Value:     scores[i],
		}
	}
	s.logger.Info("authority converged",
		"documents", n,
		"edges", g.NumEdges(),
		"iterations", iteration,
		"delta", delta,
		"converged", delta < s.params.Threshold,
	)
	return result, nil
}

// Sorted returns a copy of scores ordered by descending value. Equal scores
// keep their listing order.
func Sorted(scores []Score) []Score {
	out := make([]Score, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}
