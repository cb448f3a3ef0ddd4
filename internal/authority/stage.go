package authority

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/fileutil"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
)

// Stage computes scores for a collection and writes the ranked list file.
type Stage struct {
	params  Params
	cfg     config.PipelineConfig
	store   *Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewStage validates params. store and m may be nil.
func NewStage(cfg config.PipelineConfig, params Params, store *Store, m *metrics.Metrics) (*Stage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Stage{
		params:  params,
		cfg:     cfg,
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "authority-stage"),
	}, nil
}

// Run computes, writes and optionally stores the scores of c. The list file
// is only replaced once every score is known.
func (s *Stage) Run(ctx context.Context, runID string, c *collection.Collection) (*Result, error) {
	start := time.Now()
	result, err := s.run(ctx, runID, c)
	s.metrics.ObserveStage("authority", time.Since(start).Seconds(), err)
	return result, err
}

func (s *Stage) run(ctx context.Context, runID string, c *collection.Collection) (*Result, error) {
	g := BuildGraph(c)
	solver, err := NewSolver(s.params)
	if err != nil {
		return nil, err
	}
	result, err := solver.Compute(ctx, g)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DocumentsLoaded.Set(float64(g.Len()))
		s.metrics.LinkEdges.Set(float64(g.NumEdges()))
		s.metrics.AuthorityIterations.Set(float64(result.Iterations))
		s.metrics.AuthorityDelta.Set(result.Delta)
	}

	path := filepath.Join(s.cfg.DataDir, s.cfg.PagerankFile)
	if err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		return WriteList(w, result.Scores)
	}); err != nil {
		return nil, apperrors.Newf(apperrors.ErrOutputWrite, 0, "%s: %v", path, err)
	}
	s.logger.Info("score list written", "path", path, "documents", len(result.Scores))

	if s.store != nil {
		if err := s.store.SaveRun(ctx, runID, s.params, result); err != nil {
			// the list file is already the source of truth for the searcher
			s.logger.Error("saving authority run failed", "run_id", runID, "error", err)
		}
	}
	return result, nil
}
