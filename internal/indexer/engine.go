// Package indexer builds the inverted index of a collection: every body
// term maps to the sorted set of documents containing it.
package indexer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/listing"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/fileutil"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
)

type Engine struct {
	markers tokenizer.Markers
	writer  *segment.Writer
	cfg     config.PipelineConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine creates an engine. m may be nil.
func NewEngine(cfg config.PipelineConfig, m *metrics.Metrics) *Engine {
	markers := tokenizer.Markers{Start: cfg.BodyStart, End: cfg.BodyEnd}
	if markers.Start == "" {
		markers.Start = tokenizer.DefaultBodyStart
	}
	if markers.End == "" {
		markers.End = tokenizer.DefaultBodyEnd
	}
	return &Engine{
		markers: markers,
		writer:  segment.NewWriter(filepath.Join(cfg.DataDir, cfg.SegmentDir)),
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// Build indexes the body terms of every document in listing order.
func (e *Engine) Build(ctx context.Context, c *collection.Collection) (*index.TermIndex, error) {
	start := time.Now()
	idx := index.NewTermIndex()
	sc := tokenizer.NewScanner(e.markers)
	for _, doc := range c.Docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("building index: %w", err)
		}
		terms := sc.Terms(doc.Tokens)
		idx.AddDocument(doc.ID, terms)
		e.logger.Debug("document indexed",
			"doc_id", doc.ID,
			"term_count", len(terms),
		)
	}
	if e.metrics != nil {
		e.metrics.IndexTerms.Set(float64(idx.Len()))
		e.metrics.IndexPostings.Set(float64(idx.Pairs()))
	}
	e.logger.Info("inverted index built",
		"documents", c.Len(),
		"documents_with_terms", idx.DocCount(),
		"terms", idx.Len(),
		"postings", idx.Pairs(),
		"elapsed", time.Since(start),
	)
	return idx, nil
}

// WriteListing replaces the plain-text index file with idx.
func (e *Engine) WriteListing(idx *index.TermIndex) (string, error) {
	path := filepath.Join(e.cfg.DataDir, e.cfg.IndexFile)
	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		return listing.Write(w, idx)
	})
	if err != nil {
		return "", apperrors.Newf(apperrors.ErrOutputWrite, 0, "%s: %v", path, err)
	}
	e.logger.Info("inverted index written", "path", path, "terms", idx.Len())
	return path, nil
}

// Flush writes idx as a new binary segment for the search service and
// removes the segments of earlier runs. An empty index still gets a segment.
func (e *Engine) Flush(idx *index.TermIndex) (string, error) {
	name, err := e.writer.Write(idx)
	if err != nil {
		return "", apperrors.Newf(apperrors.ErrOutputWrite, 0, "writing segment: %v", err)
	}
	path := filepath.Join(e.cfg.DataDir, e.cfg.SegmentDir, name)
	e.logger.Info("segment flushed", "segment", path, "terms", idx.Len())

	// stale segments are also rejected at load time, so a failed prune is
	// not fatal
	removed, err := e.writer.Prune(name)
	if err != nil {
		e.logger.Warn("pruning old segments failed", "error", err)
	} else if removed > 0 {
		e.logger.Debug("old segments pruned", "removed", removed)
	}
	return path, nil
}

// Run builds the index of c and persists both output forms.
func (e *Engine) Run(ctx context.Context, c *collection.Collection) (*index.TermIndex, error) {
	start := time.Now()
	idx, err := e.Build(ctx, c)
	if err == nil {
		_, err = e.WriteListing(idx)
	}
	if err == nil {
		_, err = e.Flush(idx)
	}
	e.metrics.ObserveStage("index", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	return idx, nil
}
