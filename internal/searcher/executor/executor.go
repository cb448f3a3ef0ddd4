package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/authority"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/ranker"
)

type SearchResult struct {
	Query     string         `json:"query"`
	Terms     []string       `json:"terms"`
	TotalHits int            `json:"total_hits"`
	Results   []ranker.Match `json:"results"`
	TermStats map[string]int `json:"term_stats"`
}

// Source answers posting lookups for one term.
type Source interface {
	Search(term string) (index.PostingList, error)
}

// MemorySource serves postings from an in-memory index.
type MemorySource struct {
	Index *index.TermIndex
}

func (m MemorySource) Search(term string) (index.PostingList, error) {
	return m.Index.Postings(term), nil
}

// Snapshot is one consistent pair of stage outputs.
type Snapshot struct {
	Source Source
	Scores *authority.List
	closer func() error
}

// Close releases files held by the snapshot.
func (s *Snapshot) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

type Executor struct {
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

func New(snap *Snapshot) *Executor {
	e := &Executor{
		logger: slog.Default().With("component", "query-executor"),
	}
	e.current.Store(snap)
	return e
}

// Swap installs a new snapshot and returns the previous one, which the
// caller closes once in-flight queries are done with it.
func (e *Executor) Swap(snap *Snapshot) *Snapshot {
	return e.current.Swap(snap)
}

func (e *Executor) Snapshot() *Snapshot {
	return e.current.Load()
}

// Execute looks up every distinct query term and ranks the documents that
// contain at least one of them.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if len(plan.Terms) == 0 {
		return &SearchResult{
			Query:   plan.RawQuery,
			Terms:   []string{},
			Results: []ranker.Match{},
		}, nil
	}
	snap := e.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("no index loaded")
	}

	perTerm := make([]ranker.TermPostings, 0, len(plan.Terms))
	termStats := make(map[string]int, len(plan.Terms))
	for _, term := range plan.Terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		postings, err := snap.Source.Search(term)
		if err != nil {
			return nil, fmt.Errorf("searching term %q: %w", term, err)
		}
		termStats[term] = len(postings)
		if len(postings) > 0 {
			perTerm = append(perTerm, ranker.TermPostings{Term: term, Postings: postings})
		}
	}

	var lookup ranker.ScoreLookup
	if snap.Scores != nil {
		lookup = snap.Scores.Lookup
	}
	all := ranker.Rank(perTerm, lookup, 0)
	ranked := all
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"candidates", len(all),
		"results", len(ranked),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		TotalHits: len(all),
		Results:   ranked,
		TermStats: termStats,
	}, nil
}
