package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/resilience"
)

const (
	SearchPath          = "/api/v1/search"
	CacheStatsPath      = "/api/v1/cache/stats"
	CacheInvalidatePath = "/api/v1/cache/invalidate"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error)
}

type Handler struct {
	executor SearchExecutor
	cache    *cache.QueryCache
	metrics  *metrics.Metrics
	cfg      config.SearchConfig
	logger   *slog.Logger
}

// New builds the search API. queryCache and m may be nil.
func New(exec SearchExecutor, queryCache *cache.QueryCache, m *metrics.Metrics, cfg config.SearchConfig) *Handler {
	if cfg.TopK <= 0 {
		cfg.TopK = ranker.DefaultTopK
	}
	if cfg.MaxResults < cfg.TopK {
		cfg.MaxResults = cfg.TopK
	}
	return &Handler{
		executor: exec,
		cache:    queryCache,
		metrics:  m,
		cfg:      cfg,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+SearchPath, h.Search)
	mux.HandleFunc("GET "+CacheStatsPath, h.CacheStats)
	mux.HandleFunc("POST "+CacheInvalidatePath, h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := h.cfg.TopK
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, h.cfg.MaxResults)
	}

	plan := parser.ParseString(query)
	if len(plan.Terms) == 0 {
		h.observe("zero_result", "bypass", start, 0)
		h.writeJSON(w, http.StatusOK, &executor.SearchResult{
			Query:   query,
			Terms:   []string{},
			Results: []ranker.Match{},
		})
		return
	}

	run := func(ctx context.Context) (*executor.SearchResult, error) {
		return h.executor.Execute(ctx, plan, limit)
	}
	var (
		result   *executor.SearchResult
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, limit, func() (*executor.SearchResult, error) {
			return resilience.WithTimeout(ctx, h.cfg.Timeout, "search", run)
		})
	} else {
		result, err = resilience.WithTimeout(ctx, h.cfg.Timeout, "search", run)
	}

	cacheStatus := "miss"
	switch {
	case h.cache == nil:
		cacheStatus = "disabled"
	case cacheHit:
		cacheStatus = "hit"
	}
	if err != nil {
		h.observe("error", cacheStatus, start, 0)
		log.Error("search failed", "query", query, "error", err)
		status := http.StatusInternalServerError
		if apperrors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.writeError(w, status, "search failed")
		return
	}

	resultType := "match"
	if len(result.Results) == 0 {
		resultType = "zero_result"
	}
	h.observe(resultType, cacheStatus, start, len(result.Results))
	log.Info("search completed",
		"query", query,
		"terms", plan.Terms,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache", cacheStatus,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) observe(resultType, cacheStatus string, start time.Time, returned int) {
	if h.metrics == nil {
		return
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	h.metrics.SearchResultsCount.Observe(float64(returned))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
