package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/authority"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutor() *executor.Executor {
	idx := index.NewTermIndex()
	idx.AddDocument("docA", []string{"hello", "world"})
	idx.AddDocument("docB", []string{"hello"})
	return executor.New(&executor.Snapshot{
		Source: executor.MemorySource{Index: idx},
		Scores: authority.NewList([]authority.Score{
			{ID: "docA", Value: 0.5},
			{ID: "docB", Value: 0.3},
		}),
	})
}

func newServer(t *testing.T, exec SearchExecutor, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	h := New(exec, nil, m, config.SearchConfig{TopK: 30, MaxResults: 100, Timeout: time.Second})
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSearch(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), prometheus.NewRegistry())
	srv := newServer(t, newExecutor(), m)

	resp, err := http.Get(srv.URL + SearchPath + "?q=Hello,+world")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got executor.SearchResult
	decode(t, resp, &got)
	assert.Equal(t, []string{"hello", "world"}, got.Terms)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "docA", got.Results[0].DocID)
	assert.Equal(t, 2, got.Results[0].Count)
	assert.Equal(t, "docB", got.Results[1].DocID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("match")))
}

func TestSearchLimit(t *testing.T) {
	srv := newServer(t, newExecutor(), nil)
	resp, err := http.Get(srv.URL + SearchPath + "?q=hello&limit=1")
	require.NoError(t, err)
	var got executor.SearchResult
	decode(t, resp, &got)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 2, got.TotalHits)
}

func TestSearchBadRequests(t *testing.T) {
	srv := newServer(t, newExecutor(), nil)
	for _, q := range []string{"", "?q=", "?q=hello&limit=0", "?q=hello&limit=abc"} {
		resp, err := http.Get(srv.URL + SearchPath + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestSearchOnlyPunctuation(t *testing.T) {
	srv := newServer(t, newExecutor(), nil)
	resp, err := http.Get(srv.URL + SearchPath + "?q=...")
	require.NoError(t, err)
	var got executor.SearchResult
	decode(t, resp, &got)
	assert.Empty(t, got.Results)
}

type failingExecutor struct{ err error }

func (f failingExecutor) Execute(context.Context, *parser.QueryPlan, int) (*executor.SearchResult, error) {
	return nil, f.err
}

func TestSearchExecutorError(t *testing.T) {
	srv := newServer(t, failingExecutor{err: errors.New("disk gone")}, nil)
	resp, err := http.Get(srv.URL + SearchPath + "?q=hello")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	srv := newServer(t, newExecutor(), nil)

	resp, err := http.Get(srv.URL + CacheStatsPath)
	require.NoError(t, err)
	var stats map[string]string
	decode(t, resp, &stats)
	assert.Equal(t, "disabled", stats["status"])

	resp, err = http.Post(srv.URL+CacheInvalidatePath, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(srv.URL + CacheInvalidatePath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
