package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

func TestObserveStage(t *testing.T) {
	m := newTestMetrics()
	m.ObserveStage("authority", 0.2, nil)
	m.ObserveStage("authority", 0.1, errors.New("boom"))
	m.ObserveStage("index", 0.3, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRunsTotal.WithLabelValues("authority", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRunsTotal.WithLabelValues("authority", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRunsTotal.WithLabelValues("index", "ok")))
}

func TestObserveStageNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveStage("authority", 1, nil) })
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	m := newTestMetrics()
	m.IndexTerms.Set(42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "index_terms 42"))
}

func TestListenServesMetrics(t *testing.T) {
	m := newTestMetrics()
	m.DocumentsLoaded.Set(3)
	srv, err := Listen(m, "127.0.0.1:0")
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "collection_documents 3")
}

func TestListenPortInUse(t *testing.T) {
	first, err := Listen(newTestMetrics(), "127.0.0.1:0")
	require.NoError(t, err)
	defer first.Shutdown(context.Background())
	_, err = Listen(newTestMetrics(), first.Addr())
	require.Error(t, err)
}
