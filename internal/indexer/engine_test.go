package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollection() *collection.Collection {
	page := func(id, links, body string) collection.Document {
		text := "#start Section-1 " + links + " #end Section-1 #start Section-2 " + body + " #end Section-2"
		return collection.Document{ID: id, Tokens: strings.Fields(text)}
	}
	return collection.New([]collection.Document{
		page("url31", "url21 url34", "Mars has long been the subject of human interest. Mars, mars!"),
		page("url21", "url31", "Mars: the red planet."),
		page("url34", "", "Earth is not Mars?"),
	})
}

func testConfig(dir string) config.PipelineConfig {
	cfg := config.Default().Pipeline
	cfg.DataDir = dir
	return cfg
}

func TestBuild(t *testing.T) {
	e := NewEngine(testConfig(t.TempDir()), nil)
	idx, err := e.Build(context.Background(), testCollection())
	require.NoError(t, err)

	assert.Equal(t, index.PostingList{"url21", "url31", "url34"}, idx.Postings("mars"))
	assert.Equal(t, index.PostingList{"url34"}, idx.Postings("earth"))
	assert.Equal(t, index.PostingList{"url21"}, idx.Postings("planet"))
	assert.Equal(t, index.PostingList{"url31"}, idx.Postings("mars!"), "only the fixed punctuation set is stripped")
	assert.False(t, idx.Has("url21"), "link section is not indexed")
	assert.False(t, idx.Has("section-2"))

	for _, term := range idx.Terms() {
		list := idx.Postings(term)
		for i := 1; i < len(list); i++ {
			assert.Less(t, list[i-1], list[i], "term %q", term)
		}
	}
}

func TestRunWritesListingAndSegment(t *testing.T) {
	dir := t.TempDir()
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, reg)
	e := NewEngine(testConfig(dir), m)

	idx, err := e.Run(context.Background(), testCollection())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "invertedIndex.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, idx.Len(), len(lines))
	assert.Contains(t, lines, "mars url21 url31 url34")
	assert.Equal(t, "been url31", lines[0])

	segPath, err := segment.Latest(filepath.Join(dir, "segments"))
	require.NoError(t, err)
	r, err := segment.OpenReader(segPath)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, idx.Len(), r.Terms())

	assert.Equal(t, float64(idx.Len()), testutil.ToFloat64(m.IndexTerms))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRunsTotal.WithLabelValues("index", "ok")))
}

func TestRunEmptyCollection(t *testing.T) {
	dir := t.TempDir()
	idx, err := NewEngine(testConfig(dir), nil).Run(context.Background(), collection.New(nil))
	require.NoError(t, err)
	assert.Zero(t, idx.Len())

	data, err := os.ReadFile(filepath.Join(dir, "invertedIndex.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)

	segPath, err := segment.Latest(filepath.Join(dir, "segments"))
	require.NoError(t, err)
	require.NotEmpty(t, segPath, "an empty run still supersedes older segments")
	r, err := segment.OpenReader(segPath)
	require.NoError(t, err)
	defer r.Close()
	assert.Zero(t, r.Terms())
}

func TestRunKeepsOnlyNewestSegment(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(testConfig(dir), nil)
	for range 3 {
		_, err := e.Run(context.Background(), testCollection())
		require.NoError(t, err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "segments"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	latest, err := segment.Latest(filepath.Join(dir, "segments"))
	require.NoError(t, err)
	assert.Equal(t, entries[0].Name(), filepath.Base(latest))
}
