package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloaderSwapsAndRunsHooks(t *testing.T) {
	dir := t.TempDir()
	cfg := writeStageOutputs(t, dir)
	snap, err := LoadSnapshot(context.Background(), cfg, LoadOptions{InMemory: true})
	require.NoError(t, err)
	e := New(snap)

	hooks := 0
	r := NewReloader(e, cfg, LoadOptions{InMemory: true})
	r.OnReload(func(context.Context) error { hooks++; return nil })

	require.NoError(t, os.WriteFile(filepath.Join(dir, cfg.IndexFile), []byte("jupiter url11\n"), 0o644))
	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, 1, hooks)

	res, err := e.Execute(context.Background(), parser.Parse([]string{"jupiter"}), 30)
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "url11", res.Results[0].DocID)
}

func TestReloaderKeepsSnapshotOnFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := writeStageOutputs(t, dir)
	snap, err := LoadSnapshot(context.Background(), cfg, LoadOptions{})
	require.NoError(t, err)
	e := New(snap)

	require.NoError(t, os.Remove(filepath.Join(dir, cfg.PagerankFile)))
	r := NewReloader(e, cfg, LoadOptions{})
	require.Error(t, r.Reload(context.Background()))
	assert.Same(t, snap, e.Snapshot())
}
