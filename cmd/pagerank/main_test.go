package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCollection(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"collection.txt": "A B C\n",
		"A.txt":          "#start Section-1\nB C\n#end Section-1\n#start Section-2\nmars moon\n#end Section-2\n",
		"B.txt":          "#start Section-1\nC\n#end Section-1\n#start Section-2\nmars\n#end Section-2\n",
		"C.txt":          "#start Section-1\n#end Section-1\n#start Section-2\nmoon\n#end Section-2\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	t.Setenv("LR_DATA_DIR", dir)
	return dir
}

func TestRunWritesScoreList(t *testing.T) {
	dir := writeCollection(t)
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"0.85", "0.00001", "1000"}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "pagerankList.txt"))
	require.NoError(t, err)
	assert.Equal(t, "C, 0, 0.1318125\nB, 1, 0.0712500\nA, 2, 0.0500000\n", string(data))
}

func TestRunUsage(t *testing.T) {
	writeCollection(t)
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"0.85"}, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Usage: pagerank")
}

func TestRunMissingDocument(t *testing.T) {
	dir := writeCollection(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "B.txt")))
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"0.85", "0.00001", "1000"}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "B.txt")
	_, err := os.Stat(filepath.Join(dir, "pagerankList.txt"))
	assert.True(t, os.IsNotExist(err), "no partial output")
}
