package segment

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex() *index.TermIndex {
	idx := index.NewTermIndex()
	idx.AddDocument("url31", []string{"mars", "moon", "planet"})
	idx.AddDocument("url11", []string{"mars", "earth"})
	idx.AddDocument("url21", []string{"planet"})
	return idx
}

func TestWriteAndSearch(t *testing.T) {
	dir := t.TempDir()
	name, err := NewWriter(dir).Write(sampleIndex())
	require.NoError(t, err)

	r, err := OpenReader(filepath.Join(dir, name))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 4, r.Terms())
	assert.Equal(t, uint32(3), r.DocCount())

	got, err := r.Search("mars")
	require.NoError(t, err)
	assert.Equal(t, index.PostingList{"url11", "url31"}, got)

	got, err = r.Search("absent")
	require.NoError(t, err)
	assert.Nil(t, got)

	loaded, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleIndex().Entries(), loaded.Entries())
}

func TestWriteEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	name, err := NewWriter(dir).Write(index.NewTermIndex())
	require.NoError(t, err)

	r, err := OpenReader(filepath.Join(dir, name))
	require.NoError(t, err)
	defer r.Close()
	assert.Zero(t, r.Terms())
	got, err := r.Search("mars")
	require.NoError(t, err)
	assert.Nil(t, got)
	loaded, err := r.Load()
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())
}

func TestOpenReaderRejectsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	name, err := NewWriter(dir).Write(sampleIndex())
	require.NoError(t, err)
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xFF
		p := filepath.Join(dir, "magic"+Extension)
		require.NoError(t, os.WriteFile(p, bad, 0o644))
		_, err := OpenReader(p)
		require.Error(t, err)
	})

	for name, patch := range map[string]func([]byte){
		"huge dictionary":     func(b []byte) { binary.LittleEndian.PutUint64(b[24:32], 1<<40) },
		"negative dictionary": func(b []byte) { binary.LittleEndian.PutUint64(b[24:32], ^uint64(0)) },
		"dictionary offset":   func(b []byte) { binary.LittleEndian.PutUint64(b[16:24], 1<<40) },
		"truncated":           func(b []byte) {},
	} {
		t.Run(name, func(t *testing.T) {
			bad := append([]byte(nil), data...)
			patch(bad)
			if name == "truncated" {
				bad = bad[:len(bad)-FooterSize-4]
			}
			p := filepath.Join(dir, "header"+Extension)
			require.NoError(t, os.WriteFile(p, bad, 0o644))
			require.NotPanics(t, func() {
				_, err := OpenReader(p)
				require.Error(t, err)
			})
		})
	}

	t.Run("checksum", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		// flip a byte inside the dictionary, just before the footer
		bad[len(bad)-FooterSize-2] ^= 0x01
		p := filepath.Join(dir, "crc"+Extension)
		require.NoError(t, os.WriteFile(p, bad, 0o644))
		_, err := OpenReader(p)
		require.Error(t, err)
	})
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	path, err := Latest(dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	w := NewWriter(dir)
	base := time.Unix(1700000000, 0)
	w.now = func() time.Time { return base }
	_, err = w.Write(sampleIndex())
	require.NoError(t, err)
	w.now = func() time.Time { return base.Add(time.Second) }
	newest, err := w.Write(sampleIndex())
	require.NoError(t, err)

	path, err = Latest(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, newest), path)

	path, err = Latest(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	base := time.Unix(1700000000, 0)
	for i := range 3 {
		w.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		_, err := w.Write(sampleIndex())
		require.NoError(t, err)
	}
	keep, err := Latest(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	removed, err := w.Prune(filepath.Base(keep))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{filepath.Base(keep), "notes.txt"}, names)
}
