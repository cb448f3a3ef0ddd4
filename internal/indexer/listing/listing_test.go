package listing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	idx := index.NewTermIndex()
	idx.AddDocument("url31", []string{"mars", "moon"})
	idx.AddDocument("url11", []string{"mars", "earth"})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx))
	assert.Equal(t, "earth url11\nmars url11 url31\nmoon url31\n", buf.String())
}

func TestReadSkipsMalformedLines(t *testing.T) {
	in := "earth url11\n" +
		"orphan\n" +
		"\n" +
		"mars url31 url11 url11\n"
	idx, err := Read(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"earth", "mars"}, idx.Terms())
	assert.Equal(t, index.PostingList{"url11", "url31"}, idx.Postings("mars"))
	assert.False(t, idx.Has("orphan"))
}
