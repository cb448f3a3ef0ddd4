package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddKeepsPostingsSortedAndUnique(t *testing.T) {
	idx := NewTermIndex()
	for _, id := range []string{"url31", "url11", "url21", "url11", "url31", "url101"} {
		idx.Add("mars", id)
	}
	got := idx.Postings("mars")
	assert.Equal(t, PostingList{"url101", "url11", "url21", "url31"}, got)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
	assert.Equal(t, 4, idx.Pairs())
}

func TestAddReportsNewPairs(t *testing.T) {
	idx := NewTermIndex()
	assert.True(t, idx.Add("a", "d1"))
	assert.False(t, idx.Add("a", "d1"))
	assert.True(t, idx.Add("a", "d0"))
}

func TestTermsAscending(t *testing.T) {
	idx := NewTermIndex()
	idx.AddDocument("d2", []string{"zeta", "alpha", "mid", "alpha"})
	idx.AddDocument("d1", []string{"mid", "beta"})

	assert.Equal(t, []string{"alpha", "beta", "mid", "zeta"}, idx.Terms())
	idx.Add("aardvark", "d3")
	assert.Equal(t, "aardvark", idx.Terms()[0], "new terms invalidate the ordering")

	entries := idx.Entries()
	assert.Len(t, entries, 5)
	assert.Equal(t, TermEntry{Term: "mid", Postings: PostingList{"d1", "d2"}}, entries[3])
	assert.Equal(t, 3, idx.DocCount())
}

func TestPostingsReturnsCopy(t *testing.T) {
	idx := NewTermIndex()
	idx.Add("t", "a")
	p := idx.Postings("t")
	p[0] = "mutated"
	assert.Equal(t, PostingList{"a"}, idx.Postings("t"))
	assert.Nil(t, idx.Postings("absent"))
	assert.False(t, idx.Has("absent"))
}

func TestWalkStopsEarly(t *testing.T) {
	idx := NewTermIndex()
	idx.AddDocument("d", []string{"c", "b", "a"})
	var seen []string
	idx.Walk(func(term string, _ PostingList) bool {
		seen = append(seen, term)
		return len(seen) < 2
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestPostingListContains(t *testing.T) {
	p := PostingList{"a", "c", "e"}
	assert.True(t, p.Contains("c"))
	assert.False(t, p.Contains("d"))
	assert.False(t, PostingList(nil).Contains("a"))
}
