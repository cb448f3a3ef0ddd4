package ranker

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(m map[string]float64) ScoreLookup {
	return func(id string) float64 { return m[id] }
}

func ids(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.DocID
	}
	return out
}

func TestRankSingleTermByScore(t *testing.T) {
	got := Rank(
		[]TermPostings{{Term: "hello", Postings: index.PostingList{"docA", "docB"}}},
		lookup(map[string]float64{"docA": 0.5, "docB": 0.3}),
		DefaultTopK,
	)
	assert.Equal(t, []string{"docA", "docB"}, ids(got))
	assert.Equal(t, Match{DocID: "docA", Count: 1, Score: 0.5}, got[0])
}

func TestRankMatchCountBeatsScore(t *testing.T) {
	got := Rank(
		[]TermPostings{
			{Term: "mars", Postings: index.PostingList{"url11", "url21", "url31"}},
			{Term: "design", Postings: index.PostingList{"url21", "url31"}},
			{Term: "moon", Postings: index.PostingList{"url31"}},
		},
		lookup(map[string]float64{"url11": 0.9, "url21": 0.2, "url31": 0.1}),
		DefaultTopK,
	)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"url31", "url21", "url11"}, ids(got))
	assert.Equal(t, []int{3, 2, 1}, []int{got[0].Count, got[1].Count, got[2].Count})
}

func TestRankUnknownScoreIsZero(t *testing.T) {
	got := Rank(
		[]TermPostings{{Term: "x", Postings: index.PostingList{"ghost", "known"}}},
		lookup(map[string]float64{"known": 0.01}),
		0,
	)
	assert.Equal(t, []string{"known", "ghost"}, ids(got))
	assert.Zero(t, got[1].Score)
}

func TestRankTiesKeepFirstSeenOrder(t *testing.T) {
	got := Rank(
		[]TermPostings{{Term: "x", Postings: index.PostingList{"b", "a", "c"}}},
		nil,
		0,
	)
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestRankTruncatesAndOrders(t *testing.T) {
	postings := make(index.PostingList, 0, 50)
	scores := make(map[string]float64)
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("url%02d", i)
		postings = append(postings, id)
		scores[id] = float64(i%7) / 10
	}
	half := postings[:25]
	got := Rank(
		[]TermPostings{{Term: "a", Postings: postings}, {Term: "b", Postings: half}},
		lookup(scores),
		DefaultTopK,
	)
	require.Len(t, got, DefaultTopK)
	for i, m := range got {
		assert.GreaterOrEqual(t, m.Count, 1)
		assert.LessOrEqual(t, m.Count, 2)
		if i == 0 {
			continue
		}
		prev := got[i-1]
		assert.GreaterOrEqual(t, prev.Count, m.Count)
		if prev.Count == m.Count {
			assert.GreaterOrEqual(t, prev.Score, m.Score)
		}
	}
}

func TestRankNoPostings(t *testing.T) {
	got := Rank(nil, nil, DefaultTopK)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
