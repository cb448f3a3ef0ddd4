package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
)

// DefaultTopK is the number of results returned when no limit is given.
const DefaultTopK = 30

// Match is one ranked document.
type Match struct {
	DocID string  `json:"doc_id"`
	Count int     `json:"match_count"`
	Score float64 `json:"score"`
}

// ScoreLookup returns the authority score of a document, 0 if unknown.
type ScoreLookup func(docID string) float64

// TermPostings is the posting list found for one distinct query term.
type TermPostings struct {
	Term     string
	Postings index.PostingList
}

// Rank counts, for every document, how many distinct query terms it
// contains, then orders documents by that count and by authority score,
// both descending. Documents equal on both keys keep first-seen order.
// limit <= 0 returns every match.
func Rank(perTerm []TermPostings, scores ScoreLookup, limit int) []Match {
	positions := make(map[string]int)
	result := make([]Match, 0)
	for _, tp := range perTerm {
		for _, docID := range tp.Postings {
			if i, ok := positions[docID]; ok {
				result[i].Count++
				continue
			}
			positions[docID] = len(result)
			score := 0.0
			if scores != nil {
				score = scores(docID)
			}
			result = append(result, Match{
				DocID: docID,
				Count: 1,
				Score: score,
			})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Score > result[j].Score
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
